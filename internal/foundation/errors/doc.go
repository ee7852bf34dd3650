// Package errors provides the classified error primitives used across docserve.
//
// A ClassifiedError carries a category (not_found, filesystem, render, ...), a
// severity and structured context. Errors are created through the fluent
// ErrorBuilder and presented by the HTTP and CLI adapters, which map categories
// to status and exit codes.
//
//	err := errors.WrapError(statErr, errors.CategoryFileSystem, "stat document").
//		WithContext("path", path).
//		Build()
package errors
