package metrics

import "time"

// RebuildOutcome labels the result of an index rebuild.
type RebuildOutcome string

const (
	RebuildSuccess RebuildOutcome = "success"
	RebuildFailed  RebuildOutcome = "failed"
)

// Recorder defines observability hooks for the render cache, index builds and
// page serving. Implementations must be safe for concurrent use.
type Recorder interface {
	IncCacheHit()
	IncCacheMiss()
	IncNotFound()
	ObserveRender(d time.Duration)
	ObserveIndexBuild(d time.Duration, docs int)
	IncRebuild(outcome RebuildOutcome)
	SetCacheEntries(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are disabled).
type NoopRecorder struct{}

func (NoopRecorder) IncCacheHit()                          {}
func (NoopRecorder) IncCacheMiss()                         {}
func (NoopRecorder) IncNotFound()                          {}
func (NoopRecorder) ObserveRender(time.Duration)           {}
func (NoopRecorder) ObserveIndexBuild(time.Duration, int)  {}
func (NoopRecorder) IncRebuild(RebuildOutcome)             {}
func (NoopRecorder) SetCacheEntries(int)                   {}
