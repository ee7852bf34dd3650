// Package logfields holds the canonical slog attribute keys used by docserve.
package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeySlug       = "slug"
	KeyPath       = "path"
	KeyHost       = "host"
	KeyCache      = "cache"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyRequestID  = "request_id"
	KeyRemoteAddr = "remote_addr"
	KeyUserAgent  = "user_agent"
	KeyReason     = "reason"
	KeyJob        = "job"
	KeyError      = "error"
)

// Cache outcomes for the KeyCache field.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Slug(s string) slog.Attr        { return slog.String(KeySlug, s) }
func Path(p string) slog.Attr        { return slog.String(KeyPath, p) }
func Host(h string) slog.Attr        { return slog.String(KeyHost, h) }
func Cache(outcome string) slog.Attr { return slog.String(KeyCache, outcome) }
func Count(n int) slog.Attr          { return slog.Int(KeyCount, n) }
func Method(m string) slog.Attr      { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr      { return slog.Int(KeyStatus, code) }
func RequestID(id string) slog.Attr  { return slog.String(KeyRequestID, id) }
func RemoteAddr(a string) slog.Attr  { return slog.String(KeyRemoteAddr, a) }
func UserAgent(ua string) slog.Attr  { return slog.String(KeyUserAgent, ua) }
func Reason(r string) slog.Attr      { return slog.String(KeyReason, r) }
func Job(name string) slog.Attr      { return slog.String(KeyJob, name) }

// DurationMS records d in fractional milliseconds.
func DurationMS(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
