package logging

import (
	"log/slog"
	"time"
)

// Common field names for consistent logging across commands.
const (
	FieldRequestID = "request_id"
	FieldRunID     = "run_id"
	FieldRecords   = "records"
	FieldPath      = "path"
	FieldSink      = "sink"
	FieldSeed      = "seed"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
	FieldAddress   = "address"
)

func RunID(id string) slog.Attr {
	return slog.String(FieldRunID, id)
}

func Records(n int) slog.Attr {
	return slog.Int(FieldRecords, n)
}

func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

func Sink(name string) slog.Attr {
	return slog.String(FieldSink, name)
}

func Seed(seed int64) slog.Attr {
	return slog.Int64(FieldSeed, seed)
}

// Duration returns a slog attribute for d in milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Int64(FieldDuration, d.Milliseconds())
}

func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

func Address(addr string) slog.Attr {
	return slog.String(FieldAddress, addr)
}
