// Package logger builds slog.Logger instances with environment presets and
// context attribute injection.
//
// The factory wraps the chosen slog handler with a decorator that runs
// registered ContextExtractor functions on every record, so request-scoped
// values like job ids appear on log lines without threading them manually:
//
//	log := logger.New(
//		logger.WithProduction("worker"),
//		logger.WithContextValue("job_id", jobIDKey),
//	)
//
// Attr helpers standardize key names used across packages (error, component,
// business_id, queue, platform).
package logger
