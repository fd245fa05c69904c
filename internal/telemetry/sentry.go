package telemetry

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/smallbiznis/valora-session/internal/config"
)

// InitSentry enables crash reporting when a DSN is configured.
func InitSentry(cfg config.Config) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		AttachStacktrace: true,
	})
}

// CaptureError reports an infrastructure failure.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}

// FlushSentry drains pending events before the process exits.
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
