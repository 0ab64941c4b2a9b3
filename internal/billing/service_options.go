package billing

import (
	"log/slog"
	"time"
)

// ServiceOption configures optional Service settings.
type ServiceOption func(*Service)

// WithClock overrides the time source. The engine must never read ambient
// time, so tests inject fixed clocks here.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the structured logger. Nil loggers are ignored and the
// service keeps discarding.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}
