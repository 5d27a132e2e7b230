package webhook

import "time"

// Settings holds the tunables shared by the lifecycle and the protocol processors.
type Settings struct {
	Now func() time.Time
}

type Option func(*Settings)

// WithClock replaces the wall clock, used by tests and by the Payme expiry rule.
func WithClock(now func() time.Time) Option {
	return func(s *Settings) {
		if now != nil {
			s.Now = now
		}
	}
}

func NewSettings(opts ...Option) Settings {
	s := Settings{Now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
