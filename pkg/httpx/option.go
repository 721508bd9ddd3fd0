package httpx

import "time"

type Option func(*LoggingRoundTripper)

func WithLogFieldMaxLen(logFieldMaxLen int) Option {
	return func(rt *LoggingRoundTripper) {
		rt.logFieldMaxLen = logFieldMaxLen
	}
}

func WithSensitiveDataMasker(sensitiveDataMasker sensitiveDataMasker) Option {
	return func(rt *LoggingRoundTripper) {
		rt.sensitiveDataMasker = sensitiveDataMasker
	}
}

// WithSlowThreshold logs successful responses slower than d at warn level.
// Zero disables the check.
func WithSlowThreshold(d time.Duration) Option {
	return func(rt *LoggingRoundTripper) {
		rt.slowThreshold = d
	}
}
