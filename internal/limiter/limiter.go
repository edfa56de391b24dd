package limiter

// Limiter decides whether another upstream geolocation call is allowed
// for a key (usually the client address of the presentation layer).
// A rejected call is simply refused; nothing is queued or retried.
type Limiter interface {
	// Allow reports whether a call for key fits in the current quota
	Allow(key string) bool

	// Close cleans up any resources (Redis connections, etc.)
	Close() error
}
