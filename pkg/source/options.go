package source

import "github.com/rstms/iso9660rr/pkg/logging"

// Options holds the configuration a Source is constructed with.
type Options struct {
	CacheContent bool
	MinFetch     int
	Logger       *logging.Logger
}

// Option configures a Source at construction time.
type Option func(*Options)

// WithCacheContent enables caching of file-content sectors (not just
// metadata sectors) in the sector cache. Off by default, since file content
// is typically read once and can be large.
func WithCacheContent(enabled bool) Option {
	return func(o *Options) { o.CacheContent = enabled }
}

// WithMinFetch sets the minimum number of sectors requested per fetch call,
// batching small reads to reduce round trips to the underlying Fetcher.
func WithMinFetch(n int) Option {
	return func(o *Options) { o.MinFetch = n }
}

// WithLogger sets the Logger used for diagnostic tracing of seeks and
// fetches.
func WithLogger(l *logging.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func defaultOptions() Options {
	return Options{
		CacheContent: false,
		MinFetch:     16,
		Logger:       logging.DefaultLogger(),
	}
}
