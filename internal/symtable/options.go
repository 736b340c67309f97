package symtable

import "go.uber.org/zap"

type options struct {
	logger *zap.Logger
	hasher Hasher
	onGrow func(from, to int)
}

type Option func(*options)

// WithLogger sets the logger used to report rehashes.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHasher replaces the bucket hash. The hasher must be a pure function
// of the key and the bucket count.
func WithHasher(h Hasher) Option {
	return func(o *options) {
		if h != nil {
			o.hasher = h
		}
	}
}

// WithGrowHook registers a callback invoked after every completed rehash
// with the previous and the new bucket count.
func WithGrowHook(fn func(from, to int)) Option {
	return func(o *options) {
		o.onGrow = fn
	}
}

func defaultOptions() options {
	return options{
		logger: zap.NewNop(),
		hasher: MultiplicativeHasher,
	}
}
