package sandbox

import (
	"context"

	"go.uber.org/zap"
)

// FS exposes the sandboxed file operations. It holds no mutable state and
// is safe for concurrent use.
type FS struct {
	allow    *AllowList
	resolver *Resolver
	limits   Limits
	logger   *zap.Logger
}

// Option configures an FS.
type Option func(*FS)

// WithLogger sets the logger used for denials and mutations.
func WithLogger(logger *zap.Logger) Option {
	return func(f *FS) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithLimits overrides traversal limits. Zero fields keep their defaults.
func WithLimits(l Limits) Option {
	return func(f *FS) {
		d := f.limits
		if l.DefaultTreeDepth > 0 {
			d.DefaultTreeDepth = l.DefaultTreeDepth
		}
		if l.MaxTreeDepth > 0 {
			d.MaxTreeDepth = l.MaxTreeDepth
		}
		if l.DefaultMaxResults > 0 {
			d.DefaultMaxResults = l.DefaultMaxResults
		}
		if l.MaxLineLength > 0 {
			d.MaxLineLength = l.MaxLineLength
		}
		if l.BinarySniffBytes > 0 {
			d.BinarySniffBytes = l.BinarySniffBytes
		}
		f.limits = d
	}
}

// New creates an FS confined to allow.
func New(allow *AllowList, opts ...Option) *FS {
	f := &FS{
		allow:    allow,
		resolver: NewResolver(allow),
		limits:   DefaultLimits(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Limits returns the effective limits.
func (f *FS) Limits() Limits {
	return f.limits
}

// ListAllowedDirectories returns the configured roots verbatim.
func (f *FS) ListAllowedDirectories() []string {
	return f.allow.Roots()
}

func (f *FS) resolve(op, p string) (string, error) {
	resolved, err := f.resolver.Resolve(op, p)
	if err != nil {
		f.logDenied(op, p, err)
	}
	return resolved, err
}

func (f *FS) resolveEntry(op, p string) (string, error) {
	resolved, err := f.resolver.ResolveEntry(op, p)
	if err != nil {
		f.logDenied(op, p, err)
	}
	return resolved, err
}

func (f *FS) logDenied(op, p string, err error) {
	if KindOf(err) == KindAccessDenied {
		f.logger.Warn("path outside allowed directories",
			zap.String("op", op),
			zap.String("path", p),
		)
	}
}

func checkContext(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return classify(op, "", err)
	}
	return nil
}
