package repository

import "context"

type noCacheKey struct{}

// WithoutCache marks ctx so caching providers skip the lookup and refresh the
// entry from their source.
func WithoutCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, noCacheKey{}, true)
}

// CacheBypassed reports whether ctx was marked by WithoutCache.
func CacheBypassed(ctx context.Context) bool {
	v, _ := ctx.Value(noCacheKey{}).(bool)
	return v
}
