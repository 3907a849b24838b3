package repositorycache

import "context"

// EntityTag returns the tag applied to every cached result of an entity type.
func EntityTag(entity string) string { return entity }

// EntityIDTag returns the tag applied to cached results about one entity id.
// Not-found and exists=false results are tagged with the requested id too, so
// a later write to that id invalidates them.
func EntityIDTag(entity, id string) string { return entity + ":" + id }

type cacheTagsContextKey struct{}

// WithCacheTags attaches additional cache tags to the context. Reads executed
// under the returned context register their cache entries with those tags,
// enabling caller-defined group invalidation (for example per bulk import).
func WithCacheTags(ctx context.Context, tags ...string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(tags) == 0 {
		return ctx
	}
	combined := dedupeStrings(append(cacheTagsFromContext(ctx), tags...))
	if len(combined) == 0 {
		return ctx
	}
	return context.WithValue(ctx, cacheTagsContextKey{}, combined)
}

func cacheTagsFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	if tags, ok := ctx.Value(cacheTagsContextKey{}).([]string); ok {
		return append([]string(nil), tags...)
	}
	return nil
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
