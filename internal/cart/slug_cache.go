package cart

import (
	"encoding/json"
	"slices"

	applog "shopcart/internal/log"
)

// ProductSlugCacheKey is where the best-effort list of {product_slug} entries
// for logged-out carts is kept.
const ProductSlugCacheKey = "shoppingCart"

// KeyValueStore is the client-local store backing the product-slug cache. A
// missing key reads as "".
type KeyValueStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

type cachedProduct struct {
	ProductSlug string `json:"product_slug"`
}

// pruneProductSlugCache keeps only cached entries whose slug is still in the
// cart. Every failure is logged and otherwise ignored.
func pruneProductSlugCache(kv KeyValueStore, slugsInCart []string) {
	if kv == nil {
		return
	}
	raw, err := kv.Get(ProductSlugCacheKey)
	if err != nil {
		applog.Debug(nil, "cart.slugcache.read", map[string]any{"err": err.Error()})
		return
	}
	if raw == "" {
		raw = "[]"
	}
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		applog.Debug(nil, "cart.slugcache.decode", map[string]any{"err": err.Error()})
		return
	}

	kept := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		var p cachedProduct
		if json.Unmarshal(e, &p) != nil {
			continue
		}
		if slices.Contains(slugsInCart, p.ProductSlug) {
			kept = append(kept, e)
		}
	}
	b, err := json.Marshal(kept)
	if err != nil {
		return
	}
	if err := kv.Set(ProductSlugCacheKey, string(b)); err != nil {
		applog.Debug(nil, "cart.slugcache.write", map[string]any{"err": err.Error()})
	}
}

// RememberProductSlugs adds slugs missing from the product-slug cache. Like
// pruning, it never fails the caller.
func RememberProductSlugs(kv KeyValueStore, slugs []string) {
	if kv == nil || len(slugs) == 0 {
		return
	}
	raw, err := kv.Get(ProductSlugCacheKey)
	if err != nil {
		applog.Debug(nil, "cart.slugcache.read", map[string]any{"err": err.Error()})
		return
	}
	if raw == "" {
		raw = "[]"
	}
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		entries = nil
	}
	have := CachedProductSlugs(kv)
	for _, slug := range slugs {
		if slug == "" || slices.Contains(have, slug) {
			continue
		}
		b, err := json.Marshal(cachedProduct{ProductSlug: slug})
		if err != nil {
			continue
		}
		entries = append(entries, b)
		have = append(have, slug)
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := kv.Set(ProductSlugCacheKey, string(b)); err != nil {
		applog.Debug(nil, "cart.slugcache.write", map[string]any{"err": err.Error()})
	}
}

// CachedProductSlugs lists the slugs in the product-slug cache. Unreadable
// caches read as empty.
func CachedProductSlugs(kv KeyValueStore) []string {
	if kv == nil {
		return []string{}
	}
	raw, err := kv.Get(ProductSlugCacheKey)
	if err != nil || raw == "" {
		return []string{}
	}
	var entries []cachedProduct
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ProductSlug)
	}
	return out
}
