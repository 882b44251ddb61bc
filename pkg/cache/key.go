package cache

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every gallery entry in Redis.
const KeyPrefix = "gallery"

// CacheKey identifies a cached API response.
type CacheKey struct {
	// Host is the upstream host (e.g., "rickandmortyapi.com")
	Host string

	// Path is the request path (e.g., "/api/character")
	Path string

	// QueryParams are the query parameters (e.g., {"page": "2", "name": "rick"})
	QueryParams url.Values
}

// KeyForRequest builds the cache key of an outgoing request.
func KeyForRequest(req *http.Request) CacheKey {
	return CacheKey{
		Host:        req.URL.Host,
		Path:        req.URL.Path,
		QueryParams: req.URL.Query(),
	}
}

// String generates a deterministic cache key string.
// Format: gallery:host/path:query1=val1:query2=val2a,val2b
//
// Example:
//
//	gallery:rickandmortyapi.com/api/character:count=3:name=rick:page=1
func (k CacheKey) String() string {
	parts := []string{KeyPrefix}

	target := strings.Trim(k.Host+"/"+strings.Trim(k.Path, "/"), "/")
	if target != "" {
		parts = append(parts, target)
	}

	// Sorted for determinism
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, strings.Join(k.QueryParams[key], ",")))
		}
	}

	return strings.Join(parts, ":")
}
