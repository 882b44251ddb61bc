// Package cache stores upstream API responses in Redis so repeat requests
// can be revalidated instead of re-downloaded.
//
// Every request still goes to the network. A stored entry only contributes
// its validators (ETag, Last-Modified) to the outgoing request; when the API
// answers 304 Not Modified the stored body is served in place of the empty
// one. Nothing is ever served without a round trip.
//
// # Basic Usage
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.KeyForRequest(req)
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// plain request
//	}
//
//	if cache.ShouldMakeConditionalRequest(entry) {
//		cache.AddConditionalHeaders(req, entry)
//	}
//
// # Storing Responses
//
//	entry, err := cache.ResponseToEntry(resp)
//	if err != nil {
//		return err
//	}
//	if err := manager.Set(ctx, key, entry); err != nil {
//		return err
//	}
//
// # Metrics
//
//   - gallery_cache_hits_total{layer="redis"}
//   - gallery_cache_misses_total
//   - gallery_cache_size_bytes{layer="redis"}
//   - gallery_api_304_responses_total
//   - gallery_conditional_requests_total
//   - gallery_cache_errors_total{operation}
package cache
