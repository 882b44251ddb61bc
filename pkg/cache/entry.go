package cache

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"
)

// CacheEntry is one stored API response together with its validators.
type CacheEntry struct {
	Data         []byte      `json:"data"`
	ETag         string      `json:"etag"`
	Expires      time.Time   `json:"expires"`
	LastModified time.Time   `json:"last_modified"`
	StatusCode   int         `json:"status_code"`
	Headers      http.Header `json:"headers"`
	CachedAt     time.Time   `json:"cached_at"`
}

// IsExpired reports whether Redis should already have dropped the entry.
func (e *CacheEntry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration, or 0 once expired.
func (e *CacheEntry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// Renew moves the expiry forward using the headers of a 304 response.
// It reports whether the entry changed.
func (e *CacheEntry) Renew(headers http.Header) bool {
	if headers.Get("Expires") == "" {
		return false
	}
	e.Expires = parseExpires(headers)
	return true
}

// ToResponse rebuilds an HTTP response from the stored entry. The
// X-Gallery-Cache header marks it as served from cache.
func (e *CacheEntry) ToResponse(req *http.Request) *http.Response {
	headers := e.Headers.Clone()
	if headers == nil {
		headers = http.Header{}
	}
	headers.Set("X-Gallery-Cache", "revalidated")

	status := e.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	return &http.Response{
		Status:        strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        headers,
		Body:          io.NopCloser(bytes.NewReader(e.Data)),
		ContentLength: int64(len(e.Data)),
		Request:       req,
	}
}
