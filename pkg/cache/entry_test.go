package cache

import (
	"io"
	"net/http"
	"testing"
	"time"
)

func TestCacheEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{"expired entry", time.Now().Add(-1 * time.Hour), true},
		{"valid entry", time.Now().Add(1 * time.Hour), false},
		{"just expired", time.Now().Add(-1 * time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &CacheEntry{Expires: tt.expires}
			if got := entry.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheEntry_TTL(t *testing.T) {
	entry := &CacheEntry{Expires: time.Now().Add(-1 * time.Hour)}
	if got := entry.TTL(); got != 0 {
		t.Errorf("TTL() of expired entry = %v, want 0", got)
	}

	entry = &CacheEntry{Expires: time.Now().Add(5 * time.Minute)}
	got := entry.TTL()
	if got < 4*time.Minute+59*time.Second || got > 5*time.Minute+time.Second {
		t.Errorf("TTL() = %v, want about 5m", got)
	}
}

func TestCacheEntry_Renew(t *testing.T) {
	entry := &CacheEntry{Expires: time.Now().Add(time.Minute)}

	if entry.Renew(http.Header{}) {
		t.Error("Renew() without Expires header should report no change")
	}

	newExpires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	if !entry.Renew(http.Header{"Expires": []string{newExpires.Format(http.TimeFormat)}}) {
		t.Fatal("Renew() with Expires header should report a change")
	}
	if !entry.Expires.Equal(newExpires) {
		t.Errorf("Expires = %v, want %v", entry.Expires, newExpires)
	}
}

func TestCacheEntry_ToResponse(t *testing.T) {
	entry := &CacheEntry{
		Data:       []byte(episodeBody),
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Content-Type": []string{"application/json"}},
	}

	req, _ := http.NewRequest("GET", "https://rickandmortyapi.com/api/episode/1", nil)
	resp := entry.ToResponse(req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Gallery-Cache") != "revalidated" {
		t.Error("cached response should carry X-Gallery-Cache header")
	}
	if entry.Headers.Get("X-Gallery-Cache") != "" {
		t.Error("ToResponse() must not mutate the stored headers")
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != episodeBody {
		t.Errorf("body = %q, want %q", body, episodeBody)
	}
	if resp.Request != req {
		t.Error("Request not attached to response")
	}
}

func TestCacheEntry_ToResponse_DefaultStatus(t *testing.T) {
	resp := (&CacheEntry{}).ToResponse(nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
}
