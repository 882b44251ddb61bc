package cache

import (
	"bytes"
	"io"
	"net/http"
	"testing"
	"time"
)

const episodeBody = `{"id": 1, "name": "Pilot", "air_date": "December 2, 2013", "episode": "S01E01"}`

func TestResponseToEntry(t *testing.T) {
	tests := []struct {
		name    string
		resp    *http.Response
		wantErr bool
	}{
		{
			name: "response with validators",
			resp: &http.Response{
				StatusCode: 200,
				Header: http.Header{
					"Expires":       []string{time.Now().Add(1 * time.Hour).Format(http.TimeFormat)},
					"Last-Modified": []string{time.Now().Add(-1 * time.Hour).Format(http.TimeFormat)},
					"Etag":          []string{`W/"3ab-xyz"`},
					"Content-Type":  []string{"application/json"},
				},
				Body: io.NopCloser(bytes.NewReader([]byte(episodeBody))),
			},
		},
		{
			name: "response without expires header",
			resp: &http.Response{
				StatusCode: 200,
				Header: http.Header{
					"Content-Type": []string{"application/json"},
				},
				Body: io.NopCloser(bytes.NewReader([]byte(episodeBody))),
			},
		},
		{
			name:    "nil response",
			resp:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := ResponseToEntry(tt.resp)
			if (err != nil) != tt.wantErr {
				t.Errorf("ResponseToEntry() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}

			body, _ := io.ReadAll(tt.resp.Body)
			if string(body) != episodeBody {
				t.Errorf("Response body was not restored: %q", body)
			}
			if string(entry.Data) != episodeBody {
				t.Errorf("Data = %q, want %q", entry.Data, episodeBody)
			}
			if entry.StatusCode != tt.resp.StatusCode {
				t.Errorf("StatusCode = %v, want %v", entry.StatusCode, tt.resp.StatusCode)
			}
			if entry.ETag != tt.resp.Header.Get("ETag") {
				t.Errorf("ETag = %v, want %v", entry.ETag, tt.resp.Header.Get("ETag"))
			}
			if entry.Expires.IsZero() {
				t.Error("Expires time was not set")
			}
		})
	}
}

func TestParseExpires(t *testing.T) {
	now := time.Now()
	future := now.Add(1 * time.Hour)
	tolerance := 2 * time.Second

	within := func(got, want time.Time) bool {
		diff := got.Sub(want)
		return diff >= -tolerance && diff <= tolerance
	}

	t.Run("valid expires header", func(t *testing.T) {
		got := parseExpires(http.Header{"Expires": []string{future.Format(http.TimeFormat)}})
		if !within(got, future) {
			t.Errorf("parseExpires() = %v, want approximately %v", got, future)
		}
	})

	t.Run("no expires header", func(t *testing.T) {
		got := parseExpires(http.Header{})
		if !within(got, now.Add(DefaultTTL)) {
			t.Errorf("parseExpires() = %v, want approximately now+DefaultTTL", got)
		}
	})

	t.Run("invalid expires header", func(t *testing.T) {
		got := parseExpires(http.Header{"Expires": []string{"not a date"}})
		if !within(got, now.Add(DefaultTTL)) {
			t.Errorf("parseExpires() = %v, want approximately now+DefaultTTL", got)
		}
	})

	t.Run("expires in the past", func(t *testing.T) {
		past := now.Add(-1 * time.Hour)
		got := parseExpires(http.Header{"Expires": []string{past.Format(http.TimeFormat)}})
		if !within(got, now) {
			t.Errorf("parseExpires() = %v, want approximately now", got)
		}
	})
}

func TestShouldMakeConditionalRequest(t *testing.T) {
	tests := []struct {
		name  string
		entry *CacheEntry
		want  bool
	}{
		{"nil entry", nil, false},
		{"entry with ETag", &CacheEntry{ETag: `W/"abc"`}, true},
		{"entry with Last-Modified", &CacheEntry{LastModified: time.Now()}, true},
		{"entry without validators", &CacheEntry{Data: []byte("data")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldMakeConditionalRequest(tt.entry); got != tt.want {
				t.Errorf("ShouldMakeConditionalRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddConditionalHeaders(t *testing.T) {
	lastMod := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		entry      *CacheEntry
		wantHeader string
		wantValue  string
	}{
		{
			name:       "If-None-Match from ETag",
			entry:      &CacheEntry{ETag: `W/"abc"`},
			wantHeader: "If-None-Match",
			wantValue:  `W/"abc"`,
		},
		{
			name:       "If-Modified-Since from Last-Modified",
			entry:      &CacheEntry{LastModified: lastMod},
			wantHeader: "If-Modified-Since",
			wantValue:  "Sun, 01 Jan 2023 12:00:00 GMT",
		},
		{
			name:       "ETag preferred",
			entry:      &CacheEntry{ETag: `W/"abc"`, LastModified: lastMod},
			wantHeader: "If-None-Match",
			wantValue:  `W/"abc"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "https://rickandmortyapi.com/api/episode/1", nil)
			AddConditionalHeaders(req, tt.entry)

			if got := req.Header.Get(tt.wantHeader); got != tt.wantValue {
				t.Errorf("Header %s = %v, want %v", tt.wantHeader, got, tt.wantValue)
			}
		})
	}
}

func TestAddConditionalHeaders_NilInputs(t *testing.T) {
	// Should not panic with nil inputs
	AddConditionalHeaders(nil, &CacheEntry{ETag: "test"})
	AddConditionalHeaders(&http.Request{}, nil)
	AddConditionalHeaders(&http.Request{}, &CacheEntry{ETag: "test"})
}
