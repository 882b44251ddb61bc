package cache

import (
	"net/http"
	"net/url"
	"testing"
)

func TestCacheKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  CacheKey
		want string
	}{
		{
			name: "path only",
			key: CacheKey{
				Path: "/api/episode/1",
			},
			want: "gallery:api/episode/1",
		},
		{
			name: "host and path",
			key: CacheKey{
				Host: "rickandmortyapi.com",
				Path: "/api/episode/28/",
			},
			want: "gallery:rickandmortyapi.com/api/episode/28",
		},
		{
			name: "query params sorted",
			key: CacheKey{
				Host: "rickandmortyapi.com",
				Path: "/api/character",
				QueryParams: url.Values{
					"page":  []string{"2"},
					"name":  []string{"rick"},
					"count": []string{"3"},
				},
			},
			want: "gallery:rickandmortyapi.com/api/character:count=3:name=rick:page=2",
		},
		{
			name: "empty name filter kept",
			key: CacheKey{
				Host: "rickandmortyapi.com",
				Path: "/api/character",
				QueryParams: url.Values{
					"page": []string{"1"},
					"name": []string{""},
				},
			},
			want: "gallery:rickandmortyapi.com/api/character:name=:page=1",
		},
		{
			name: "repeated values joined",
			key: CacheKey{
				Path: "/api/character",
				QueryParams: url.Values{
					"status": []string{"alive", "dead"},
				},
			},
			want: "gallery:api/character:status=alive,dead",
		},
		{
			name: "empty key",
			key:  CacheKey{},
			want: "gallery",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.key.String()
			if got != tt.want {
				t.Errorf("CacheKey.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeyForRequest(t *testing.T) {
	req, _ := http.NewRequest("GET", "https://rickandmortyapi.com/api/character?page=3&name=morty", nil)

	key := KeyForRequest(req)
	if key.Host != "rickandmortyapi.com" {
		t.Errorf("Host = %q, want rickandmortyapi.com", key.Host)
	}
	if key.Path != "/api/character" {
		t.Errorf("Path = %q, want /api/character", key.Path)
	}

	want := "gallery:rickandmortyapi.com/api/character:name=morty:page=3"
	if got := key.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

// TestCacheKey_Determinism ensures same input always produces same key
func TestCacheKey_Determinism(t *testing.T) {
	key := CacheKey{
		Host: "rickandmortyapi.com",
		Path: "/api/character",
		QueryParams: url.Values{
			"page":  []string{"1"},
			"name":  []string{"rick"},
			"count": []string{"3"},
		},
	}

	first := key.String()
	for i := 0; i < 10; i++ {
		if result := key.String(); result != first {
			t.Errorf("result[%d] = %v, want %v (not deterministic)", i, result, first)
		}
	}
}
