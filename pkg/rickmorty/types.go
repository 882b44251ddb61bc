// Package rickmorty defines the wire types of the public Rick and Morty API
// and the gallery's query model.
package rickmorty

import (
	"encoding/json"
	"strings"
)

// DefaultBaseURL is the root of the public API.
const DefaultBaseURL = "https://rickandmortyapi.com/api"

// Gallery limits dictated by the upstream API and the page layout.
const (
	// TotalPages is the number of character pages the API serves unfiltered.
	TotalPages = 42

	// WindowSize is how many page numbers the navigation control shows.
	WindowSize = 5

	// MaxResults caps how many characters one page of the gallery shows.
	MaxResults = 18
)

// Status is a character's vital status.
type Status string

const (
	StatusAlive   Status = "Alive"
	StatusDead    Status = "Dead"
	StatusUnknown Status = "Unknown"
)

// UnmarshalJSON maps the API's lower-case "unknown" (and anything
// unrecognised) onto StatusUnknown.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseStatus(raw)
	return nil
}

// ParseStatus normalises a status string.
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "alive":
		return StatusAlive
	case "dead":
		return StatusDead
	default:
		return StatusUnknown
	}
}

// Indicator is the colour name of the status dot shown next to a character.
func (s Status) Indicator() string {
	switch s {
	case StatusAlive:
		return "green"
	case StatusDead:
		return "red"
	default:
		return "gray"
	}
}

// Location is a named place with its API URL.
type Location struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Character is one entity summary returned by the character endpoint.
type Character struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Status   Status   `json:"status"`
	Species  string   `json:"species"`
	Image    string   `json:"image"`
	Location Location `json:"location"`
	Episode  []string `json:"episode"`
}

// FirstEpisode returns the URL of the first episode the character appears
// in, and false when the character has none.
func (c Character) FirstEpisode() (string, bool) {
	if len(c.Episode) == 0 {
		return "", false
	}
	return c.Episode[0], true
}

// PageInfo is the "info" envelope of a paginated response.
type PageInfo struct {
	Count int    `json:"count"`
	Pages int    `json:"pages"`
	Next  string `json:"next"`
	Prev  string `json:"prev"`
}

// CharacterPage is one page of the character endpoint.
type CharacterPage struct {
	Info    PageInfo    `json:"info"`
	Results []Character `json:"results"`
}

// Episode is the subset of the episode resource the gallery reads.
type Episode struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	AirDate string `json:"air_date"`
	Code    string `json:"episode"`
}

// Query is the user-controlled search state.
type Query struct {
	Search string `json:"search"`
	Page   int    `json:"page"`
}
