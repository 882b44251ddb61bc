package controller

import "github.com/Sternrassler/character-gallery/pkg/rickmorty"

// Placeholders rendered in place of an unresolved first-episode name.
const (
	LabelLoading   = "Loading..."
	LabelNoEpisode = "No episodes"
)

// NameState is the resolution state of one character's first-episode name.
type NameState int

const (
	// NamePending is shown until a lookup lands. A failed lookup stays here.
	NamePending NameState = iota
	// NameResolved means the name is in View.Names.
	NameResolved
	// NameNoEpisode marks characters with no episodes; nothing is fetched.
	NameNoEpisode
)

func (s NameState) String() string {
	switch s {
	case NameResolved:
		return "resolved"
	case NameNoEpisode:
		return "no_episode"
	default:
		return "pending"
	}
}

// View is an immutable snapshot of the controller for rendering.
type View struct {
	Characters []rickmorty.Character `json:"characters"`
	Loading    bool                  `json:"loading"`
	Err        string                `json:"error,omitempty"`
	Names      map[int]string        `json:"names"`
	Page       int                   `json:"page"`
	Search     string                `json:"search"`
	Window     []int                 `json:"window"`
	TotalPages int                   `json:"total_pages"`
	Generation uint64                `json:"generation"`
}

// EpisodeState reports how the first-episode name of character id resolves.
func (v View) EpisodeState(id int) NameState {
	if name, ok := v.Names[id]; ok && name != "" {
		return NameResolved
	}
	for _, c := range v.Characters {
		if c.ID == id && len(c.Episode) == 0 {
			return NameNoEpisode
		}
	}
	return NamePending
}

// EpisodeLabel is the text shown under "First seen in:" for character id.
func (v View) EpisodeLabel(id int) string {
	switch v.EpisodeState(id) {
	case NameResolved:
		return v.Names[id]
	case NameNoEpisode:
		return LabelNoEpisode
	default:
		return LabelLoading
	}
}

// IsCurrent reports whether page is the page being shown.
func (v View) IsCurrent(page int) bool {
	return page == v.Page
}
