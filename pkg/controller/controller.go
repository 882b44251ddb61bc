// Package controller holds the gallery's query state, the current result set
// and the first-episode names resolved for it.
//
// Every fetch starts a new generation. A response is applied only while its
// generation is still current, so a slow response to an earlier query never
// overwrites a newer one. Superseded requests are not cancelled; their results
// are counted and dropped. Resolved names live in a map that is replaced
// whenever a generation starts, so a name can never be shown against a
// character of a different result set.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Sternrassler/character-gallery/pkg/logging"
	"github.com/Sternrassler/character-gallery/pkg/pagination"
	"github.com/Sternrassler/character-gallery/pkg/rickmorty"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrSuperseded is returned by a fetch whose result was discarded because a
// newer fetch started while it was in flight.
var ErrSuperseded = errors.New("fetch superseded by a newer query")

// Fetcher is the upstream the controller reads from. *client.Client
// implements it.
type Fetcher interface {
	ListCharacters(ctx context.Context, page int, name string) (*rickmorty.CharacterPage, error)
	GetEpisode(ctx context.Context, ref string) (*rickmorty.Episode, error)
}

// Config holds controller policy.
type Config struct {
	// ResetPageOnSearch moves back to page 1 when the search text changes.
	// Off by default: changing the search keeps the current page.
	ResetPageOnSearch bool

	// MaxConcurrency bounds parallel episode lookups.
	MaxConcurrency int

	// TotalPages is the upper bound for page numbers.
	TotalPages int

	// WindowSize is the number of page buttons in the navigation window.
	WindowSize int

	// MaxResults caps the number of characters kept per result set.
	MaxResults int
}

// DefaultConfig returns the gallery's fixed layout limits.
func DefaultConfig() Config {
	return Config{
		ResetPageOnSearch: false,
		MaxConcurrency:    6,
		TotalPages:        rickmorty.TotalPages,
		WindowSize:        rickmorty.WindowSize,
		MaxResults:        rickmorty.MaxResults,
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver registers fn to receive a snapshot after every state change.
// Calls are serialized, in the order the changes happened.
func WithObserver(fn func(View)) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

// WithLogger replaces the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// Controller is the results controller. It is safe for concurrent use.
type Controller struct {
	fetcher  Fetcher
	config   Config
	logger   zerolog.Logger
	observer func(View)

	// notifyMu orders observer calls; never acquired while mu is held.
	notifyMu sync.Mutex

	mu         sync.Mutex
	query      rickmorty.Query
	generation uint64
	characters []rickmorty.Character
	names      map[int]string
	loading    bool
	err        error
}

// New creates a controller on page 1 with an empty search. Nothing is
// fetched until FetchResults or one of the setters is called.
func New(fetcher Fetcher, cfg Config, opts ...Option) *Controller {
	if fetcher == nil {
		panic("controller: fetcher cannot be nil")
	}
	defaults := DefaultConfig()
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaults.MaxConcurrency
	}
	if cfg.TotalPages <= 0 {
		cfg.TotalPages = defaults.TotalPages
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = defaults.WindowSize
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaults.MaxResults
	}

	c := &Controller{
		fetcher: fetcher,
		config:  cfg,
		logger:  logging.NewLogger("controller"),
		query:   rickmorty.Query{Page: 1},
		names:   make(map[int]string),
		loading: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSearchText replaces the name filter and fetches. An empty text means
// no filter.
func (c *Controller) SetSearchText(ctx context.Context, text string) error {
	return c.update(ctx, func(q *rickmorty.Query) {
		q.Search = text
		if c.config.ResetPageOnSearch {
			q.Page = 1
		}
	})
}

// SetPage moves to page n, clamped to [1, TotalPages], and fetches.
func (c *Controller) SetPage(ctx context.Context, n int) error {
	return c.update(ctx, func(q *rickmorty.Query) {
		q.Page = pagination.Clamp(n, c.config.TotalPages)
	})
}

// Previous moves one page back, stopping at 1.
func (c *Controller) Previous(ctx context.Context) error {
	return c.update(ctx, func(q *rickmorty.Query) {
		q.Page = pagination.Clamp(q.Page-1, c.config.TotalPages)
	})
}

// Next moves one page forward, stopping at TotalPages.
func (c *Controller) Next(ctx context.Context) error {
	return c.update(ctx, func(q *rickmorty.Query) {
		q.Page = pagination.Clamp(q.Page+1, c.config.TotalPages)
	})
}

// FetchResults fetches the current query as a new generation, then resolves
// the first-episode names of the results. It returns ErrSuperseded when a
// newer fetch started before the results arrived, and the upstream error when
// the primary fetch failed. Episode lookup failures are not returned.
func (c *Controller) FetchResults(ctx context.Context) error {
	return c.update(ctx, func(*rickmorty.Query) {})
}

func (c *Controller) update(ctx context.Context, mutate func(q *rickmorty.Query)) error {
	c.mu.Lock()
	mutate(&c.query)
	gen, query := c.beginLocked()
	c.mu.Unlock()

	c.notify()
	return c.fetch(ctx, gen, query)
}

// beginLocked starts a new generation: results and names of the previous one
// are dropped and the view goes back to loading.
func (c *Controller) beginLocked() (uint64, rickmorty.Query) {
	c.generation++
	c.characters = nil
	c.names = make(map[int]string)
	c.loading = true
	c.err = nil
	Generations.Inc()
	return c.generation, c.query
}

func (c *Controller) fetch(ctx context.Context, gen uint64, query rickmorty.Query) error {
	logger := c.logger.With().
		Str("fetch_id", uuid.NewString()).
		Uint64("generation", gen).
		Int("page", query.Page).
		Str("search", query.Search).
		Logger()

	logger.Debug().Msg("Fetching results")
	page, err := c.fetcher.ListCharacters(ctx, query.Page, query.Search)

	c.mu.Lock()
	if gen != c.generation {
		current := c.generation
		c.mu.Unlock()
		StaleResults.WithLabelValues(stageResults).Inc()
		logger.Debug().Uint64("current_generation", current).Msg("Discarding stale results")
		return ErrSuperseded
	}

	c.loading = false
	if err != nil {
		c.err = err
		c.mu.Unlock()
		FetchErrors.WithLabelValues(stageResults).Inc()
		logger.Error().Err(err).Msg("Failed to fetch results")
		c.notify()
		return fmt.Errorf("fetch results: %w", err)
	}

	var results []rickmorty.Character
	if page != nil {
		results = page.Results
	}
	if len(results) > c.config.MaxResults {
		results = results[:c.config.MaxResults]
	}
	chars := make([]rickmorty.Character, len(results))
	copy(chars, results)
	c.characters = chars
	c.mu.Unlock()

	logger.Info().Int("results", len(chars)).Msg("Results applied")
	c.notify()

	c.ResolveEpisodeNames(ctx, gen, chars)
	return nil
}

// Snapshot returns the current render state.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	chars := make([]rickmorty.Character, len(c.characters))
	copy(chars, c.characters)

	names := make(map[int]string, len(c.names))
	for id, name := range c.names {
		names[id] = name
	}

	v := View{
		Characters: chars,
		Loading:    c.loading,
		Names:      names,
		Page:       c.query.Page,
		Search:     c.query.Search,
		Window:     pagination.Pages(c.query.Page, c.config.TotalPages, c.config.WindowSize),
		TotalPages: c.config.TotalPages,
		Generation: c.generation,
	}
	if c.err != nil {
		v.Err = c.err.Error()
	}
	return v
}

// Generation returns the current result-set generation.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Controller) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation
}

func (c *Controller) notify() {
	if c.observer == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.observer(c.Snapshot())
}
