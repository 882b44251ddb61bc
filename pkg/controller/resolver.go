package controller

import (
	"context"

	"github.com/Sternrassler/character-gallery/pkg/rickmorty"
	"golang.org/x/sync/errgroup"
)

// ResolveEpisodeNames looks up the first episode of every character that has
// one and records its name under the character's id for generation gen.
// Lookups run concurrently and land independently. A failed lookup, or one
// that yields a blank name, is logged and leaves the character pending. Names
// arriving after gen was superseded are dropped. It returns once every lookup has finished.
func (c *Controller) ResolveEpisodeNames(ctx context.Context, gen uint64, chars []rickmorty.Character) {
	if !c.isCurrent(gen) {
		StaleResults.WithLabelValues(stageEpisode).Inc()
		return
	}

	logger := c.logger.With().Uint64("generation", gen).Logger()

	var g errgroup.Group
	g.SetLimit(c.config.MaxConcurrency)

	for _, char := range chars {
		ref, ok := char.FirstEpisode()
		if !ok {
			EpisodeResolutions.WithLabelValues(outcomeNoEpisode).Inc()
			continue
		}

		g.Go(func() error {
			if !c.isCurrent(gen) {
				StaleResults.WithLabelValues(stageEpisode).Inc()
				return nil
			}

			episode, err := c.fetcher.GetEpisode(ctx, ref)

			c.mu.Lock()
			if gen != c.generation {
				c.mu.Unlock()
				StaleResults.WithLabelValues(stageEpisode).Inc()
				logger.Debug().Int("character_id", char.ID).Msg("Discarding stale episode name")
				return nil
			}
			if err != nil {
				c.mu.Unlock()
				FetchErrors.WithLabelValues(stageEpisode).Inc()
				EpisodeResolutions.WithLabelValues(outcomeFailed).Inc()
				logger.Warn().
					Err(err).
					Int("character_id", char.ID).
					Str("episode", ref).
					Msg("Failed to resolve episode name")
				return nil
			}
			if episode.Name == "" {
				c.mu.Unlock()
				EpisodeResolutions.WithLabelValues(outcomeFailed).Inc()
				logger.Warn().
					Int("character_id", char.ID).
					Str("episode", ref).
					Msg("Episode has no name")
				return nil
			}
			c.names[char.ID] = episode.Name
			c.mu.Unlock()

			EpisodeResolutions.WithLabelValues(outcomeResolved).Inc()
			c.notify()
			return nil
		})
	}

	// Lookups never fail the group.
	_ = g.Wait()
}
