package track

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/melody-cli/melody/log"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// ErrTrackNotFound is returned when an identifier is absent from the catalog.
var ErrTrackNotFound = errors.New("track not found")

// Fetcher retrieves the full track list from wherever tracks live.
type Fetcher interface {
	FetchTracks(ctx context.Context) ([]Track, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]Track, error)

func (f FetcherFunc) FetchTracks(ctx context.Context) ([]Track, error) {
	return f(ctx)
}

// Catalog is the in-memory list of available tracks, safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	fetcher  Fetcher
	tracks   []Track
	index    map[string]int
	onLoaded []func(first Track)
}

// NewCatalog returns an empty catalog backed by fetcher.
func NewCatalog(fetcher Fetcher) *Catalog {
	return &Catalog{
		fetcher: fetcher,
		index:   make(map[string]int),
	}
}

// OnLoaded registers a hook that runs after every successful non-empty load
// with the first track in catalog order.
func (c *Catalog) OnLoaded(fn func(first Track)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLoaded = append(c.onLoaded, fn)
}

// Load fetches all tracks and replaces the cache.
// On failure the cache is left empty and the error is returned for reporting.
func (c *Catalog) Load(ctx context.Context) error {
	tracks, err := c.fetcher.FetchTracks(ctx)
	if err != nil {
		log.Errorf("catalog load failed: %v", err)
		c.Replace(nil)
		return fmt.Errorf("load catalog: %w", err)
	}

	c.Replace(tracks)
	log.Infof("catalog loaded with %d tracks", len(tracks))

	if len(tracks) == 0 {
		return nil
	}

	c.mu.RLock()
	hooks := c.onLoaded
	first := c.tracks[0]
	c.mu.RUnlock()

	for _, hook := range hooks {
		hook(first)
	}
	return nil
}

// Replace swaps the cached tracks. Duplicate identifiers keep their first occurrence.
func (c *Catalog) Replace(tracks []Track) {
	tracks = lo.UniqBy(tracks, func(t Track) string { return t.ID })

	index := make(map[string]int, len(tracks))
	for i, t := range tracks {
		index[t.ID] = i
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracks = tracks
	c.index = index
}

// FindByID returns the track with the given identifier.
func (c *Catalog) FindByID(id string) (Track, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return Track{}, fmt.Errorf("%w: %s", ErrTrackNotFound, id)
	}
	return c.tracks[i], nil
}

// IDs returns every identifier in catalog order.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Map(c.tracks, func(t Track, _ int) string { return t.ID })
}

// Tracks returns a copy of the cached tracks.
func (c *Catalog) Tracks() []Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Track(nil), c.tracks...)
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tracks)
}

// Search returns tracks whose name or description fuzzily matches query,
// best matches first.
func (c *Catalog) Search(query string) []Track {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.Tracks()
	}

	type scored struct {
		track Track
		rank  int
	}

	var found []scored
	for _, t := range c.Tracks() {
		nameRank := fuzzy.RankMatchFold(query, t.Name)
		descRank := fuzzy.RankMatchFold(query, t.Description)

		switch {
		case nameRank >= 0 && (descRank < 0 || nameRank <= descRank):
			found = append(found, scored{track: t, rank: nameRank})
		case descRank >= 0:
			found = append(found, scored{track: t, rank: descRank})
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].rank < found[j].rank })
	return lo.Map(found, func(s scored, _ int) Track { return s.track })
}

// Closest suggests the catalog identifier nearest to id, for "did you mean" messages.
func (c *Catalog) Closest(id string) mo.Option[string] {
	ids := c.IDs()
	if len(ids) == 0 {
		return mo.None[string]()
	}

	return mo.Some(lo.MinBy(ids, func(a, b string) bool {
		return levenshtein.Distance(id, a) < levenshtein.Distance(id, b)
	}))
}
