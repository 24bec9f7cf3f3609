// Package history keeps a local record of played tracks next to the configuration.
package history

import (
	"sort"
	"sync"
	"time"

	"github.com/melody-cli/melody/filesystem"
	"github.com/melody-cli/melody/track"
	"github.com/melody-cli/melody/where"
	"github.com/metafates/gache"
	"github.com/samber/lo"
)

var cacher = gache.New[map[string]*Entry](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

var (
	// mu serializes read-modify-write cycles, plays are saved from concurrent reporters
	mu  sync.Mutex
	now = time.Now
)

// Get returns every entry keyed by track id.
func Get() (map[string]*Entry, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

// Recent returns entries most recently played first.
func Recent() ([]*Entry, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	entries := lo.Values(saved)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].LastPlayed.Equal(entries[j].LastPlayed) {
			return entries[i].TrackID < entries[j].TrackID
		}
		return entries[i].LastPlayed.After(entries[j].LastPlayed)
	})
	return entries, nil
}

// Save records a play of t, bumping its play count.
func Save(t track.Track) error {
	mu.Lock()
	defer mu.Unlock()

	saved, err := Get()
	if err != nil {
		return err
	}

	entry := newEntry(t)
	if existing, ok := saved[t.ID]; ok {
		entry.Plays = existing.Plays
	}
	entry.Plays++
	entry.LastPlayed = now()

	saved[t.ID] = entry
	return cacher.Set(saved)
}

// Remove deletes the entry for trackID.
func Remove(trackID string) error {
	mu.Lock()
	defer mu.Unlock()

	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, trackID)
	return cacher.Set(saved)
}

// Clear forgets every entry.
func Clear() error {
	mu.Lock()
	defer mu.Unlock()
	return cacher.Set(make(map[string]*Entry))
}
