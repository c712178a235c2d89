// Package catalog provides the read-only list of playable songs.
package catalog

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/songqueue/internal/domain/song"
)

// Catalog is an ordered, read-only sequence of songs fixed at construction.
type Catalog struct {
	songs []song.Song
	byID  map[int]int // song ID -> index
}

// New creates a catalog from the given songs.
// Every song must be valid and IDs must be unique.
func New(songs []song.Song) (*Catalog, error) {
	c := &Catalog{
		songs: make([]song.Song, 0, len(songs)),
		byID:  make(map[int]int, len(songs)),
	}
	for i, s := range songs {
		if err := s.Validate(); err != nil {
			return nil, errors.Wrapf(err, "catalog entry %d", i)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, errors.Newf("duplicate song id %d (catalog entry %d)", s.ID, i)
		}
		c.byID[s.ID] = len(c.songs)
		c.songs = append(c.songs, s)
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New([]song.Song{
		{ID: 1, Name: "Song 1", CoverArtRef: "path_to_cover_art_1.jpg", Duration: 10 * time.Second},
		{ID: 2, Name: "Song 2", CoverArtRef: "path_to_cover_art_2.jpg", Duration: 20 * time.Second},
		{ID: 3, Name: "Song 3", CoverArtRef: "path_to_cover_art_3.jpg", Duration: 15 * time.Second},
		{ID: 4, Name: "Song 4", CoverArtRef: "path_to_cover_art_4.jpg", Duration: 25 * time.Second},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// List returns a copy of the songs in catalog order.
func (c *Catalog) List() []song.Song {
	result := make([]song.Song, len(c.songs))
	copy(result, c.songs)
	return result
}

// Len returns the number of songs.
func (c *Catalog) Len() int {
	return len(c.songs)
}

// Find looks up a song by ID.
func (c *Catalog) Find(id int) (song.Song, bool) {
	i, ok := c.byID[id]
	if !ok {
		return song.Song{}, false
	}
	return c.songs[i], true
}

// At returns the song at the given position, or nil if there is none.
// A nil result stands for "nothing selected".
func (c *Catalog) At(index int) *song.Song {
	if index < 0 || index >= len(c.songs) {
		return nil
	}
	s := c.songs[index]
	return &s
}

// IDs returns all song IDs in catalog order.
func (c *Catalog) IDs() []int {
	ids := make([]int, len(c.songs))
	for i, s := range c.songs {
		ids[i] = s.ID
	}
	return ids
}

// TotalDuration returns the summed duration of all songs.
func (c *Catalog) TotalDuration() time.Duration {
	var total time.Duration
	for _, s := range c.songs {
		total += s.Duration
	}
	return total
}
