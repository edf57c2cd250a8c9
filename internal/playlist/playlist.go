package playlist

import (
	"strconv"
	"time"
)

// Track represents a single music track with the metadata we keep from
// the music service. Anything else the service returns is dropped.
type Track struct {
	Title     string
	Artist    string
	Album     string
	Genre     string
	Year      int
	PlayCount int
	// StoreID is the catalog id, LibraryID the id within the user's library.
	StoreID   string
	LibraryID string
}

// SongID returns the catalog id when known, otherwise the library id.
func (t Track) SongID() string {
	if t.StoreID != "" {
		return t.StoreID
	}
	return t.LibraryID
}

// Details converts the track into a record. Fields the track doesn't carry
// (no genre, no year) are left out of the record.
func (t Track) Details() Details {
	d := Details{
		FieldTitle:  ptr(t.Title),
		FieldArtist: ptr(t.Artist),
		FieldAlbum:  ptr(t.Album),
		FieldSongID: ptr(t.SongID()),
	}
	if t.Genre != "" {
		d[FieldGenre] = ptr(t.Genre)
	}
	if t.Year > 0 {
		d[FieldYear] = ptr(strconv.Itoa(t.Year))
	}
	return d
}

// Playlist represents a collection of tracks
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Tracks      []Track
	CreatedAt   time.Time
}

func ptr(s string) *string {
	return &s
}
