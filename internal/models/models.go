package models

import "path/filepath"

// Track is an immutable snapshot of a library track.
type Track struct {
	ID           int64   `json:"id"`
	FilePath     string  `json:"filePath"`
	FileName     string  `json:"fileName"`
	Title        string  `json:"title"`
	AlbumID      *int64  `json:"albumId,omitempty"`
	AlbumName    string  `json:"albumName"`
	ArtistID     *int64  `json:"artistId,omitempty"`
	ArtistName   string  `json:"artistName"`
	Duration     float64 `json:"duration"` // seconds
	SyncedLyrics *string `json:"lrcLyrics,omitempty"`
	PlainLyrics  *string `json:"txtLyrics,omitempty"`
	Instrumental bool    `json:"instrumental"`
}

// NewTrack builds a track snapshot for the file at path. FileName is derived from the path.
func NewTrack(path, title, album, artist string, duration float64) Track {
	return Track{
		FilePath:   path,
		FileName:   filepath.Base(path),
		Title:      title,
		AlbumName:  album,
		ArtistName: artist,
		Duration:   duration,
	}
}

// HasSyncedLyrics reports whether the track holds non-empty synced lyrics.
func (t Track) HasSyncedLyrics() bool {
	return t.SyncedLyrics != nil && *t.SyncedLyrics != ""
}

// HasPlainLyrics reports whether the track holds non-empty plain lyrics.
func (t Track) HasPlainLyrics() bool {
	return t.PlainLyrics != nil && *t.PlainLyrics != ""
}

// LookupParams returns the metadata the lyrics provider is queried with.
func (t Track) LookupParams() LookupParams {
	return LookupParams{
		Title:      t.Title,
		AlbumName:  t.AlbumName,
		ArtistName: t.ArtistName,
		Duration:   t.Duration,
	}
}

// LookupParams identifies a recording for the lyrics provider.
type LookupParams struct {
	Title      string  `json:"title"`
	AlbumName  string  `json:"albumName"`
	ArtistName string  `json:"artistName"`
	Duration   float64 `json:"duration"`
}
