package models

// LyricsOutcome is the closed set of lyrics resolution results:
// [SyncedLyrics], [UnsyncedLyrics], [Instrumental], [NotFound] and, for user input only, [ClearLyrics].
//
// Dispatch sites switch on the concrete type and treat any other value as a programming error.
type LyricsOutcome interface {
	lyricsOutcome()
	String() string
}

// SyncedLyrics carries time-tagged lyrics and their plain rendering.
type SyncedLyrics struct {
	Synced string
	Plain  string
}

// UnsyncedLyrics carries plain lyrics only.
type UnsyncedLyrics struct {
	Plain string
}

// Instrumental marks a track without lyrics.
type Instrumental struct{}

// NotFound means the provider has no record for the track.
type NotFound struct{}

// ClearLyrics removes stored lyrics. Produced only from empty user input.
type ClearLyrics struct{}

func (SyncedLyrics) lyricsOutcome()   {}
func (UnsyncedLyrics) lyricsOutcome() {}
func (Instrumental) lyricsOutcome()   {}
func (NotFound) lyricsOutcome()       {}
func (ClearLyrics) lyricsOutcome()    {}

func (SyncedLyrics) String() string   { return "synced" }
func (UnsyncedLyrics) String() string { return "unsynced" }
func (Instrumental) String() string   { return "instrumental" }
func (NotFound) String() string       { return "not_found" }
func (ClearLyrics) String() string    { return "clear" }

// LyricsSource tells the resolution pipeline where an outcome came from.
type LyricsSource int

const (
	ProviderSource LyricsSource = iota
	UserSource
)

func (s LyricsSource) String() string {
	switch s {
	case ProviderSource:
		return "provider"
	case UserSource:
		return "user"
	default:
		return ""
	}
}

// RawLyrics is a lyrics record as the lyrics database returns it.
type RawLyrics struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  *string `json:"plainLyrics"`
	SyncedLyrics *string `json:"syncedLyrics"`
}
