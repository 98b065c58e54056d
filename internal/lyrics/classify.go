package lyrics

import (
	"regexp"

	"github.com/desertthunder/libget/internal/models"
)

// InstrumentalMarker is the synced-lyrics line that marks a track instrumental.
const InstrumentalMarker = "[au: instrumental]"

var instrumentalPattern = regexp.MustCompile(`(?i)\[au:\s*instrumental\]`)

// IsInstrumental reports whether synced contains the instrumental marker.
func IsInstrumental(synced string) bool {
	return instrumentalPattern.MatchString(synced)
}

// Classify turns user-submitted text into an outcome.
func Classify(plain, synced string) models.LyricsOutcome {
	switch {
	case IsInstrumental(synced):
		return models.Instrumental{}
	case synced != "":
		return models.SyncedLyrics{Synced: synced, Plain: plain}
	case plain != "":
		return models.UnsyncedLyrics{Plain: plain}
	default:
		return models.ClearLyrics{}
	}
}

// FromRaw turns a provider record into an outcome. Records with no usable lyrics are [models.NotFound].
func FromRaw(raw models.RawLyrics) models.LyricsOutcome {
	synced := deref(raw.SyncedLyrics)
	plain := deref(raw.PlainLyrics)

	switch {
	case raw.Instrumental || IsInstrumental(synced):
		return models.Instrumental{}
	case synced != "":
		return models.SyncedLyrics{Synced: synced, Plain: plain}
	case plain != "":
		return models.UnsyncedLyrics{Plain: plain}
	default:
		return models.NotFound{}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
