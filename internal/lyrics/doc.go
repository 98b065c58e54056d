// Package lyrics decides which lyrics variant applies to a track and persists it.
//
// # Classification
//
// Provider records are classified by [FromRaw]; user input by [Classify]. User input whose
// synced text contains the marker "[au: instrumental]" (case-insensitive, optional space after the
// colon) is Instrumental regardless of the plain text. Empty user input is a [models.ClearLyrics]
// action, which nulls the stored lyrics rather than reporting them missing.
//
// # Resolution
//
// [Resolver] dispatches an outcome to exactly one storage update and, on success, signals the
// track's view to reload via [events.ReloadTrackID]:
//
//	Synced        UpdateSyncedLyrics     reload
//	Unsynced      UpdatePlainLyrics      reload
//	Instrumental  UpdateInstrumental     reload for user saves only
//	Clear         UpdateNullLyrics       reload
//	NotFound      nothing                shared.ErrLyricsNotFound
//
// When sidecar files are enabled, the .lrc/.txt files next to the audio file are written
// before the storage update and restored if that update fails.
package lyrics
