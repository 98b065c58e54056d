// Package repositories implements SQLite persistence for the library.
//
// [TrackRepository] stores tracks with their artist and album rows, created on demand
// by [TrackRepository.Create] inside one transaction. It is the storage collaborator
// of the lyrics pipeline:
//   - [TrackRepository.GetTrackByID] and [TrackRepository.List] read track snapshots
//   - [TrackRepository.ListNoLyricsIDs] selects the tracks a bulk download visits
//   - [TrackRepository.UpdateSyncedLyrics], [TrackRepository.UpdatePlainLyrics],
//     [TrackRepository.UpdateInstrumental] and [TrackRepository.UpdateNullLyrics]
//     each write every lyrics column in a single statement, so an update is never partial
//
// Missing tracks are reported as [shared.ErrTrackNotFound]; failed updates wrap [shared.ErrStorage].
package repositories
