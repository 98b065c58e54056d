// Package models defines the data shared by the player, the lyrics pipeline and the publish pipeline.
//
// Library data:
//   - [Track] : Immutable snapshot of a library track with its stored lyrics
//   - [LookupParams] : Metadata the lyrics provider is queried with
//   - [RawLyrics] : Provider record as returned by LRCLIB get and search
//
// Lyrics resolution:
//   - [LyricsOutcome] : Closed sum over [SyncedLyrics], [UnsyncedLyrics], [Instrumental], [NotFound] and [ClearLyrics]
//   - [LyricsSource] : Whether an outcome came from the provider or from user input
//
// Playback:
//   - [PlayerStatus] : Stopped, Playing or Paused
//   - [PlayerSnapshot] : Read-only copy of the engine state handed to observers
//
// Publishing:
//   - [Challenge] : Proof-of-work prefix and target issued by LRCLIB
//   - [PublishToken] : "<prefix>:<nonce>" sent with a publish request
//   - [PublishRequest] : Track metadata and lyrics to publish
//   - [PublishProgress] : Three-phase progress record, one per attempt
//
// Snapshots and progress records serialize to camelCase JSON for UI clients.
package models
