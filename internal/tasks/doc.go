// Package tasks orchestrates multi-step lyrics operations with progress reporting.
//
// # Publish Pipeline
//
// [PublishPipeline.Run] publishes lyrics in three strictly ordered phases:
//
//  1. request_challenge : obtain a proof-of-work challenge from LRCLib
//  2. solve_challenge : find the smallest nonce (see package challenge)
//  3. publish_lyrics : submit the lyrics with the token "<prefix>:<nonce>"
//
// A [models.PublishProgress] snapshot is emitted as [events.PublishLyricsProgress] after
// every phase transition, six snapshots for a successful run. A failing phase is marked
// Failed, emitted, and the error is returned; later phases never start. Retrying means
// running the whole pipeline again.
//
// # Bulk Download
//
// [BulkDownloader.Run] downloads lyrics for every track that lacks them, using a
// worker pool behind a shared rate limiter. Per-track failures are collected in the
// result rather than aborting the run.
//
// # Progress Reporting
//
// Bulk operations send [ProgressUpdate] values over a caller-supplied channel.
// Sends use select with default so a slow reader never blocks the operation.
package tasks
