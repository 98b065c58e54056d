// Package events is the observer notification channel between the core and its user interfaces.
//
// Three named events are emitted, each a fire-and-forget push:
//   - [PlayerState] : a [models.PlayerSnapshot], every broadcast tick
//   - [ReloadTrackID] : a track id whose view should reload after a lyrics change
//   - [PublishLyricsProgress] : a [models.PublishProgress] after every phase transition
//
// # Bus
//
// [Bus] fans each event out to in-process subscribers. Every subscriber owns a bounded queue;
// when the queue is full the event is dropped for that subscriber only. Emit never blocks,
// so a slow or absent observer cannot stall the emitter.
//
// # Websocket Hub
//
// [Hub] subscribes to a [Bus] and forwards events to websocket clients connected at /events
// as JSON frames:
//
//	{"event": "player-state", "payload": {...}}
//
// Each client has its own send queue with the same drop policy as bus subscribers.
package events
