// Package services implements clients for remote HTTP APIs.
//
// # LRCLib
//
// [LRCLibService] wraps the public LRCLib lyrics database:
//   - GET /api/get : exact lookup by title, artist, album and duration
//   - GET /api/search : fuzzy lookup, returns every candidate record
//   - POST /api/request-challenge : issues a proof-of-work challenge
//   - POST /api/publish : submits lyrics, authorized by the X-Publish-Token header
//
// Lookups are anonymous. A publish token is "<prefix>:<nonce>" where nonce solves the challenge
// (see package challenge).
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrLyricsNotFound] : the record does not exist (HTTP 404 from /api/get)
//   - [shared.ErrTimeout] : the request deadline elapsed
//   - [shared.ErrNetwork] : transport failure or non-2xx response
//   - [shared.ErrInvalidChallenge] : the challenge response was empty
//
// Non-2xx responses carry the server's message when the body decodes as an LRCLib error.
package services
