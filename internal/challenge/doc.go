// Package challenge solves the proof-of-work challenges that gate publishing to LRCLib.
//
// A challenge is a prefix and a 256-bit target. A nonce solves it when
//
//	sha256(prefix + decimal(nonce)) <= target
//
// comparing both sides as unsigned big-endian integers.
//
// # Search Order
//
// [Solver] scans the nonce space in rounds. Each round splits a contiguous window
// into one chunk per worker; workers scan their chunk in increasing order. After a round
// the smallest hit across all chunks wins, so the result is always the smallest valid
// nonce no matter which worker finishes first. Workers stop early once a smaller hit
// than their current candidate is known.
//
// # Deadlines
//
// The search is unbounded. A deadline (from [SolverOpts] or the caller's context)
// stops it with [shared.ErrSolverTimeout].
package challenge
