// Package player owns playback state and reports it to observers.
//
// # Engine
//
// [Engine] is a three-state machine (stopped, playing, paused) over a [Device]. Every transition
// and every state refresh takes the engine mutex, so no caller observes a torn state.
// Opening and decoding a file happens before the mutex is taken.
//
//	Play    any      -> playing, position 0
//	Pause   playing  -> paused, position kept
//	Resume  paused   -> playing
//	Seek    playing | paused, position clamped to [0, duration]
//	Stop    any      -> stopped, track cleared, position 0
//
// Transitions from the wrong state return [shared.ErrInvalidState] and change nothing.
// Device failures return [shared.ErrPlayback] and change nothing.
//
// While playing, the reported position never moves backwards except through Seek.
//
// # Broadcaster
//
// [Broadcaster] samples the engine every 40ms by default and emits a [models.PlayerSnapshot]
// as [events.PlayerState]. The snapshot is taken under the mutex and emitted after it is released.
//
// # Devices
//
// The speaker subpackage plays mp3, wav and flac files through the system audio output.
// It opens the output when it is created, so [Device.Play] never waits on the audio driver
// while the engine holds its mutex.
package player
