// Package freeze implements a pitch-synchronous freeze effect: on
// note-on it captures one period of the live input at the held note's
// pitch and loops it indefinitely, on note-off it crossfades back to
// the live signal.
package freeze
