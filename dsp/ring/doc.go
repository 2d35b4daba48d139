// Package ring provides the fixed-capacity circular sample buffer used
// by the freeze engine, with independent read/write cursors, window
// alignment for replaying recent history, and loop-seam smoothing.
package ring
