package freeze

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-freeze/dsp/ring"
)

const (
	// NumChannels is the fixed stereo channel count.
	NumChannels = 2

	// MaxSampleRate is the provisioning ceiling for buffer sizing.
	MaxSampleRate = 96000.0

	// MaxWindowSize bounds the capture window. MIDI note 0 is
	// ~8.176 Hz, which at MaxSampleRate is a period of 11742 samples.
	MaxWindowSize = 11742

	// XfadeFrames is the length of the release crossfade and of the
	// loop-seam smoothing region, in samples.
	XfadeFrames = 64
)

const noNote = -1

// Engine is a pitch-synchronous freeze effect. On note-on it captures
// one period of the incoming signal (at the period implied by the
// note's pitch) and loops it as output; on note-off it crossfades back
// to the live input.
//
// The engine records continuously into one input ring per channel and
// replays captured loop content from one output ring per channel. All
// buffers are preallocated at construction, so note handling and
// sample processing never allocate.
//
// The engine is single-threaded: one goroutine must drive both event
// handling and sample processing. It is not thread-safe.
type Engine struct {
	sampleRate float64
	note       int
	windowSize int
	xfade      [NumChannels]int
	input      [NumChannels]*ring.Buffer
	output     [NumChannels]*ring.Buffer
}

// NewEngine creates a freeze engine for the given sample rate.
// The rate must be positive, finite, and at most MaxSampleRate so the
// lowest pitch's period always fits the preallocated buffers.
func NewEngine(sampleRate float64) (*Engine, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, err
	}

	e := &Engine{
		sampleRate: sampleRate,
		note:       noNote,
	}

	for c := range e.input {
		in, err := ring.New(MaxWindowSize)
		if err != nil {
			return nil, fmt.Errorf("freeze input ring: %w", err)
		}

		out, err := ring.New(MaxWindowSize)
		if err != nil {
			return nil, fmt.Errorf("freeze output ring: %w", err)
		}

		e.input[c] = in
		e.output[c] = out
	}

	return e, nil
}

// SampleRate returns sample rate in Hz.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// WindowSize returns the capture window of the most recent note-on,
// in samples. Zero before the first note-on.
func (e *Engine) WindowSize() int { return e.windowSize }

// HeldNote returns the currently frozen pitch, if any.
func (e *Engine) HeldNote() (uint8, bool) {
	if e.note == noNote {
		return 0, false
	}
	return uint8(e.note), true
}

// CrossfadeRemaining returns the samples left in the given channel's
// release crossfade, 0 when no release is in progress.
func (e *Engine) CrossfadeRemaining(channel int) int {
	return e.xfade[channel]
}

// SetSampleRate updates the rate used for the pitch-to-window-size
// calculation. It takes effect on the next note-on; an already frozen
// loop keeps its captured window.
func (e *Engine) SetSampleRate(sampleRate float64) error {
	if err := validateSampleRate(sampleRate); err != nil {
		return err
	}

	e.sampleRate = sampleRate

	return nil
}

// NoteOn freezes one period of the recorded history at the given
// pitch. A note-on while already frozen replaces the held pitch and
// recaptures immediately: monophonic, last note wins.
func (e *Engine) NoteOn(pitch uint8) {
	e.note = int(pitch)
	e.windowSize = int(math.Round(e.sampleRate / PitchToFreq(pitch)))

	for c := range e.input {
		// Rewind the input read cursor to the start of the last
		// captured period, then copy it into the output ring. The
		// copy wraps the output write cursor back to 0, aligned with
		// its read cursor, so replay starts at the period boundary.
		e.input[c].OpenWindow(e.windowSize)
		e.output[c].Resize(e.windowSize, 0)
		for range e.windowSize {
			e.output[c].Write(e.input[c].Read())
		}
		e.output[c].Smooth(XfadeFrames)

		// Frozen and releasing are mutually exclusive.
		e.xfade[c] = 0
	}
}

// NoteOff releases the freeze if pitch matches the held note, arming
// the release crossfade on every channel. Note-offs for any other
// pitch are ignored.
func (e *Engine) NoteOff(pitch uint8) {
	if e.note != int(pitch) {
		return
	}

	e.note = noNote
	for c := range e.xfade {
		e.xfade[c] = XfadeFrames
	}
}

// ProcessSample records in into the channel's rolling history and
// returns the channel's output sample for this tick: the captured loop
// while frozen, a linear blend of loop and live input while releasing,
// or the live input unchanged.
func (e *Engine) ProcessSample(channel int, in float64) float64 {
	e.input[channel].Write(in)

	switch {
	case e.note != noNote:
		return e.output[channel].Read()
	case e.xfade[channel] > 0:
		alpha := float64(e.xfade[channel]) / XfadeFrames
		mix := alpha*e.output[channel].Read() + (1-alpha)*in
		e.xfade[channel]--

		return mix
	default:
		return in
	}
}

// Process runs ProcessSample over whole channel buffers. Channels
// beyond NumChannels and samples beyond the shorter of each in/out
// pair are ignored.
func (e *Engine) Process(in, out [][]float64) {
	channels := min(len(in), len(out), NumChannels)
	for c := range channels {
		n := min(len(in[c]), len(out[c]))
		for i := range n {
			out[c][i] = e.ProcessSample(c, in[c][i])
		}
	}
}

// Reset returns the engine to the live state with cleared buffers.
// The sample rate is unchanged.
func (e *Engine) Reset() {
	e.note = noNote
	e.windowSize = 0

	for c := range e.input {
		e.input[c].Reset()
		e.output[c].Resize(e.output[c].Cap(), 0)
		e.output[c].Reset()
		e.xfade[c] = 0
	}
}

// PitchToFreq converts a MIDI pitch to its equal-tempered frequency in
// Hz, anchored at A4 (pitch 69) = 440 Hz.
func PitchToFreq(pitch uint8) float64 {
	return 440 * math.Exp2((float64(pitch)-69)/12)
}

func validateSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("freeze sample rate must be > 0: %f", sampleRate)
	}

	if sampleRate > MaxSampleRate {
		return fmt.Errorf("freeze sample rate must be <= %.f: %f", MaxSampleRate, sampleRate)
	}

	return nil
}
