// Package plugin adapts the freeze engine to a plugin-hosting
// boundary: static metadata, single- and double-precision block
// processing, and MIDI event demultiplexing.
//
// A host drives one instance from a single thread, once per block:
// first ProcessEvents with the block's pending MIDI messages, then
// Process32 or Process64 with the block's audio. Events therefore
// apply atomically at block boundaries; sub-block event timing is
// intentionally not supported.
package plugin

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-freeze/dsp/core"
	"github.com/cwbudde/algo-freeze/dsp/freeze"
)

// CategoryEffect identifies the plugin as an audio effect.
const CategoryEffect = "effect"

// Info is the static metadata exposed to a host.
type Info struct {
	Name            string
	Vendor          string
	Category        string
	Inputs          int
	Outputs         int
	MIDIInputs      int
	UniqueID        int32
	Version         int32
	DoublePrecision bool
}

// Freeze is one plugin instance wrapping a freeze engine.
type Freeze struct {
	engine *freeze.Engine
}

// New creates a plugin instance. The sample rate is taken from the
// processor options and defaults to 48 kHz.
func New(opts ...core.ProcessorOption) (*Freeze, error) {
	cfg := core.ApplyProcessorOptions(opts...)

	engine, err := freeze.NewEngine(cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("plugin: %w", err)
	}

	return &Freeze{engine: engine}, nil
}

// Info returns the plugin metadata.
func (p *Freeze) Info() Info {
	return Info{
		Name:            "Zamerzika",
		Vendor:          "Ruslan Prakapchuk",
		Category:        CategoryEffect,
		Inputs:          freeze.NumChannels,
		Outputs:         freeze.NumChannels,
		MIDIInputs:      1,
		UniqueID:        1_804_198_802,
		Version:         1,
		DoublePrecision: true,
	}
}

// CanReceiveMIDI reports that the plugin consumes MIDI input.
func (p *Freeze) CanReceiveMIDI() bool { return true }

// Engine returns the wrapped freeze engine.
func (p *Freeze) Engine() *freeze.Engine { return p.engine }

// SetSampleRate updates the engine's sample rate. Takes effect on the
// next note-on.
func (p *Freeze) SetSampleRate(rate float64) error {
	return p.engine.SetSampleRate(rate)
}

// ProcessEvents applies a block's pending MIDI messages. Note starts
// freeze, note ends (including running-status note-on with velocity 0)
// release; every other message kind is ignored.
func (p *Freeze) ProcessEvents(msgs []midi.Message) {
	for _, msg := range msgs {
		var channel, key, velocity uint8

		switch {
		case msg.GetNoteStart(&channel, &key, &velocity):
			p.engine.NoteOn(key)
		case msg.GetNoteEnd(&channel, &key):
			p.engine.NoteOff(key)
		}
	}
}

// Process64 processes one double-precision block.
func (p *Freeze) Process64(in, out [][]float64) {
	p.engine.Process(in, out)
}

// Process32 processes one single-precision block. The engine's
// arithmetic stays in float64; samples are converted at this boundary
// only.
func (p *Freeze) Process32(in, out [][]float32) {
	channels := min(len(in), len(out), freeze.NumChannels)
	for c := range channels {
		n := min(len(in[c]), len(out[c]))
		for i := range n {
			out[c][i] = float32(p.engine.ProcessSample(c, float64(in[c][i])))
		}
	}
}
