package main

import (
	"errors"
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-freeze/dsp/core"
	"github.com/cwbudde/algo-freeze/dsp/freeze"
	"github.com/cwbudde/algo-freeze/dsp/signal"
	"github.com/cwbudde/algo-freeze/measure/period"
	"github.com/cwbudde/algo-freeze/plugin"
)

const renderBlockSize = 512

// runOffline renders the scripted take: the source plays throughout,
// a note-on lands at 1/4 of the duration and the matching note-off at
// 3/4, so the middle half of the file is the frozen loop.
func runOffline(opts options) error {
	if opts.duration <= 0 {
		return fmt.Errorf("duration must be > 0: %f", opts.duration)
	}

	p, err := plugin.New(core.WithSampleRate(opts.rate))
	if err != nil {
		return err
	}

	gen := signal.NewGenerator([]core.ProcessorOption{core.WithSampleRate(opts.rate)})

	total := int(opts.duration * opts.rate)

	src, err := gen.Saw(opts.source, 0.8, total)
	if err != nil {
		return err
	}

	pitch := uint8(opts.pitch)
	onAt := total / 4
	offAt := 3 * total / 4

	out := renderScripted(p, src, pitch, onAt, offAt)

	logger.Info("rendered",
		"samples", total,
		"pitch", pitch,
		"window", p.Engine().WindowSize())

	analyzeLoop(out[0][onAt:offAt], opts.rate, pitch)

	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if err := writeWAV(f, out, int(opts.rate)); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}

	logger.Info("wrote output", "path", opts.output)

	return nil
}

// renderScripted processes src block by block, applying the note
// events at the block boundary preceding their scheduled sample.
func renderScripted(p *plugin.Freeze, src []float64, pitch uint8, onAt, offAt int) [][]float64 {
	total := len(src)

	out := make([][]float64, freeze.NumChannels)
	for c := range out {
		out[c] = make([]float64, total)
	}

	in := make([][]float64, freeze.NumChannels)
	outBlock := make([][]float64, freeze.NumChannels)

	for pos := 0; pos < total; pos += renderBlockSize {
		end := min(pos+renderBlockSize, total)

		var events []midi.Message
		if pos <= onAt && onAt < end {
			events = append(events, midi.NoteOn(0, pitch, 100))
		}
		if pos <= offAt && offAt < end {
			events = append(events, midi.NoteOff(0, pitch))
		}

		p.ProcessEvents(events)

		for c := range in {
			in[c] = src[pos:end]
			outBlock[c] = out[c][pos:end]
		}

		p.Process64(in, outBlock)
	}

	return out
}

// analyzeLoop reports the detected fundamental of the frozen segment
// next to the held note's nominal frequency.
func analyzeLoop(loop []float64, rate float64, pitch uint8) {
	res, err := period.Estimate(loop, rate)
	if errors.Is(err, period.ErrNoPeriodicity) {
		logger.Warn("no periodicity detected in frozen segment")
		return
	}
	if err != nil {
		logger.Warn("period analysis failed", "err", err)
		return
	}

	logger.Info("frozen loop analysis",
		"detected_hz", fmt.Sprintf("%.2f", res.FrequencyHz),
		"nominal_hz", fmt.Sprintf("%.2f", freeze.PitchToFreq(pitch)),
		"period_samples", fmt.Sprintf("%.2f", res.PeriodSamples),
		"confidence", fmt.Sprintf("%.2f", res.Confidence))
}
