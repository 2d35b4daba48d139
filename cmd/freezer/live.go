package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/ebitengine/oto/v3"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/cwbudde/algo-freeze/dsp/core"
	"github.com/cwbudde/algo-freeze/plugin"
)

// liveSource streams the processed sawtooth as interleaved signed
// 16-bit PCM. Read runs on oto's audio goroutine while note events
// arrive on the MIDI driver goroutine, so plugin access is serialized
// by mu; the engine itself stays single-threaded.
type liveSource struct {
	mu    sync.Mutex
	p     *plugin.Freeze
	phase float64
	step  float64
}

const liveAmplitude = 0.5

func (s *liveSource) Read(buf []byte) (int, error) {
	const frameBytes = 4 // 2 channels x int16

	frames := len(buf) / frameBytes

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < frames; i++ {
		in := liveAmplitude * (2*s.phase - 1)
		s.phase += s.step
		if s.phase >= 1 {
			s.phase -= 1
		}

		left := s.p.Engine().ProcessSample(0, in)
		right := s.p.Engine().ProcessSample(1, in)

		binary.LittleEndian.PutUint16(buf[i*frameBytes:], uint16(sampleToInt16(left)))
		binary.LittleEndian.PutUint16(buf[i*frameBytes+2:], uint16(sampleToInt16(right)))
	}

	return frames * frameBytes, nil
}

func (s *liveSource) noteOn(pitch uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Engine().NoteOn(pitch)
}

func (s *liveSource) noteOff(pitch uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Engine().NoteOff(pitch)
}

// runLive streams the processed source to the default audio output,
// freezing and releasing on notes from a MIDI input port.
func runLive(opts options) error {
	p, err := plugin.New(core.WithSampleRate(opts.rate))
	if err != nil {
		return err
	}

	src := &liveSource{
		p:    p,
		step: opts.source / opts.rate,
	}

	drv, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("midi driver: %w", err)
	}
	defer drv.Close()

	in, err := pickInput(drv, opts.device)
	if err != nil {
		return err
	}

	if err := in.Open(); err != nil {
		return fmt.Errorf("open %q: %w", in.String(), err)
	}
	defer in.Close()

	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		var channel, key, velocity uint8

		switch {
		case msg.GetNoteStart(&channel, &key, &velocity):
			logger.Debug("note on", "key", key, "vel", velocity)
			src.noteOn(key)
		case msg.GetNoteEnd(&channel, &key):
			logger.Debug("note off", "key", key)
			src.noteOff(key)
		}
	})
	if err != nil {
		return fmt.Errorf("listen %q: %w", in.String(), err)
	}
	defer stop()

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(opts.rate),
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return fmt.Errorf("audio context: %w", err)
	}

	<-ready

	player := otoCtx.NewPlayer(src)
	player.Play()
	defer player.Close()

	logger.Info("live mode running",
		"midi_in", in.String(),
		"rate", opts.rate,
		"source_hz", opts.source)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")

	return nil
}

// pickInput selects the MIDI input port: the first whose name contains
// device (case-insensitive), or the first port when device is empty.
func pickInput(drv *rtmididrv.Driver, device string) (drivers.In, error) {
	ins, err := drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("list midi inputs: %w", err)
	}

	if len(ins) == 0 {
		return nil, fmt.Errorf("no midi inputs available")
	}

	if device == "" {
		return ins[0], nil
	}

	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), strings.ToLower(device)) {
			return in, nil
		}
	}

	return nil, fmt.Errorf("no midi input matches %q", device)
}
