// Command freezer demonstrates the pitch-synchronous freeze effect.
//
// Usage:
//
//	freezer [flags]
//
// By default it renders a scripted take offline: a sawtooth source
// plays for the configured duration, a note-on freezes one period of
// it, a note-off crossfades back, and the result is written as a
// 16-bit stereo WAV. The detected fundamental of the frozen loop is
// logged for comparison against the held pitch.
//
// With -live it instead opens the first available MIDI input and
// streams the processed source to the default audio output until
// interrupted.
//
// Examples:
//
//	freezer -pitch 57 -o frozen.wav
//	freezer -rate 44100 -source 330 -pitch 64
//	freezer -live -device Launchkey
package main

import (
	"flag"
	"log/slog"
	"os"
)

type options struct {
	rate     float64
	pitch    uint
	source   float64
	duration float64
	output   string
	live     bool
	device   string
	debug    bool
}

func main() {
	var opts options

	flag.Float64Var(&opts.rate, "rate", 48000, "sample rate in Hz")
	flag.UintVar(&opts.pitch, "pitch", 69, "MIDI pitch to freeze at (0-127)")
	flag.Float64Var(&opts.source, "source", 220, "source sawtooth frequency in Hz")
	flag.Float64Var(&opts.duration, "dur", 4, "offline render duration in seconds")
	flag.StringVar(&opts.output, "o", "freezer.wav", "offline output WAV path")
	flag.BoolVar(&opts.live, "live", false, "live mode: MIDI input and audio playback")
	flag.StringVar(&opts.device, "device", "", "substring match for the MIDI input port (live mode)")
	flag.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flag.Parse()

	initLogger(opts.debug)

	if opts.pitch > 127 {
		logger.Error("pitch out of range", "pitch", opts.pitch)
		os.Exit(2)
	}

	var err error
	if opts.live {
		err = runLive(opts)
	} else {
		err = runOffline(opts)
	}

	if err != nil {
		logger.Error("freezer failed", "err", err)
		os.Exit(1)
	}
}

// logger is the package-wide structured logger. Safe to use before
// initLogger is called; defaults to slog.Default().
var logger = slog.Default()

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(h)
	slog.SetDefault(logger)
}
