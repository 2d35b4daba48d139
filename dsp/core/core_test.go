package core

import (
	"math"
	"testing"
)

func TestApplyProcessorOptionsDefaults(t *testing.T) {
	cfg := ApplyProcessorOptions()

	if cfg.SampleRate != 48000 {
		t.Fatalf("SampleRate: got %v want 48000", cfg.SampleRate)
	}

	if cfg.BlockSize != 1024 {
		t.Fatalf("BlockSize: got %d want 1024", cfg.BlockSize)
	}

	if cfg.Channels != 2 {
		t.Fatalf("Channels: got %d want 2", cfg.Channels)
	}
}

func TestApplyProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions(
		WithSampleRate(44100),
		WithBlockSize(256),
		WithChannels(1),
	)

	if cfg.SampleRate != 44100 {
		t.Fatalf("SampleRate: got %v want 44100", cfg.SampleRate)
	}

	if cfg.BlockSize != 256 {
		t.Fatalf("BlockSize: got %d want 256", cfg.BlockSize)
	}

	if cfg.Channels != 1 {
		t.Fatalf("Channels: got %d want 1", cfg.Channels)
	}
}

func TestOptionsIgnoreInvalid(t *testing.T) {
	cfg := ApplyProcessorOptions(
		WithSampleRate(-1),
		WithBlockSize(0),
		WithChannels(-2),
		nil,
	)

	if cfg != DefaultProcessorConfig() {
		t.Fatalf("invalid options changed config: %+v", cfg)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 1); got != 1 {
		t.Fatalf("got %v want 1", got)
	}

	if got := Clamp(-5, 0, 1); got != 0 {
		t.Fatalf("got %v want 0", got)
	}

	if got := Clamp(0.5, 1, 0); got != 0.5 {
		t.Fatalf("swapped bounds: got %v want 0.5", got)
	}
}

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1, 1+1e-13, 1e-12) {
		t.Fatal("expected nearly equal")
	}

	if NearlyEqual(1, 2, 1e-12) {
		t.Fatal("expected not equal")
	}

	if !NearlyEqual(0, 0, 0) {
		t.Fatal("zero comparison with default epsilon failed")
	}
}

func TestEnsureLen(t *testing.T) {
	buf := make([]float64, 4, 16)

	grown := EnsureLen(buf, 8)
	if len(grown) != 8 {
		t.Fatalf("len: got %d want 8", len(grown))
	}

	if &grown[0] != &buf[0] {
		t.Fatal("expected capacity reuse")
	}

	fresh := EnsureLen(buf, 32)
	if len(fresh) != 32 {
		t.Fatalf("len: got %d want 32", len(fresh))
	}

	if got := EnsureLen(buf, 0); len(got) != 0 {
		t.Fatalf("len: got %d want 0", len(got))
	}
}

func TestZero(t *testing.T) {
	buf := []float64{1, math.Pi, -3}
	Zero(buf)

	for i, v := range buf {
		if v != 0 {
			t.Fatalf("index %d: got %v want 0", i, v)
		}
	}
}
