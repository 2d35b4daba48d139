package main

import (
	"testing"

	"github.com/cwbudde/algo-freeze/dsp/core"
	"github.com/cwbudde/algo-freeze/dsp/signal"
	"github.com/cwbudde/algo-freeze/plugin"
)

func TestRenderScripted(t *testing.T) {
	p, err := plugin.New(core.WithSampleRate(48000))
	if err != nil {
		t.Fatal(err)
	}

	gen := signal.NewGenerator([]core.ProcessorOption{core.WithSampleRate(48000)})

	const total = 48000

	src, err := gen.Saw(220, 0.8, total)
	if err != nil {
		t.Fatal(err)
	}

	onAt := total / 4
	offAt := 3 * total / 4

	out := renderScripted(p, src, 69, onAt, offAt)

	if len(out) != 2 || len(out[0]) != total {
		t.Fatalf("unexpected output shape: %d x %d", len(out), len(out[0]))
	}

	// Before the note-on block the output is the live source.
	for i := 0; i < onAt-renderBlockSize; i++ {
		if out[0][i] != src[i] {
			t.Fatalf("pre-freeze sample %d differs from source", i)
		}
	}

	// The frozen region repeats with the note's window period.
	window := p.Engine().WindowSize()
	if window != 109 {
		t.Fatalf("window: got %d want 109", window)
	}

	start := onAt + renderBlockSize
	for i := start; i+window < offAt-renderBlockSize; i++ {
		if out[0][i] != out[0][i+window] {
			t.Fatalf("frozen region not periodic at %d", i)
		}
	}

	// Well after the release crossfade the output is live again.
	tail := offAt + renderBlockSize
	for i := tail; i < total; i++ {
		if out[0][i] != src[i] {
			t.Fatalf("post-release sample %d differs from source", i)
		}
	}
}
