// Package signal generates deterministic test and demo signals.
package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-freeze/dsp/core"
)

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Sine generates a sine wave.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if err := g.validate(freqHz, samples); err != nil {
		return nil, err
	}

	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// Saw generates a rising sawtooth in [-amplitude, amplitude].
// The waveform is naive (not band-limited), which suits time-domain
// loop tests where exact periodicity matters more than alias-free
// spectra.
func (g *Generator) Saw(freqHz, amplitude float64, samples int) ([]float64, error) {
	if err := g.validate(freqHz, samples); err != nil {
		return nil, err
	}

	out := make([]float64, samples)
	step := freqHz / g.cfg.SampleRate
	phase := 0.0
	for i := range out {
		out[i] = amplitude * (2*phase - 1)
		phase += step
		if phase >= 1 {
			phase -= 1
		}
	}
	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}

	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = amplitude * (2*rng.Float64() - 1)
	}
	return out, nil
}

func (g *Generator) validate(freqHz float64, samples int) error {
	if samples <= 0 {
		return fmt.Errorf("signal samples must be > 0: %d", samples)
	}
	if g.cfg.SampleRate <= 0 {
		return fmt.Errorf("signal sample rate must be > 0: %f", g.cfg.SampleRate)
	}
	if freqHz <= 0 || freqHz >= g.cfg.SampleRate/2 {
		return fmt.Errorf("signal frequency must be in (0, %f): %f", g.cfg.SampleRate/2, freqHz)
	}
	return nil
}
