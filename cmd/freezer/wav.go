package main

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cwbudde/algo-freeze/dsp/core"
)

// writeWAV writes channels as an interleaved 16-bit PCM RIFF/WAVE
// stream. All channels must have equal length.
func writeWAV(w io.Writer, channels [][]float64, sampleRate int) error {
	if len(channels) == 0 {
		return fmt.Errorf("wav: no channels")
	}

	frames := len(channels[0])
	for c, ch := range channels {
		if len(ch) != frames {
			return fmt.Errorf("wav: channel %d length %d != %d", c, len(ch), frames)
		}
	}

	const (
		bitsPerSample = 16
		bytesPerSamp  = bitsPerSample / 8
	)

	numChannels := len(channels)
	dataSize := frames * numChannels * bytesPerSamp
	byteRate := sampleRate * numChannels * bytesPerSamp
	blockAlign := numChannels * bytesPerSamp

	var header struct {
		RIFF      [4]byte
		ChunkSize uint32
		WAVE      [4]byte
		Fmt       [4]byte
		FmtSize   uint32
		Format    uint16
		Channels  uint16
		Rate      uint32
		ByteRate  uint32
		Align     uint16
		Bits      uint16
		Data      [4]byte
		DataSize  uint32
	}

	copy(header.RIFF[:], "RIFF")
	copy(header.WAVE[:], "WAVE")
	copy(header.Fmt[:], "fmt ")
	copy(header.Data[:], "data")
	header.ChunkSize = uint32(36 + dataSize)
	header.FmtSize = 16
	header.Format = 1 // PCM
	header.Channels = uint16(numChannels)
	header.Rate = uint32(sampleRate)
	header.ByteRate = uint32(byteRate)
	header.Align = uint16(blockAlign)
	header.Bits = bitsPerSample
	header.DataSize = uint32(dataSize)

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}

	pcm := make([]int16, frames*numChannels)
	for i := 0; i < frames; i++ {
		for c := 0; c < numChannels; c++ {
			pcm[i*numChannels+c] = sampleToInt16(channels[c][i])
		}
	}

	return binary.Write(w, binary.LittleEndian, pcm)
}

// sampleToInt16 converts a float sample in [-1, 1] to signed 16-bit
// PCM, clipping out-of-range values.
func sampleToInt16(v float64) int16 {
	return int16(core.Clamp(v, -1, 1) * 32767)
}
