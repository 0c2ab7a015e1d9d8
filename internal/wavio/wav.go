// Package wavio is the host-side adapter that decodes a WAV file into a
// declick.AudioBuffer and encodes a declick.AudioBuffer back to WAV. The
// core pipeline (§6 of the spec) treats this entirely as an external
// collaborator; wavio is where that collaborator actually lives for anyone
// who wants to run the pipeline end to end.
package wavio

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/justindarnell/vinyl-transfer-declick/declick"
)

// maxTotalSamples rejects absurdly large decodes (§6's "5*10^8 floats"
// reference limit). The check runs once the PCM data has been read, before it
// is converted to float samples.
const maxTotalSamples = 500_000_000

// Decode reads a WAV file and normalizes its PCM samples to [-1, 1] as a
// declick.AudioBuffer. It generalizes the teacher's mono/stereo, 16-bit-only
// ReadWAV to arbitrary channel counts and bit depths by delegating chunk
// parsing to go-audio/wav, since the core spec requires channels >= 1.
func Decode(r io.Reader) (declick.AudioBuffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return declick.AudioBuffer{}, fmt.Errorf("wavio: not a valid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return declick.AudioBuffer{}, fmt.Errorf("wavio: decode PCM: %w", err)
	}

	if len(buf.Data) > maxTotalSamples {
		return declick.AudioBuffer{}, fmt.Errorf("wavio: %d samples exceeds the %d sample limit", len(buf.Data), maxTotalSamples)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = int(dec.NumChans)
	}
	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(dec.BitDepth)
	}
	fullScale := float64(int64(1) << uint(bitDepth-1))

	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / fullScale
	}

	return declick.AudioBuffer{
		Samples:    samples,
		Channels:   channels,
		SampleRate: buf.Format.SampleRate,
	}, nil
}

// Encode writes an AudioBuffer as a 16-bit PCM WAV file. The core does not
// clip (§6); Encode clips to [-1,1] at the host boundary, the same way the
// teacher's WriteWAV does, since 16-bit PCM has nowhere else to put
// out-of-range samples.
func Encode(w io.WriteSeeker, buf declick.AudioBuffer) error {
	enc := wav.NewEncoder(w, buf.SampleRate, 16, buf.Channels, 1)

	const fullScale = 1 << 15

	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		data[i] = int(s * (fullScale - 1))
	}

	intBuf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: buf.Channels,
			SampleRate:  buf.SampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(intBuf); err != nil {
		return fmt.Errorf("wavio: write PCM: %w", err)
	}
	return enc.Close()
}
