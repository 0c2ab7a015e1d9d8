package declick

import "math"

const (
	// maxSegmentSamples bounds per-channel memory: the denoiser processes a
	// channel in chunks of at most this many samples (§4.B).
	maxSegmentSamples = 1_000_000

	minDenoiseFrame    = 512
	maxDenoiseFrame    = 8192
	minTransientFrame  = 512
	maxTransientFrame  = 4096
	targetFrameSeconds = 0.023 // 23ms
)

// hannWindow returns a length-n Hann (raised-cosine) window:
// w[i] = 0.5*(1 - cos(2*pi*i/(n-1))).
func hannWindow(n int) []float64 {
	if n <= 1 {
		w := make([]float64, n)
		for i := range w {
			w[i] = 1.0
		}
		return w
	}
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// adaptiveFrameSize targets 23ms of audio at sampleRate, rounds up to the
// next power of two, and clamps to [lo, hi].
func adaptiveFrameSize(sampleRate, lo, hi int) int {
	target := int(math.Ceil(targetFrameSeconds * float64(sampleRate)))
	size := nextPowerOfTwo(target)
	if size < lo {
		size = lo
	}
	if size > hi {
		size = hi
	}
	return size
}

// denoiseFrameSize is the §4.D/§4.B frame size for the spectral denoiser.
func denoiseFrameSize(sampleRate int) int {
	return adaptiveFrameSize(sampleRate, minDenoiseFrame, maxDenoiseFrame)
}

// transientFrameSize is the §4.E/§4.B frame size for the transient detector.
func transientFrameSize(sampleRate int) int {
	return adaptiveFrameSize(sampleRate, minTransientFrame, maxTransientFrame)
}

// noiseFloorSegmentFrames is the §4.C segment span in audio frames.
func noiseFloorSegmentFrames(sampleRate int) int {
	n := sampleRate * 2
	if n < 1 {
		return 1
	}
	return n
}

// extractMonoFrame copies size samples starting at start from a
// single-channel slice, zero-padding past the end.
func extractMonoFrame(src []float64, start, size int) []float64 {
	frame := make([]float64, size)
	end := start + size
	if end > len(src) {
		end = len(src)
	}
	if end > start {
		copy(frame, src[start:end])
	}
	return frame
}

// deinterleaveChannel copies one channel out of an interleaved buffer.
func deinterleaveChannel(samples []float64, channels, channel int) []float64 {
	frameCount := len(samples) / channels
	out := make([]float64, frameCount)
	for i := 0; i < frameCount; i++ {
		out[i] = samples[i*channels+channel]
	}
	return out
}

// interleaveChannel writes mono back into one channel of an interleaved
// buffer.
func interleaveChannel(dst []float64, channels, channel int, mono []float64) {
	for i, v := range mono {
		dst[i*channels+channel] = v
	}
}

// monoMix returns the arithmetic mean across channels for each frame,
// without mutating samples.
func monoMix(samples []float64, channels int) []float64 {
	frameCount := len(samples) / channels
	out := make([]float64, frameCount)
	for i := 0; i < frameCount; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		out[i] = sum / float64(channels)
	}
	return out
}

func applyWindow(frame, window []float64) {
	for i := range frame {
		frame[i] *= window[i]
	}
}

func realToComplex(x []float64) []complex128 {
	cx := make([]complex128, len(x))
	for i, v := range x {
		cx[i] = complex(v, 0)
	}
	return cx
}
