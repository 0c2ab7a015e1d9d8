package declick

import "math/cmplx"

const denoiseSmoothingAlpha = 0.85

// applySpectralDenoise runs the STFT magnitude-subtraction pass of §4.D on
// the working buffer in place, one channel at a time. Each channel is split
// into at-most-maxSegmentSamples segments; the per-bin gain-smoothing state
// persists across segments within a channel and is discarded at channel end.
func applySpectralDenoise(samples []float64, channels, sampleRate int, settings ProcessingSettings) {
	frameSize := denoiseFrameSize(sampleRate)
	hop := frameSize / 2
	window := hannWindow(frameSize)

	reduction := settings.NoiseReductionAmount
	if settings.UseSpectralNoiseReduction {
		reduction *= 0.6
	}
	minGain := 1 - 0.6*reduction

	for ch := 0; ch < channels; ch++ {
		mono := deinterleaveChannel(samples, channels, ch)
		out := denoiseChannel(mono, frameSize, hop, window, reduction, minGain)
		interleaveChannel(samples, channels, ch, out)
	}
}

// denoiseChannel processes one channel's samples across segments, carrying
// the one-pole gain smoothing state (gPrev) across segment boundaries.
func denoiseChannel(mono []float64, frameSize, hop int, window []float64, reduction, minGain float64) []float64 {
	out := make([]float64, len(mono))
	gPrev := make([]float64, frameSize)

	for segStart := 0; segStart < len(mono); segStart += maxSegmentSamples {
		segEnd := segStart + maxSegmentSamples
		if segEnd > len(mono) {
			segEnd = len(mono)
		}
		segment := mono[segStart:segEnd]

		if len(segment) < frameSize {
			// Too short for a single analysis frame: skip, not partially
			// processed (§4.D).
			copy(out[segStart:segEnd], segment)
			continue
		}

		processed := denoiseSegment(segment, frameSize, hop, window, reduction, minGain, gPrev)
		copy(out[segStart:segEnd], processed)
	}

	return out
}

func denoiseSegment(segment []float64, frameSize, hop int, window []float64, reduction, minGain float64, gPrev []float64) []float64 {
	totalFrames := (len(segment)-frameSize)/hop + 1

	spectra := make([][]complex128, totalFrames)
	frameRMSValues := make([]float64, totalFrames)

	for fi := 0; fi < totalFrames; fi++ {
		start := fi * hop
		frame := extractMonoFrame(segment, start, frameSize)
		frameRMSValues[fi] = rms(frame)
		applyWindow(frame, window)
		cx := realToComplex(frame)
		fft(cx, false)
		spectra[fi] = cx
	}

	// Noise spectrum: bin-wise mean magnitude of the lowest-RMS 20% of
	// frames (at least one).
	noiseMag := estimateNoiseSpectrum(spectra, frameRMSValues, frameSize)

	output := make([]float64, len(segment))
	weightSum := make([]float64, len(segment))

	for fi := 0; fi < totalFrames; fi++ {
		spectrum := spectra[fi]
		for bin := 0; bin < frameSize; bin++ {
			m := cmplx.Abs(spectrum[bin])
			if m <= 0 {
				continue
			}
			n := noiseMag[bin]
			reduced := m - n*reduction
			floor := m * minGain
			if reduced < floor {
				reduced = floor
			}
			target := reduced / m
			gNew := denoiseSmoothingAlpha*gPrev[bin] + (1-denoiseSmoothingAlpha)*target
			gPrev[bin] = gNew
			if gNew > 0 {
				spectrum[bin] *= complex(gNew, 0)
			}
		}

		fft(spectrum, true)

		start := fi * hop
		for j := 0; j < frameSize; j++ {
			idx := start + j
			if idx < len(output) {
				output[idx] += real(spectrum[j]) * window[j]
				weightSum[idx] += window[j] * window[j]
			}
		}
	}

	const eps = 1e-12
	for i := range output {
		w := weightSum[i]
		if w < eps {
			w = eps
		}
		output[i] /= w
	}

	return output
}

// estimateNoiseSpectrum averages the magnitude spectra of the quietest 20%
// of frames (by time-domain RMS), at least one frame.
func estimateNoiseSpectrum(spectra [][]complex128, frameRMSValues []float64, frameSize int) []float64 {
	noiseMag := make([]float64, frameSize)
	if len(spectra) == 0 {
		return noiseMag
	}

	cutoff := quantileCutoff(frameRMSValues, 0.2)

	var count int
	for fi, r := range frameRMSValues {
		if r <= cutoff {
			for bin := 0; bin < frameSize; bin++ {
				noiseMag[bin] += cmplx.Abs(spectra[fi][bin])
			}
			count++
		}
	}
	if count == 0 {
		quietest := quietestFrame(frameRMSValues)
		for bin := 0; bin < frameSize; bin++ {
			noiseMag[bin] = cmplx.Abs(spectra[quietest][bin])
		}
		return noiseMag
	}
	for bin := range noiseMag {
		noiseMag[bin] /= float64(count)
	}
	return noiseMag
}

func quietestFrame(values []float64) int {
	best := 0
	for i, v := range values {
		if v < values[best] {
			best = i
		}
	}
	return best
}
