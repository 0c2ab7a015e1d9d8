package declick

import "math"

const (
	residualLocalWindow = 2
	residualEnergyRatio = 2.1
	residualHFRatio     = 1.2
	diagnosticsEpsilon  = 1e-12
)

// difference computes original[i] - processed[i] as a parallel buffer (§4.G).
func difference(original, processed AudioBuffer) AudioBuffer {
	diff := make([]float64, len(original.Samples))
	for i := range diff {
		diff[i] = original.Samples[i] - processed.Samples[i]
	}
	return AudioBuffer{Samples: diff, Channels: original.Channels, SampleRate: original.SampleRate}
}

// processingGainDb implements §4.G / §9(a)'s literal (non-SNR) definition.
func processingGainDb(originalRMS, differenceRMS float64) float64 {
	if differenceRMS == 0 {
		return 0
	}
	return 20 * math.Log10((originalRMS+diagnosticsEpsilon)/(differenceRMS+diagnosticsEpsilon))
}

// countResidualClicks re-runs the impulse-likeness test on the processed
// buffer with relaxed, fixed parameters, counting (never repairing) matches
// against the click threshold (§4.G).
func countResidualClicks(processed AudioBuffer, clickThreshold float64) int {
	frameCount := processed.FrameCount()
	count := 0
	for frame := 0; frame < frameCount; frame++ {
		for channel := 0; channel < processed.Channels; channel++ {
			mag := math.Abs(processed.at(frame, channel))
			if mag < clickThreshold {
				continue
			}
			if isImpulseLike(&processed, frame, channel, residualLocalWindow, residualEnergyRatio, residualHFRatio) {
				count++
			}
		}
	}
	return count
}
