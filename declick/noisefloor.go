package declick

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// segmentRMS partitions the interleaved buffer into non-overlapping segments
// of segmentFrames audio frames and returns the RMS of each segment computed
// across all channels (§4.C).
func segmentRMS(samples []float64, channels, segmentFrames int) []float64 {
	frameCount := len(samples) / channels
	if frameCount == 0 {
		return nil
	}
	var out []float64
	for start := 0; start < frameCount; start += segmentFrames {
		end := start + segmentFrames
		if end > frameCount {
			end = frameCount
		}
		lo := start * channels
		hi := end * channels
		slice := samples[lo:hi]
		if len(slice) == 0 {
			out = append(out, 0)
			continue
		}
		sumSq := floats.Dot(slice, slice)
		out = append(out, math.Sqrt(sumSq/float64(len(slice))))
	}
	return out
}

// quantileCutoff returns the linearly-interpolated quantile value of values
// (§9(b): ties are resolved by gonum/stat's deterministic LinInterp method,
// used uniformly everywhere this spec calls for a percentile).
func quantileCutoff(values []float64, quantile float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(quantile, stat.LinInterp, sorted, nil)
}

// lowestQuantileMean sorts values, finds the cutoff at the given quantile
// (linearly interpolated, §9(b)), and returns the mean of every value at or
// below that cutoff. At least one value is always included.
func lowestQuantileMean(values []float64, quantile float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	cutoff := quantileCutoff(sorted, quantile)

	var sum float64
	var count int
	for _, v := range sorted {
		if v <= cutoff {
			sum += v
			count++
		}
	}
	if count == 0 {
		sum = sorted[0]
		count = 1
	}
	return sum / float64(count)
}

// rms returns the root-mean-square of a float64 slice.
func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(x, x) / float64(len(x)))
}

// noiseFloor estimates the time-domain noise floor (§4.C): the mean of the
// lowest 20% of segment RMS values, with a segment span of
// max(sampleRate*2, 1) audio frames. Silent input yields exactly 0.
func noiseFloor(samples []float64, channels, sampleRate int) (floor float64, profile NoiseProfile) {
	segFrames := noiseFloorSegmentFrames(sampleRate)
	segments := segmentRMS(samples, channels, segFrames)
	floor = lowestQuantileMean(segments, 0.2)
	profile = NoiseProfile{
		SegmentRMS:    segments,
		SegmentFrames: segFrames,
		SampleRate:    sampleRate,
	}
	return floor, profile
}
