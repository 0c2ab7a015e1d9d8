package declick

import (
	"fmt"
	"math/cmplx"
)

const (
	lowBandHz  = 2000.0
	highBandHz = 6000.0
	transientPercentile = 0.95
)

type band int

const (
	bandLow band = iota
	bandMid
	bandHigh
	bandCount
)

// transientResult carries the per-sample transient mask plus the diagnostic
// summary string (§4.E).
type transientResult struct {
	mask    []bool // per audio frame
	summary string
}

// detectTransients mixes all channels to mono, frames and FFTs the mix, buckets
// squared magnitude into low/mid/high bands, flags frames whose band energy
// exceeds the segment's 95th-percentile threshold in any band, dilates by one
// frame in each direction, and maps frame flags to per-sample flags (§4.E).
func detectTransients(samples []float64, channels, sampleRate int) transientResult {
	frameCount := len(samples) / channels
	if frameCount == 0 {
		return transientResult{mask: nil, summary: ""}
	}

	mono := monoMix(samples, channels)

	frameSize := transientFrameSize(sampleRate)
	hop := frameSize / 2
	window := hannWindow(frameSize)

	totalFrames := (len(mono)-frameSize)/hop + 1
	if totalFrames < 1 {
		totalFrames = 1
	}

	bandEnergy := make([][bandCount]float64, totalFrames)

	for fi := 0; fi < totalFrames; fi++ {
		start := fi * hop
		frame := extractMonoFrame(mono, start, frameSize)
		applyWindow(frame, window)
		cx := realToComplex(frame)
		fft(cx, false)

		for bin := 0; bin < frameSize; bin++ {
			freq := float64(bin) * float64(sampleRate) / float64(frameSize)
			mag2 := cmplx.Abs(cx[bin])
			mag2 *= mag2
			switch {
			case freq < lowBandHz:
				bandEnergy[fi][bandLow] += mag2
			case freq < highBandHz:
				bandEnergy[fi][bandMid] += mag2
			default:
				bandEnergy[fi][bandHigh] += mag2
			}
		}
	}

	segFrames := sampleRate * 2 / hop
	if segFrames < 1 {
		segFrames = 1
	}

	frameFlag := make([]bool, totalFrames)
	var thresholds [bandCount][]float64

	for segStart := 0; segStart < totalFrames; segStart += segFrames {
		segEnd := segStart + segFrames
		if segEnd > totalFrames {
			segEnd = totalFrames
		}

		var perBand [bandCount][]float64
		for fi := segStart; fi < segEnd; fi++ {
			for b := band(0); b < bandCount; b++ {
				perBand[b] = append(perBand[b], bandEnergy[fi][b])
			}
		}

		var segThresh [bandCount]float64
		for b := band(0); b < bandCount; b++ {
			segThresh[b] = quantileCutoff(perBand[b], transientPercentile)
			thresholds[b] = append(thresholds[b], segThresh[b])
		}

		for fi := segStart; fi < segEnd; fi++ {
			for b := band(0); b < bandCount; b++ {
				if bandEnergy[fi][b] > segThresh[b] {
					frameFlag[fi] = true
					break
				}
			}
		}
	}

	dilated := dilateFlags(frameFlag)

	mask := make([]bool, frameCount)
	for fi, flagged := range dilated {
		if !flagged {
			continue
		}
		start := fi * hop
		end := start + hop
		if end > frameCount {
			end = frameCount
		}
		for s := start; s < end; s++ {
			mask[s] = true
		}
	}

	summary := summarizeThresholds(thresholds, segFrames)

	return transientResult{mask: mask, summary: summary}
}

// dilateFlags expands each flagged frame by ±1 frame.
func dilateFlags(flags []bool) []bool {
	out := make([]bool, len(flags))
	for i, f := range flags {
		if !f {
			continue
		}
		for d := -1; d <= 1; d++ {
			j := i + d
			if j >= 0 && j < len(flags) {
				out[j] = true
			}
		}
	}
	return out
}

func summarizeThresholds(thresholds [bandCount][]float64, segFrames int) string {
	names := [bandCount]string{"low", "mid", "high"}
	summary := fmt.Sprintf("segment=%d frames;", segFrames)
	for b := band(0); b < bandCount; b++ {
		vals := thresholds[b]
		if len(vals) == 0 {
			summary += fmt.Sprintf(" %s[min=0.000000 avg=0.000000 max=0.000000]", names[b])
			continue
		}
		min, max, sum := vals[0], vals[0], 0.0
		for _, v := range vals {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
			sum += v
		}
		avg := sum / float64(len(vals))
		summary += fmt.Sprintf(" %s[min=%.6f avg=%.6f max=%.6f]", names[b], min, avg, max)
	}
	return summary
}
