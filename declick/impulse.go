package declick

import (
	"math"
	"sort"
)

const (
	decrackleLocalWindow = 2
	decrackleEnergyRatio = 2.2
	decrackleHFRatio     = 1.4
	decrackleRadius      = 6

	popLocalWindow = 3
	popEnergyRatio = 2.5
	popHFRatio     = 1.2
	popRadius      = 10

	clickLocalWindow  = 2
	clickEnergyRatio  = 2.3
	clickHFRatio      = 1.4
	clickRadius       = 6
	clickRepairWindow = 1

	lanczosCutoff = 0.45
)

// derivedParams holds the thresholds and intensities in force for one
// processing run, whichever ProcessingSettings variant produced them.
type derivedParams struct {
	ClickThreshold float64
	PopThreshold   float64
	ClickIntensity float64
	PopIntensity   float64
	NoiseFloor     float64
}

// deriveParams implements the Auto/Manual threshold derivation of §3/§4.F.
func deriveParams(settings ProcessingSettings, estimatedFloor float64) derivedParams {
	if settings.Mode == ModeManual {
		return derivedParams{
			ClickThreshold: settings.ClickThreshold,
			PopThreshold:   settings.PopThreshold,
			ClickIntensity: settings.ClickIntensity,
			PopIntensity:   settings.PopIntensity,
			NoiseFloor:     settings.NoiseFloor,
		}
	}
	return derivedParams{
		ClickThreshold: estimatedFloor * (1 + 8*settings.ClickSensitivity),
		PopThreshold:   estimatedFloor * (1 + 12*settings.PopSensitivity),
		ClickIntensity: 0.7 + 0.3*settings.ClickSensitivity,
		PopIntensity:   0.8 + 0.2*settings.PopSensitivity,
		NoiseFloor:     estimatedFloor,
	}
}

// classifyAndRepair runs the three-tier impulse cascade of §4.F over the
// working buffer, frame-major then channel-major, mutating buf in place and
// returning the accepted events in iteration order.
func classifyAndRepair(buf *AudioBuffer, transientMask []bool, settings ProcessingSettings, params derivedParams) []DetectedEvent {
	frameCount := buf.FrameCount()
	var events []DetectedEvent

	for frame := 0; frame < frameCount; frame++ {
		transient := frame < len(transientMask) && transientMask[frame]

		clickThreshold := params.ClickThreshold
		popThreshold := params.PopThreshold
		if transient {
			clickThreshold *= 0.75
			popThreshold *= 0.85
		}

		for channel := 0; channel < buf.Channels; channel++ {
			s := buf.at(frame, channel)
			mag := math.Abs(s)

			switch {
			case settings.UseDecrackle && params.NoiseFloor*1.8 <= mag && mag < clickThreshold &&
				isImpulseLike(buf, frame, channel, decrackleLocalWindow, decrackleEnergyRatio, decrackleHFRatio):
				var repaired float64
				if settings.UseBandLimitedInterpolation {
					interp := bandLimitedInterpolate(buf, frame, channel, decrackleRadius)
					repaired = interpBlend(s, interp, settings.DecrackleIntensity)
				} else {
					repaired = neighborBlend(buf, frame, channel, 1, 1.0)
				}
				buf.set(frame, channel, repaired)
				events = append(events, DetectedEvent{Frame: frame, Channel: channel, Type: Decrackle, Strength: mag})

			case mag >= popThreshold &&
				isImpulseLike(buf, frame, channel, popLocalWindow, popEnergyRatio, popHFRatio):
				repaired := repairWithCascade(buf, frame, channel, popRadius, params.PopIntensity, settings, popLocalWindow)
				buf.set(frame, channel, repaired)
				events = append(events, DetectedEvent{Frame: frame, Channel: channel, Type: Pop, Strength: mag})

			case mag >= clickThreshold &&
				isImpulseLike(buf, frame, channel, clickLocalWindow, clickEnergyRatio, clickHFRatio):
				repaired := repairWithCascade(buf, frame, channel, clickRadius, params.ClickIntensity, settings, clickRepairWindow)
				buf.set(frame, channel, repaired)
				events = append(events, DetectedEvent{Frame: frame, Channel: channel, Type: Click, Strength: mag})
			}
		}
	}

	return events
}

// repairWithCascade implements the "interp, else median if enabled, else
// blend" selection shared by the Pop and Click tiers.
func repairWithCascade(buf *AudioBuffer, frame, channel, radius int, intensity float64, settings ProcessingSettings, blendWindow int) float64 {
	s := buf.at(frame, channel)
	if settings.UseBandLimitedInterpolation {
		interp := bandLimitedInterpolate(buf, frame, channel, radius)
		return interpBlend(s, interp, intensity)
	}
	if settings.UseMedianRepair {
		return medianRepair(buf, frame, channel, blendWindow)
	}
	return neighborBlend(buf, frame, channel, blendWindow, 1.0)
}

// isImpulseLike implements §4.F's IsImpulseLike(frame, channel, w, ER, HR).
func isImpulseLike(buf *AudioBuffer, frame, channel, w int, er, hr float64) bool {
	frameCount := buf.FrameCount()
	s := buf.at(frame, channel)

	var sumSq float64
	var count int
	for d := -w; d <= w; d++ {
		if d == 0 {
			continue
		}
		idx := clampIndex(frame+d, frameCount)
		v := buf.at(idx, channel)
		sumSq += v * v
		count++
	}
	localRMS := 0.0
	if count > 0 {
		localRMS = math.Sqrt(sumSq / float64(count))
	}

	if localRMS <= 1e-6 {
		return math.Abs(s) > 0.001
	}

	prev := buf.at(clampIndex(frame-1, frameCount), channel)
	next := buf.at(clampIndex(frame+1, frameCount), channel)
	hfEmphasis := math.Abs(2*s - prev - next)

	return math.Abs(s) > localRMS*er && hfEmphasis > localRMS*hr
}

func clampIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// neighborBlend is the arithmetic-mean repair kernel.
func neighborBlend(buf *AudioBuffer, frame, channel, w int, intensity float64) float64 {
	frameCount := buf.FrameCount()
	s := buf.at(frame, channel)

	var sum float64
	var count int
	for d := -w; d <= w; d++ {
		if d == 0 {
			continue
		}
		idx := clampIndex(frame+d, frameCount)
		sum += buf.at(idx, channel)
		count++
	}
	mean := 0.0
	if count > 0 {
		mean = sum / float64(count)
	}

	return interpBlend(s, mean, intensity)
}

// medianRepair is the median-of-neighbors repair kernel; an even neighbor
// count averages the two central values.
func medianRepair(buf *AudioBuffer, frame, channel, w int) float64 {
	frameCount := buf.FrameCount()

	var neighbors []float64
	for d := -w; d <= w; d++ {
		if d == 0 {
			continue
		}
		idx := clampIndex(frame+d, frameCount)
		neighbors = append(neighbors, buf.at(idx, channel))
	}
	if len(neighbors) == 0 {
		return buf.at(frame, channel)
	}
	sort.Float64s(neighbors)
	mid := len(neighbors) / 2
	if len(neighbors)%2 == 0 {
		return (neighbors[mid-1] + neighbors[mid]) / 2
	}
	return neighbors[mid]
}

// bandLimitedInterpolate is the Lanczos-style band-limited repair kernel.
func bandLimitedInterpolate(buf *AudioBuffer, frame, channel, radius int) float64 {
	frameCount := buf.FrameCount()

	var weightedSum, weightTotal float64
	for delta := -radius; delta <= radius; delta++ {
		if delta == 0 {
			continue
		}
		idx := clampIndex(frame+delta, frameCount)
		x := math.Pi * lanczosCutoff * float64(delta)
		sinc := math.Sin(x) / x
		hann := 0.54 + 0.46*math.Cos(math.Pi*float64(abs(delta))/float64(radius))
		weight := sinc * hann
		weightedSum += weight * buf.at(idx, channel)
		weightTotal += weight
	}

	if math.Abs(weightTotal) < 1e-9 {
		return buf.at(frame, channel)
	}
	return weightedSum / weightTotal
}

// interpBlend mixes the original sample with a repaired candidate by
// intensity I, clamped to [0,1].
func interpBlend(original, candidate, intensity float64) float64 {
	i := clamp01(intensity)
	return original*(1-i) + candidate*i
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
