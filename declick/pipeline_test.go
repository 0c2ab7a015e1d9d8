package declick

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func sineBuffer(freq float64, amp float64, seconds float64, sampleRate, channels int) AudioBuffer {
	n := int(seconds * float64(sampleRate))
	samples := make([]float64, n*channels)
	for i := 0; i < n; i++ {
		v := amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
		for ch := 0; ch < channels; ch++ {
			samples[i*channels+ch] = v
		}
	}
	return AudioBuffer{Samples: samples, Channels: channels, SampleRate: sampleRate}
}

func TestProcessRejectsNilSamples(t *testing.T) {
	_, err := Process(AudioBuffer{Samples: nil, Channels: 1, SampleRate: 44100}, DefaultAutoSettings())
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, InvalidInput, verr.Kind)
}

func TestProcessRejectsNonPositiveSampleRate(t *testing.T) {
	_, err := Process(AudioBuffer{Samples: []float64{0, 0}, Channels: 1, SampleRate: 0}, DefaultAutoSettings())
	require.Error(t, err)
}

func TestProcessRejectsNonPositiveChannels(t *testing.T) {
	_, err := Process(AudioBuffer{Samples: []float64{0, 0}, Channels: 0, SampleRate: 44100}, DefaultAutoSettings())
	require.Error(t, err)
}

func TestProcessRejectsMisalignedSampleCount(t *testing.T) {
	_, err := Process(AudioBuffer{Samples: []float64{0, 0, 0}, Channels: 2, SampleRate: 44100}, DefaultAutoSettings())
	require.Error(t, err)
}

func TestProcessRejectsNegativeManualThresholds(t *testing.T) {
	settings := ProcessingSettings{Mode: ModeManual, ClickThreshold: -1, PopThreshold: 0.1, NoiseFloor: 0.01}
	_, err := Process(sineBuffer(440, 0.1, 0.1, 44100, 1), settings)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, InvalidConfiguration, verr.Kind)
}

func TestProcessRejectsUnknownMode(t *testing.T) {
	settings := DefaultAutoSettings()
	settings.Mode = SettingsMode(99)
	_, err := Process(sineBuffer(440, 0.1, 0.1, 44100, 1), settings)
	require.Error(t, err)
}

func TestProcessNormalizesOutOfRangeSensitivity(t *testing.T) {
	settings := DefaultAutoSettings()
	settings.ClickSensitivity = 5.0  // out of [0,1], should be silently clamped
	settings.PopSensitivity = -3.0   // likewise
	buf := sineBuffer(440, 0.2, 0.05, 44100, 1)
	_, err := Process(buf, settings)
	require.NoError(t, err, "out-of-range sensitivity should be corrected, not rejected")
}

func TestProcessScenarioSilenceIsUntouched(t *testing.T) {
	samples := make([]float64, 44100)
	buf := AudioBuffer{Samples: samples, Channels: 1, SampleRate: 44100}
	result, err := Process(buf, DefaultAutoSettings())
	require.NoError(t, err)

	require.Equal(t, 0, result.Diagnostics.ClicksDetected)
	require.Equal(t, 0, result.Diagnostics.PopsDetected)
	require.Equal(t, 0, result.Diagnostics.DecracklesDetected)
	require.Empty(t, result.Artifacts.Events)
	for _, v := range result.Processed.Samples {
		require.Equal(t, 0.0, v)
	}
}

func TestProcessScenarioPureToneWithDefaultSettingsStaysClean(t *testing.T) {
	buf := sineBuffer(1000, 0.5, 0.5, 44100, 1)
	result, err := Process(buf, DefaultAutoSettings())
	require.NoError(t, err)

	require.Equal(t, 0, result.Diagnostics.ClicksDetected)
	require.Equal(t, 0, result.Diagnostics.PopsDetected)
	require.InDelta(t, 0, result.Diagnostics.DeltaRMS, 0.01)
}

func TestProcessScenarioImpulseInNoiseFloorIsDetected(t *testing.T) {
	sampleRate := 44100
	n := sampleRate / 2
	samples := make([]float64, n)
	// Low-level background hiss plus a handful of sharp, strong impulses.
	for i := range samples {
		samples[i] = 0.005 * math.Sin(2*math.Pi*60*float64(i)/float64(sampleRate))
	}
	impulseFrames := []int{5000, 10000, 15000, 20000}
	for _, f := range impulseFrames {
		samples[f] = 0.8
	}

	buf := AudioBuffer{Samples: samples, Channels: 1, SampleRate: sampleRate}
	settings := DefaultAutoSettings()
	result, err := Process(buf, settings)
	require.NoError(t, err)

	total := result.Diagnostics.ClicksDetected + result.Diagnostics.PopsDetected + result.Diagnostics.DecracklesDetected
	require.Greater(t, total, 0, "expected at least one impulse tier to fire on the injected spikes")

	for _, f := range impulseFrames {
		require.Less(t, math.Abs(result.Processed.Samples[f]), 0.8, "a detected impulse should be attenuated by repair")
	}
}

func TestProcessScenarioStereoChannelsAreIndependent(t *testing.T) {
	sampleRate := 44100
	n := sampleRate / 4
	samples := make([]float64, n*2)
	for i := 0; i < n; i++ {
		samples[i*2+0] = 0 // left silent
		samples[i*2+1] = 0 // right silent
	}
	// Inject an impulse only on the right channel.
	samples[(n/2)*2+1] = 0.9

	buf := AudioBuffer{Samples: samples, Channels: 2, SampleRate: sampleRate}
	result, err := Process(buf, DefaultAutoSettings())
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		require.Equal(t, 0.0, result.Processed.Samples[i*2+0], "left channel should be unaffected by the right channel's impulse")
	}
	for _, e := range result.Artifacts.Events {
		require.Equal(t, 1, e.Channel, "the only injected impulse is on channel 1 (right)")
	}
}

func TestProcessScenarioDecrackleOnlyConfiguration(t *testing.T) {
	sampleRate := 44100
	n := sampleRate / 4
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.01 * math.Sin(2*math.Pi*200*float64(i)/float64(sampleRate))
	}
	samples[n/2] = 0.05 // a mild crackle-range blip, well below pop/click territory

	buf := AudioBuffer{Samples: samples, Channels: 1, SampleRate: sampleRate}
	settings := ProcessingSettings{
		Mode:                        ModeManual,
		NoiseFloor:                  0.01,
		ClickThreshold:              0.5,
		PopThreshold:                0.7,
		ClickIntensity:              0.9,
		PopIntensity:                0.9,
		UseDecrackle:                true,
		UseBandLimitedInterpolation: true,
		DecrackleIntensity:          0.5,
	}
	result, err := Process(buf, settings)
	require.NoError(t, err)
	require.Equal(t, 0, result.Diagnostics.ClicksDetected)
	require.Equal(t, 0, result.Diagnostics.PopsDetected)
}

func TestProcessScenarioAllDetectionAndDenoisingDisabledIsIdentity(t *testing.T) {
	sampleRate := 44100
	n := sampleRate / 4
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.3 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate))
	}
	samples[n/2] = 0.9 // a sharp spike that would otherwise be caught by every tier

	buf := AudioBuffer{Samples: samples, Channels: 1, SampleRate: sampleRate}
	settings := ProcessingSettings{
		Mode:                           ModeManual,
		NoiseFloor:                     0.01,
		ClickThreshold:                 2.0, // above max|s|
		PopThreshold:                   2.0, // above max|s|
		NoiseReductionAmount:           0,
		UseMedianRepair:                false,
		UseSpectralNoiseReduction:      false,
		UseMultiBandTransientDetection: false,
		UseDecrackle:                   false,
		UseBandLimitedInterpolation:    false,
	}
	result, err := Process(buf, settings)
	require.NoError(t, err)

	require.Equal(t, samples, result.Processed.Samples, "processed must equal input bit-exact when detection and denoising are disabled")
	require.Equal(t, 0, result.Diagnostics.ClicksDetected)
	require.Equal(t, 0, result.Diagnostics.PopsDetected)
	require.Equal(t, 0, result.Diagnostics.DecracklesDetected)
	require.Empty(t, result.Artifacts.Events)
}

func TestProcessPopulatesNoiseProfile(t *testing.T) {
	buf := sineBuffer(440, 0.3, 0.2, 44100, 1)
	result, err := Process(buf, DefaultAutoSettings())
	require.NoError(t, err)
	require.NotEmpty(t, result.Artifacts.NoiseProfile.SegmentRMS)
	require.Equal(t, 44100, result.Artifacts.NoiseProfile.SampleRate)
}

func TestProcessDoesNotMutateInputBuffer(t *testing.T) {
	buf := sineBuffer(1000, 0.3, 0.1, 44100, 1)
	original := append([]float64(nil), buf.Samples...)

	_, err := Process(buf, DefaultAutoSettings())
	require.NoError(t, err)

	for i := range original {
		require.Equal(t, original[i], buf.Samples[i], "Process must not mutate its input buffer in place")
	}
}
