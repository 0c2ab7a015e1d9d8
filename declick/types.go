// Package declick implements an offline, block-based DSP pipeline that removes
// impulsive defects (clicks, pops, dense crackle) and steady background hiss
// from vinyl transfers while preserving musical transients.
package declick

import "fmt"

// AudioBuffer holds interleaved signed float64 samples in [-1, 1].
//
// Invariant: len(Samples) == FrameCount*Channels, Channels >= 1, SampleRate > 0.
// Once constructed an AudioBuffer is treated as immutable by the pipeline; the
// orchestrator clones it into a private working buffer before mutating anything.
type AudioBuffer struct {
	Samples    []float64
	Channels   int
	SampleRate int
}

// FrameCount reports the number of multi-channel sample instants in the buffer.
func (b AudioBuffer) FrameCount() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Clone returns a deep copy of the buffer.
func (b AudioBuffer) Clone() AudioBuffer {
	cp := make([]float64, len(b.Samples))
	copy(cp, b.Samples)
	return AudioBuffer{Samples: cp, Channels: b.Channels, SampleRate: b.SampleRate}
}

func (b AudioBuffer) at(frame, channel int) float64 {
	return b.Samples[frame*b.Channels+channel]
}

func (b AudioBuffer) set(frame, channel int, v float64) {
	b.Samples[frame*b.Channels+channel] = v
}

// SettingsMode selects which variant of ProcessingSettings is active.
type SettingsMode int

const (
	// ModeAuto derives thresholds and intensities from sensitivity knobs.
	ModeAuto SettingsMode = iota
	// ModeManual uses caller-supplied absolute thresholds.
	ModeManual
)

// ProcessingSettings is a tagged union: exactly one of the Auto or Manual
// variants is active, selected by Mode.
type ProcessingSettings struct {
	Mode SettingsMode

	// Auto variant.
	ClickSensitivity float64
	PopSensitivity   float64

	// Manual variant.
	ClickThreshold float64
	PopThreshold   float64
	NoiseFloor     float64

	// Shared across both variants, except ClickIntensity and PopIntensity,
	// which only the Manual variant reads (Auto derives them from the
	// sensitivities).
	NoiseReductionAmount           float64
	ClickIntensity                 float64
	PopIntensity                   float64
	UseMedianRepair                bool
	UseSpectralNoiseReduction      bool
	UseMultiBandTransientDetection bool
	UseDecrackle                   bool
	UseBandLimitedInterpolation    bool
	DecrackleIntensity             float64
	SpectralMaskingStrength        float64
}

// DefaultAutoSettings returns a reasonable Auto-mode configuration: moderate
// click/pop sensitivities, the recommended repair strategies enabled, and
// spectral noise reduction left off by default — it is opt-in because it
// attenuates steady tones along with hiss (§4.D has no notion of "this is
// music, not noise").
func DefaultAutoSettings() ProcessingSettings {
	return ProcessingSettings{
		Mode:                           ModeAuto,
		ClickSensitivity:               0.3,
		PopSensitivity:                 0.3,
		NoiseReductionAmount:           0,
		UseMedianRepair:                true,
		UseSpectralNoiseReduction:      true,
		UseMultiBandTransientDetection: true,
		UseDecrackle:                   true,
		UseBandLimitedInterpolation:    true,
		DecrackleIntensity:             0.5,
		SpectralMaskingStrength:        0.6,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// normalize clamps every 0..1-typed field to [0,1]; per §7 this is a silent
// InvalidConfiguration correction, never an error.
func (s ProcessingSettings) normalize() ProcessingSettings {
	s.ClickSensitivity = clamp01(s.ClickSensitivity)
	s.PopSensitivity = clamp01(s.PopSensitivity)
	s.NoiseReductionAmount = clamp01(s.NoiseReductionAmount)
	s.ClickIntensity = clamp01(s.ClickIntensity)
	s.PopIntensity = clamp01(s.PopIntensity)
	s.DecrackleIntensity = clamp01(s.DecrackleIntensity)
	s.SpectralMaskingStrength = clamp01(s.SpectralMaskingStrength)
	return s
}

// DetectedEventType is a small closed enum distinguishing impulse severity.
type DetectedEventType int

const (
	Decrackle DetectedEventType = iota
	Click
	Pop
)

func (t DetectedEventType) String() string {
	switch t {
	case Decrackle:
		return "Decrackle"
	case Click:
		return "Click"
	case Pop:
		return "Pop"
	default:
		return "Unknown"
	}
}

// DetectedEvent records one accepted impulse-like sample.
type DetectedEvent struct {
	Frame    int
	Channel  int
	Type     DetectedEventType
	Strength float64
}

// NoiseProfile is a segment-RMS summary of the time-domain noise floor.
type NoiseProfile struct {
	SegmentRMS    []float64
	SegmentFrames int
	SampleRate    int
}

// ProcessingDiagnostics carries numeric summaries of one processing run.
type ProcessingDiagnostics struct {
	ElapsedTime             float64 // seconds
	ClicksDetected          int
	PopsDetected            int
	DecracklesDetected      int
	ResidualClicks          int
	EstimatedNoiseFloor     float64
	ProcessingGainDb        float64
	DeltaRMS                float64
	TransientThresholdSummary string
}

// ResultArtifacts bundles the side-channel outputs of a processing run.
type ResultArtifacts struct {
	Events       []DetectedEvent
	NoiseProfile NoiseProfile
}

// ProcessingResult is the full output of one Process call.
type ProcessingResult struct {
	Processed   AudioBuffer
	Difference  AudioBuffer
	Diagnostics ProcessingDiagnostics
	Artifacts   ResultArtifacts
}

// ErrorKind classifies a ValidationError per §7.
type ErrorKind int

const (
	InvalidInput ErrorKind = iota
	InvalidConfiguration
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case InvalidConfiguration:
		return "InvalidConfiguration"
	default:
		return "Unknown"
	}
}

// ValidationError is the only error type the core ever returns; numeric
// degeneracies (§7's NumericDegenerate) are handled internally and never
// surface here.
type ValidationError struct {
	Kind ErrorKind
	Msg  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("declick: %s: %s", e.Kind, e.Msg)
}

func invalidInput(format string, args ...interface{}) error {
	return &ValidationError{Kind: InvalidInput, Msg: fmt.Sprintf(format, args...)}
}

func invalidConfig(format string, args ...interface{}) error {
	return &ValidationError{Kind: InvalidConfiguration, Msg: fmt.Sprintf(format, args...)}
}
