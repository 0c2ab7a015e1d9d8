package declick

import "time"

// Process runs the full restoration pipeline (§4.H): validate, clone,
// derive thresholds, optionally denoise (D), optionally detect transients
// (E), classify and repair impulses (F), then compute diagnostics and the
// difference buffer (G).
//
// The orchestrator is the only layer that returns an error: input and
// settings are validated here, before any component runs, as an
// InvalidInput/InvalidConfiguration ValidationError; the components below it
// report no errors back to it.
func Process(input AudioBuffer, settings ProcessingSettings) (ProcessingResult, error) {
	start := time.Now()

	if err := validateInput(input); err != nil {
		return ProcessingResult{}, err
	}
	if err := validateSettings(settings); err != nil {
		return ProcessingResult{}, err
	}
	settings = settings.normalize()

	working := input.Clone()

	estimatedFloor, profile := noiseFloor(working.Samples, working.Channels, working.SampleRate)
	params := deriveParams(settings, estimatedFloor)

	if settings.NoiseReductionAmount > 0 && working.FrameCount() > 0 {
		applySpectralDenoise(working.Samples, working.Channels, working.SampleRate, settings)
	}

	var transientSummary string
	var mask []bool
	if settings.UseMultiBandTransientDetection {
		tr := detectTransients(working.Samples, working.Channels, working.SampleRate)
		mask = tr.mask
		transientSummary = tr.summary
	}

	events := classifyAndRepair(&working, mask, settings, params)

	diff := difference(input, working)

	originalRMS := rms(input.Samples)
	processedRMS := rms(working.Samples)
	differenceRMS := rms(diff.Samples)

	residualClicks := countResidualClicks(working, params.ClickThreshold)

	var clicks, pops, decrackles int
	for _, e := range events {
		switch e.Type {
		case Click:
			clicks++
		case Pop:
			pops++
		case Decrackle:
			decrackles++
		}
	}

	diagnostics := ProcessingDiagnostics{
		ElapsedTime:                time.Since(start).Seconds(),
		ClicksDetected:             clicks,
		PopsDetected:               pops,
		DecracklesDetected:         decrackles,
		ResidualClicks:             residualClicks,
		EstimatedNoiseFloor:        estimatedFloor,
		ProcessingGainDb:           processingGainDb(originalRMS, differenceRMS),
		DeltaRMS:                   processedRMS - originalRMS,
		TransientThresholdSummary: transientSummary,
	}

	return ProcessingResult{
		Processed:  working,
		Difference: diff,
		Diagnostics: diagnostics,
		Artifacts: ResultArtifacts{
			Events:       events,
			NoiseProfile: profile,
		},
	}, nil
}

func validateInput(input AudioBuffer) error {
	if input.Samples == nil {
		return invalidInput("samples must not be nil")
	}
	if input.SampleRate <= 0 {
		return invalidInput("sampleRate must be positive, got %d", input.SampleRate)
	}
	if input.Channels <= 0 {
		return invalidInput("channels must be positive, got %d", input.Channels)
	}
	if len(input.Samples)%input.Channels != 0 {
		return invalidInput("len(samples)=%d is not a multiple of channels=%d", len(input.Samples), input.Channels)
	}
	return nil
}

func validateSettings(settings ProcessingSettings) error {
	switch settings.Mode {
	case ModeAuto, ModeManual:
	default:
		return invalidConfig("unknown settings mode %d", settings.Mode)
	}
	if settings.Mode == ModeManual {
		if settings.NoiseFloor < 0 {
			return invalidConfig("manual noiseFloor must be non-negative")
		}
		if settings.ClickThreshold < 0 {
			return invalidConfig("manual clickThreshold must be non-negative")
		}
		if settings.PopThreshold < 0 {
			return invalidConfig("manual popThreshold must be non-negative")
		}
	}
	return nil
}
