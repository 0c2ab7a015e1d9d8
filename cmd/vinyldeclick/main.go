// Command vinyldeclick decodes a WAV file, runs the declick pipeline, and
// writes the processed/difference WAVs plus an optional event report. It is
// the supplemental "host" named throughout the core spec's §6 — the core
// package itself has no CLI, no wire protocol, no persistence.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/justindarnell/vinyl-transfer-declick/declick"
	"github.com/justindarnell/vinyl-transfer-declick/internal/wavio"
)

func main() {
	in := pflag.StringP("input", "i", "", "input WAV file (required)")
	out := pflag.StringP("output", "o", "", "processed output WAV file (required)")
	diffOut := pflag.StringP("diff", "d", "", "difference output WAV file (optional)")
	eventsOut := pflag.StringP("events", "e", "", "event report path; .json or .csv by extension (optional)")
	mode := pflag.StringP("mode", "m", "auto", "processing mode: auto or manual")
	clickSens := pflag.Float64P("click-sensitivity", "c", 0.3, "auto-mode click sensitivity [0,1]")
	popSens := pflag.Float64P("pop-sensitivity", "p", 0.3, "auto-mode pop sensitivity [0,1]")
	noiseReduction := pflag.Float64P("noise-reduction", "n", 0.0, "spectral noise reduction amount [0,1]")
	decrackle := pflag.Bool("decrackle", true, "enable decrackle detection")
	multiband := pflag.Bool("multiband", true, "enable multi-band transient detection")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vinyldeclick -i in.wav -o out.wav [flags]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *in == "" || *out == "" {
		pflag.Usage()
		os.Exit(2)
	}

	settings := declick.DefaultAutoSettings()
	settings.ClickSensitivity = *clickSens
	settings.PopSensitivity = *popSens
	settings.NoiseReductionAmount = *noiseReduction
	settings.UseDecrackle = *decrackle
	settings.UseMultiBandTransientDetection = *multiband
	if strings.EqualFold(*mode, "manual") {
		log.Fatal("vinyldeclick: manual mode requires thresholds not yet exposed as flags; use the declick package directly")
	}

	inFile, err := os.Open(*in)
	if err != nil {
		log.Fatalf("vinyldeclick: open input: %v", err)
	}
	defer inFile.Close()

	buf, err := wavio.Decode(inFile)
	if err != nil {
		log.Fatalf("vinyldeclick: decode: %v", err)
	}
	log.Printf("vinyldeclick: decoded %d frames, %d channel(s), %d Hz", buf.FrameCount(), buf.Channels, buf.SampleRate)

	result, err := declick.Process(buf, settings)
	if err != nil {
		log.Fatalf("vinyldeclick: process: %v", err)
	}
	log.Printf("vinyldeclick: clicks=%d pops=%d decrackles=%d residualClicks=%d gain=%.2fdB elapsed=%.3fs",
		result.Diagnostics.ClicksDetected, result.Diagnostics.PopsDetected, result.Diagnostics.DecracklesDetected,
		result.Diagnostics.ResidualClicks, result.Diagnostics.ProcessingGainDb, result.Diagnostics.ElapsedTime)

	if err := writeWAV(*out, result.Processed); err != nil {
		log.Fatalf("vinyldeclick: write processed: %v", err)
	}

	if *diffOut != "" {
		if err := writeWAV(*diffOut, result.Difference); err != nil {
			log.Fatalf("vinyldeclick: write difference: %v", err)
		}
	}

	if *eventsOut != "" {
		if err := writeEvents(*eventsOut, result.Processed, result.Artifacts.Events); err != nil {
			log.Fatalf("vinyldeclick: write events: %v", err)
		}
	}
}

func writeWAV(path string, buf declick.AudioBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return wavio.Encode(f, buf)
}

func writeEvents(path string, buf declick.AudioBuffer, events []declick.DetectedEvent) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return wavio.WriteEventsCSV(f, buf, events)
	}
	return wavio.WriteEventsJSON(f, buf, events)
}
