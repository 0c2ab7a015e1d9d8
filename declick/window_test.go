package declick

import (
	"math"
	"testing"
)

func TestHannWindowEndpoints(t *testing.T) {
	w := hannWindow(8)
	if math.Abs(w[0]) > 1e-12 {
		t.Fatalf("expected w[0] == 0, got %v", w[0])
	}
	if math.Abs(w[len(w)-1]) > 1e-12 {
		t.Fatalf("expected w[n-1] == 0, got %v", w[len(w)-1])
	}
	mid := w[len(w)/2]
	if mid < 0.9 {
		t.Fatalf("expected window to peak near the middle, got %v", mid)
	}
}

func TestHannWindowDegenerate(t *testing.T) {
	if w := hannWindow(1); len(w) != 1 || w[0] != 1.0 {
		t.Fatalf("expected [1.0] for n=1, got %v", w)
	}
	if w := hannWindow(0); len(w) != 0 {
		t.Fatalf("expected empty window for n=0, got %v", w)
	}
}

func TestAdaptiveFrameSizeIsPowerOfTwoAndClamped(t *testing.T) {
	cases := []struct {
		sampleRate, lo, hi int
	}{
		{44100, minDenoiseFrame, maxDenoiseFrame},
		{8000, minDenoiseFrame, maxDenoiseFrame},
		{192000, minDenoiseFrame, maxDenoiseFrame},
		{44100, minTransientFrame, maxTransientFrame},
	}
	for _, c := range cases {
		size := adaptiveFrameSize(c.sampleRate, c.lo, c.hi)
		if !isPowerOfTwo(size) {
			t.Fatalf("frame size %d for sampleRate %d is not a power of two", size, c.sampleRate)
		}
		if size < c.lo || size > c.hi {
			t.Fatalf("frame size %d for sampleRate %d outside clamp [%d,%d]", size, c.sampleRate, c.lo, c.hi)
		}
	}
}

func TestDenoiseFrameSizeAllowsLargerCeilingThanTransient(t *testing.T) {
	if maxDenoiseFrame <= maxTransientFrame {
		t.Fatalf("expected denoise clamp ceiling (%d) to exceed transient clamp ceiling (%d)", maxDenoiseFrame, maxTransientFrame)
	}
	if denoiseFrameSize(192000) < transientFrameSize(192000) {
		t.Fatalf("at a high sample rate the denoise frame should not be smaller than the transient frame")
	}
}

func TestMonoMixAveragesChannels(t *testing.T) {
	samples := []float64{1, -1, 0.5, 0.5}
	mono := monoMix(samples, 2)
	if len(mono) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(mono))
	}
	if mono[0] != 0 {
		t.Fatalf("expected frame 0 mean 0, got %v", mono[0])
	}
	if mono[1] != 0.5 {
		t.Fatalf("expected frame 1 mean 0.5, got %v", mono[1])
	}
}

func TestDeinterleaveAndInterleaveRoundtrip(t *testing.T) {
	samples := []float64{1, 2, 3, 4, 5, 6}
	ch0 := deinterleaveChannel(samples, 2, 0)
	ch1 := deinterleaveChannel(samples, 2, 1)
	if got := ch0; got[0] != 1 || got[1] != 3 || got[2] != 5 {
		t.Fatalf("unexpected channel 0: %v", got)
	}
	if got := ch1; got[0] != 2 || got[1] != 4 || got[2] != 6 {
		t.Fatalf("unexpected channel 1: %v", got)
	}

	out := make([]float64, len(samples))
	interleaveChannel(out, 2, 0, ch0)
	interleaveChannel(out, 2, 1, ch1)
	for i := range samples {
		if out[i] != samples[i] {
			t.Fatalf("roundtrip mismatch at %d: want %v got %v", i, samples[i], out[i])
		}
	}
}

func TestExtractMonoFrameZeroPads(t *testing.T) {
	src := []float64{1, 2, 3}
	frame := extractMonoFrame(src, 1, 4)
	want := []float64{2, 3, 0, 0}
	for i := range want {
		if frame[i] != want[i] {
			t.Fatalf("frame[%d] = %v, want %v", i, frame[i], want[i])
		}
	}
}
