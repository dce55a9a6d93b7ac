package search

import (
	"math"
	"testing"
)

func TestEstimateConfidence(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   float64
	}{
		{"zero scores are neutral", []float64{0, 0}, 0.5},
		{"single", []float64{-5}, 0.5},
		{"mean of abs", []float64{-2, -4}, 0.3},
		{"capped", []float64{-12, -30}, 1.0},
		{"exactly at cap", []float64{-10}, 1.0},
		{"positive scores use abs", []float64{3, -3}, 0.3},
		{"two close matches", []float64{-5.99, -5.98}, 0.5985},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := estimateConfidence(resultsWithScores(tc.scores...))
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEstimateConfidence_Monotonic(t *testing.T) {
	prev := -1.0
	for avg := 0.01; avg <= 20; avg += 0.37 {
		got := estimateConfidence(resultsWithScores(-avg))
		if got < prev {
			t.Fatalf("confidence decreased at avg=%v: %v < %v", avg, got, prev)
		}
		if got > 1.0 || got < 0 {
			t.Fatalf("confidence %v out of range", got)
		}
		prev = got
	}
}

func TestEstimateConfidence_EmptyIsNeutral(t *testing.T) {
	if got := estimateConfidence(nil); got != 0.5 {
		t.Errorf("got %v, want 0.5", got)
	}
}
