package index

import "math"

// BM25 parameters.
const (
	// DefaultK1 controls term frequency saturation.
	DefaultK1 = 1.2
	// DefaultB controls how much document length normalizes term frequency.
	DefaultB = 0.75
	// minIDF keeps terms present in more than half the corpus from scoring zero or below.
	minIDF = 1e-6
)

// Params holds the BM25 ranking constants.
type Params struct {
	K1 float64
	B  float64
}

// DefaultParams returns the standard BM25 constants.
func DefaultParams() Params {
	return Params{K1: DefaultK1, B: DefaultB}
}

// idf = log((N - df + 0.5) / (df + 0.5)), floored at minIDF.
func idf(totalDocs, docFreq int) float64 {
	v := math.Log((float64(totalDocs) - float64(docFreq) + 0.5) / (float64(docFreq) + 0.5))
	if v <= 0 {
		return minIDF
	}
	return v
}

// termScore = idf * (tf * (k1 + 1)) / (tf + k1 * (1 - b + b * (|d| / avgdl)))
func (p Params) termScore(termIDF float64, tf, docLen int, avgDocLen float64) float64 {
	f := float64(tf)
	norm := 1 - p.B
	if avgDocLen > 0 {
		norm += p.B * float64(docLen) / avgDocLen
	}
	return termIDF * (f * (p.K1 + 1)) / (f + p.K1*norm)
}
