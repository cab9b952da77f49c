package source

import "math"

// Per-source curation bias. Official-launch and news sources outrank
// community discussion regardless of raw signal size; this is deliberate
// editorial weighting, not noise.
const (
	biasProductHunt = 1000.0
	biasNewsFeeds   = 800.0
	biasArxiv       = 600.0
	biasGitHub      = 500.0
	biasHuggingFace = 400.0
	biasNpm         = 350.0
	biasDevTo       = 300.0
	biasReddit      = 200.0
	biasHackerNews  = 100.0
)

// trendScore folds a source-native popularity signal into the shared
// scale: log compression keeps a 50k-star repo from drowning everything,
// while staying strictly monotonic in the signal.
func trendScore(bias, signal float64) float64 {
	if signal < 0 {
		signal = 0
	}
	return bias + 10*math.Log1p(signal)
}

// rankSignal synthesizes a popularity signal for feed sources that expose
// only ordering: earlier entries score higher.
func rankSignal(index, total int) float64 {
	if total <= 0 || index < 0 || index >= total {
		return 0
	}
	return float64(total - index)
}
