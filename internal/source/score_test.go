package source

import "testing"

func TestTrendScoreMonotonic(t *testing.T) {
	prev := trendScore(biasGitHub, 0)
	for _, signal := range []float64{1, 10, 100, 1000, 50000} {
		got := trendScore(biasGitHub, signal)
		if got <= prev {
			t.Errorf("score must grow with signal: %v after %v", got, prev)
		}
		prev = got
	}
}

func TestTrendScoreNegativeSignalClamped(t *testing.T) {
	if trendScore(biasReddit, -5) != trendScore(biasReddit, 0) {
		t.Error("negative signal should score like zero")
	}
}

func TestBiasOrderingDominates(t *testing.T) {
	// A modest launch outranks even a huge community thread: the bias
	// gap is wider than any realistic signal can close.
	launch := trendScore(biasProductHunt, 5)
	thread := trendScore(biasHackerNews, 10000)
	if launch <= thread {
		t.Errorf("launch bias must dominate: %v vs %v", launch, thread)
	}
}

func TestRankSignal(t *testing.T) {
	tests := []struct {
		index, total int
		want         float64
	}{
		{0, 10, 10},
		{9, 10, 1},
		{5, 10, 5},
		{0, 0, 0},
		{-1, 10, 0},
		{10, 10, 0},
	}
	for _, tt := range tests {
		if got := rankSignal(tt.index, tt.total); got != tt.want {
			t.Errorf("rankSignal(%d, %d) = %v, want %v", tt.index, tt.total, got, tt.want)
		}
	}
}
