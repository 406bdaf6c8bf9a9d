package domain

import "testing"

func TestScoreSummaryRatios(t *testing.T) {
	s := ScoreSummary{BestScore: 3, BestTotal: 4, LatestScore: 1, LatestTotal: 4}
	if r, ok := s.BestRatio(); !ok || r != 0.75 {
		t.Fatalf("best ratio = %v, %v", r, ok)
	}
	if r, ok := s.LatestRatio(); !ok || r != 0.25 {
		t.Fatalf("latest ratio = %v, %v", r, ok)
	}
	if _, ok := (ScoreSummary{LatestScore: 0, LatestTotal: 0}).LatestRatio(); ok {
		t.Fatalf("latest ratio of an empty quiz must be undefined")
	}
}
