package app

import (
	"sort"

	"qquiz-service/internal/domain"
)

// Summarize reduces results to one ScoreSummary per (user, quiz) pair. The
// best attempt has the highest ratio; among equal ratios the earliest wins.
// Output order follows first appearance in results.
func Summarize(results []domain.Result) []domain.ScoreSummary {
	type key struct{ user, quiz string }
	index := make(map[key]int)
	summaries := make([]domain.ScoreSummary, 0)

	for _, r := range results {
		k := key{r.UserID, r.QuizID}
		i, ok := index[k]
		if !ok {
			index[k] = len(summaries)
			summaries = append(summaries, domain.ScoreSummary{
				UserID:      r.UserID,
				QuizID:      r.QuizID,
				Attempts:    1,
				BestScore:   r.Score,
				BestTotal:   r.Total,
				BestAt:      r.CreatedAt,
				LatestScore: r.Score,
				LatestTotal: r.Total,
				LatestAt:    r.CreatedAt,
			})
			continue
		}

		s := &summaries[i]
		s.Attempts++
		if c := compareRatio(r.Score, r.Total, s.BestScore, s.BestTotal); c > 0 || (c == 0 && r.CreatedAt.Before(s.BestAt)) {
			s.BestScore, s.BestTotal, s.BestAt = r.Score, r.Total, r.CreatedAt
		}
		if r.CreatedAt.After(s.LatestAt) {
			s.LatestScore, s.LatestTotal, s.LatestAt = r.Score, r.Total, r.CreatedAt
		}
	}
	return summaries
}

// RankLeaderboard orders summaries by best ratio desc, then by who reached it
// first, then by user ID.
func RankLeaderboard(summaries []domain.ScoreSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if c := compareRatio(a.BestScore, a.BestTotal, b.BestScore, b.BestTotal); c != 0 {
			return c > 0
		}
		if !a.BestAt.Equal(b.BestAt) {
			return a.BestAt.Before(b.BestAt)
		}
		return a.UserID < b.UserID
	})
}

// compareRatio compares as/at with bs/bt without floating point. Undefined
// ratios (zero total) sort below every defined one.
func compareRatio(as, at, bs, bt int) int {
	switch {
	case at <= 0 && bt <= 0:
		return 0
	case at <= 0:
		return -1
	case bt <= 0:
		return 1
	}
	l, r := as*bt, bs*at
	switch {
	case l > r:
		return 1
	case l < r:
		return -1
	default:
		return 0
	}
}
