// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package expertise

// badgeThreshold maps a level threshold to a badge name. Purely
// presentational: badges never feed back into scoring.
type badgeThreshold struct {
	level int
	name  string
}

var badgeThresholds = []badgeThreshold{
	{1, "새싹 미식가"},
	{5, "맛집 탐험가"},
	{10, "미식 전문가"},
	{20, "미식 마스터"},
	{50, "전설의 미식가"},
}

// BadgesForLevel returns every badge earned at the given level, lowest
// threshold first.
func BadgesForLevel(level int) []string {
	var badges []string
	for _, t := range badgeThresholds {
		if level >= t.level {
			badges = append(badges, t.name)
		}
	}
	return badges
}
