package analysis

// ActivityScore maps a category-minutes breakdown to the daily activity
// score: every category with positive minutes contributes its fixed point
// value once, regardless of how many minutes it holds. An empty breakdown
// (including the classifier fallback) scores zero.
func ActivityScore(categoryMinutes map[string]int) int64 {
	var score int64
	for label, mins := range categoryMinutes {
		if mins <= 0 {
			continue
		}
		score += ParseCategory(label).Points()
	}
	return score
}
