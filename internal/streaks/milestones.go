package streaks

// Milestone is a fixed streak threshold with a display name.
type Milestone struct {
	Days int    `json:"days"`
	Name string `json:"name"`
}

var milestones = []Milestone{
	{Days: 7, Name: "One-Week Wonder"},
	{Days: 14, Name: "Two-Week Streak"},
	{Days: 30, Name: "Monthly Maven"},
	{Days: 60, Name: "Sixty Strong"},
	{Days: 90, Name: "Quarter Champion"},
	{Days: 180, Name: "Half-Year Hero"},
	{Days: 365, Name: "Year-Round Icon"},
}

// Milestones returns the full fixed ladder.
func Milestones() []Milestone {
	return append([]Milestone(nil), milestones...)
}

// EarnedMilestones returns the thresholds the current streak has reached.
func EarnedMilestones(current int) []Milestone {
	earned := []Milestone{}
	for _, m := range milestones {
		if current >= m.Days {
			earned = append(earned, m)
		}
	}
	return earned
}

// NextMilestone returns the smallest threshold above the current streak, or
// nil once the ladder is exhausted.
func NextMilestone(current int) *Milestone {
	for _, m := range milestones {
		if current < m.Days {
			next := m
			return &next
		}
	}
	return nil
}

// MilestoneProgress reports the fraction toward the next milestone, clamped
// to [0,1]. A finished ladder reports 1.
func MilestoneProgress(current int) float64 {
	next := NextMilestone(current)
	if next == nil {
		return 1
	}
	if current <= 0 {
		return 0
	}
	progress := float64(current) / float64(next.Days)
	if progress > 1 {
		return 1
	}
	return progress
}

// milestoneAt returns the milestone matching the exact day count, if any.
func milestoneAt(days int) *Milestone {
	for _, m := range milestones {
		if m.Days == days {
			hit := m
			return &hit
		}
	}
	return nil
}
