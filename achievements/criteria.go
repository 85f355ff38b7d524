// achievements/criteria.go - Badge criteria evaluation (pure, no I/O)
package achievements

type CriterionKind string

const (
	KindSessionsCompleted  CriterionKind = "sessions_completed"
	KindStreakDays         CriterionKind = "streak_days"
	KindTotalStars         CriterionKind = "total_stars"
	KindPerfectStreak      CriterionKind = "perfect_streak"
	KindPracticeMinutes    CriterionKind = "practice_minutes"
	KindScenariosAttempted CriterionKind = "scenarios_attempted"
	KindMissionsAuthored   CriterionKind = "missions_authored"
	KindLevelReached       CriterionKind = "level_reached"
)

// Criteria is the unlock rule for one badge. Numeric kinds use Threshold;
// KindLevelReached uses Level (a CEFR tier) and ignores Threshold.
type Criteria struct {
	Kind      CriterionKind `json:"kind"`
	Threshold int           `json:"threshold,omitempty"`
	Level     string        `json:"level,omitempty"`
}

// Stats is the read-only snapshot of a user's accumulated numbers.
// It is assembled from the user row elsewhere; evaluation never mutates it.
type Stats struct {
	SessionsCompleted  int
	CurrentStreak      int
	LongestStreak      int
	TotalStars         int
	PerfectStreak      int
	PracticeSeconds    int
	ScenariosAttempted int
	MissionsAuthored   int
	Level              string // "" = not yet assessed
}

// CEFR tiers in ascending order. Comparison is by position, never by string.
var cefrLevels = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

// levelOrdinal returns the 0-based position of a CEFR tier, or -1 for
// an empty/unknown level (below the lowest tier).
func levelOrdinal(level string) int {
	for i, l := range cefrLevels {
		if l == level {
			return i
		}
	}
	return -1
}

// counter selects the stat a numeric criterion measures.
func counter(kind CriterionKind, s Stats) int {
	switch kind {
	case KindSessionsCompleted:
		return s.SessionsCompleted
	case KindStreakDays:
		// A streak badge stays deserved even after the current streak
		// resets; credit whichever of the two is higher.
		if s.LongestStreak > s.CurrentStreak {
			return s.LongestStreak
		}
		return s.CurrentStreak
	case KindTotalStars:
		return s.TotalStars
	case KindPerfectStreak:
		return s.PerfectStreak
	case KindPracticeMinutes:
		return s.PracticeSeconds / 60
	case KindScenariosAttempted:
		return s.ScenariosAttempted
	case KindMissionsAuthored:
		return s.MissionsAuthored
	}
	return 0
}

// Meets reports whether the criteria is satisfied by the snapshot.
func Meets(c Criteria, s Stats) bool {
	if c.Kind == KindLevelReached {
		return levelOrdinal(s.Level) >= levelOrdinal(c.Level)
	}
	return counter(c.Kind, s) >= c.Threshold
}

// Progress returns the current/target pair for UI display. For level
// criteria both sides are 1-based tier positions ("tier 3 of 5"); an
// unassessed user reports current 0. Target is always >= 1.
func Progress(c Criteria, s Stats) (current, target int) {
	if c.Kind == KindLevelReached {
		target = levelOrdinal(c.Level) + 1
		current = levelOrdinal(s.Level) + 1
		if target < 1 {
			target = 1
		}
		return current, target
	}
	target = c.Threshold
	if target < 1 {
		target = 1
	}
	return counter(c.Kind, s), target
}

// ProgressPercent rounds 100*current/target and clamps to [0, 100].
func ProgressPercent(current, target int) int {
	if target < 1 {
		target = 1
	}
	if current < 0 {
		current = 0
	}
	pct := (current*100 + target/2) / target
	if pct > 100 {
		return 100
	}
	return pct
}
