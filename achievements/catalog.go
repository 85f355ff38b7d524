// achievements/catalog.go - The badge catalog, compiled into the binary
package achievements

type Category string

const (
	CategoryConsistency Category = "consistency"
	CategoryExcellence  Category = "excellence"
	CategoryTime        Category = "time"
	CategoryExplorer    Category = "explorer"
	CategoryLevel       Category = "level"
)

// categoryOrder fixes display order and the award tie-break order.
var categoryOrder = []Category{
	CategoryConsistency,
	CategoryExcellence,
	CategoryTime,
	CategoryExplorer,
	CategoryLevel,
}

type Definition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Icon        string   `json:"icon"`
	SortOrder   int      `json:"sort_order"`
	Criteria    Criteria `json:"criteria"`
}

// catalog holds every badge Speakly ships, in display order (category
// order above, then SortOrder). IDs are stable forever: a shipped ID is
// never reused for different criteria, tightening a rule means a new ID.
var catalog = []Definition{
	// Consistency
	{ID: "first_session", Name: "First Steps", Description: "Complete your first practice session", Category: CategoryConsistency, Icon: "🎤", SortOrder: 1, Criteria: Criteria{Kind: KindSessionsCompleted, Threshold: 1}},
	{ID: "sessions_10", Name: "Getting Into It", Description: "Complete 10 practice sessions", Category: CategoryConsistency, Icon: "🗣️", SortOrder: 2, Criteria: Criteria{Kind: KindSessionsCompleted, Threshold: 10}},
	{ID: "sessions_50", Name: "Regular Speaker", Description: "Complete 50 practice sessions", Category: CategoryConsistency, Icon: "📣", SortOrder: 3, Criteria: Criteria{Kind: KindSessionsCompleted, Threshold: 50}},
	{ID: "sessions_100", Name: "Century Club", Description: "Complete 100 practice sessions", Category: CategoryConsistency, Icon: "💯", SortOrder: 4, Criteria: Criteria{Kind: KindSessionsCompleted, Threshold: 100}},
	{ID: "streak_3", Name: "Warming Up", Description: "Practice 3 days in a row", Category: CategoryConsistency, Icon: "🔥", SortOrder: 5, Criteria: Criteria{Kind: KindStreakDays, Threshold: 3}},
	{ID: "streak_7", Name: "Week of Words", Description: "Practice 7 days in a row", Category: CategoryConsistency, Icon: "📅", SortOrder: 6, Criteria: Criteria{Kind: KindStreakDays, Threshold: 7}},
	{ID: "streak_30", Name: "Habit Formed", Description: "Practice 30 days in a row", Category: CategoryConsistency, Icon: "🏆", SortOrder: 7, Criteria: Criteria{Kind: KindStreakDays, Threshold: 30}},

	// Excellence
	{ID: "stars_50", Name: "Rising Star", Description: "Earn 50 stars from your tutor", Category: CategoryExcellence, Icon: "⭐", SortOrder: 1, Criteria: Criteria{Kind: KindTotalStars, Threshold: 50}},
	{ID: "stars_250", Name: "Star Collector", Description: "Earn 250 stars from your tutor", Category: CategoryExcellence, Icon: "🌟", SortOrder: 2, Criteria: Criteria{Kind: KindTotalStars, Threshold: 250}},
	{ID: "stars_1000", Name: "Constellation", Description: "Earn 1000 stars from your tutor", Category: CategoryExcellence, Icon: "✨", SortOrder: 3, Criteria: Criteria{Kind: KindTotalStars, Threshold: 1000}},
	{ID: "perfect_3", Name: "Flawless", Description: "Score a perfect session 3 times in a row", Category: CategoryExcellence, Icon: "🎯", SortOrder: 4, Criteria: Criteria{Kind: KindPerfectStreak, Threshold: 3}},
	{ID: "perfect_10", Name: "Perfectionist", Description: "Score a perfect session 10 times in a row", Category: CategoryExcellence, Icon: "👑", SortOrder: 5, Criteria: Criteria{Kind: KindPerfectStreak, Threshold: 10}},

	// Time
	{ID: "minutes_60", Name: "First Hour", Description: "Practice for a total of 1 hour", Category: CategoryTime, Icon: "⏱️", SortOrder: 1, Criteria: Criteria{Kind: KindPracticeMinutes, Threshold: 60}},
	{ID: "minutes_600", Name: "Ten Hours In", Description: "Practice for a total of 10 hours", Category: CategoryTime, Icon: "⏳", SortOrder: 2, Criteria: Criteria{Kind: KindPracticeMinutes, Threshold: 600}},
	{ID: "minutes_3000", Name: "Marathon Talker", Description: "Practice for a total of 50 hours", Category: CategoryTime, Icon: "🕰️", SortOrder: 3, Criteria: Criteria{Kind: KindPracticeMinutes, Threshold: 3000}},

	// Explorer
	{ID: "scenarios_5", Name: "Curious Mind", Description: "Try 5 different scenarios", Category: CategoryExplorer, Icon: "🧭", SortOrder: 1, Criteria: Criteria{Kind: KindScenariosAttempted, Threshold: 5}},
	{ID: "scenarios_15", Name: "World Traveler", Description: "Try 15 different scenarios", Category: CategoryExplorer, Icon: "🌍", SortOrder: 2, Criteria: Criteria{Kind: KindScenariosAttempted, Threshold: 15}},
	{ID: "missions_1", Name: "Lesson Smith", Description: "Author your first custom lesson", Category: CategoryExplorer, Icon: "✏️", SortOrder: 3, Criteria: Criteria{Kind: KindMissionsAuthored, Threshold: 1}},
	{ID: "missions_5", Name: "Curriculum Builder", Description: "Author 5 custom lessons", Category: CategoryExplorer, Icon: "📚", SortOrder: 4, Criteria: Criteria{Kind: KindMissionsAuthored, Threshold: 5}},

	// Level
	{ID: "level_a2", Name: "Elementary", Description: "Reach level A2", Category: CategoryLevel, Icon: "🌱", SortOrder: 1, Criteria: Criteria{Kind: KindLevelReached, Level: "A2"}},
	{ID: "level_b1", Name: "Conversational", Description: "Reach level B1", Category: CategoryLevel, Icon: "💬", SortOrder: 2, Criteria: Criteria{Kind: KindLevelReached, Level: "B1"}},
	{ID: "level_b2", Name: "Independent", Description: "Reach level B2", Category: CategoryLevel, Icon: "🚀", SortOrder: 3, Criteria: Criteria{Kind: KindLevelReached, Level: "B2"}},
	{ID: "level_c1", Name: "Advanced", Description: "Reach level C1", Category: CategoryLevel, Icon: "🎓", SortOrder: 4, Criteria: Criteria{Kind: KindLevelReached, Level: "C1"}},
	{ID: "level_c2", Name: "Mastery", Description: "Reach level C2", Category: CategoryLevel, Icon: "🏅", SortOrder: 5, Criteria: Criteria{Kind: KindLevelReached, Level: "C2"}},
}

var knownKinds = map[CriterionKind]bool{
	KindSessionsCompleted:  true,
	KindStreakDays:         true,
	KindTotalStars:         true,
	KindPerfectStreak:      true,
	KindPracticeMinutes:    true,
	KindScenariosAttempted: true,
	KindMissionsAuthored:   true,
	KindLevelReached:       true,
}

// ValidateCatalog checks catalog integrity. Callers run it once at
// process start and treat failure as fatal; a broken catalog is a deploy
// error, never a request-time error.
func ValidateCatalog() error {
	seen := make(map[string]bool, len(catalog))
	for _, def := range catalog {
		if def.ID == "" {
			return errCatalog("definition with empty id")
		}
		if seen[def.ID] {
			return errCatalog("duplicate id " + def.ID)
		}
		seen[def.ID] = true

		if !knownKinds[def.Criteria.Kind] {
			return errCatalog(def.ID + ": unknown criteria kind " + string(def.Criteria.Kind))
		}
		if def.Criteria.Kind == KindLevelReached {
			if levelOrdinal(def.Criteria.Level) < 0 {
				return errCatalog(def.ID + ": unknown level " + def.Criteria.Level)
			}
		} else if def.Criteria.Threshold < 1 {
			return errCatalog(def.ID + ": threshold must be >= 1")
		}
	}
	return nil
}

type errCatalog string

func (e errCatalog) Error() string { return string(e) }

// All returns every definition in display order. The slice is shared;
// callers must not modify it.
func All() []Definition {
	return catalog
}

// ByID looks up a single definition.
func ByID(id string) (Definition, bool) {
	for _, def := range catalog {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

// ByCategory groups the catalog for display, each group in sort order.
func ByCategory() map[Category][]Definition {
	grouped := make(map[Category][]Definition, len(categoryOrder))
	for _, def := range catalog {
		grouped[def.Category] = append(grouped[def.Category], def)
	}
	return grouped
}

// Categories returns the fixed category display order.
func Categories() []Category {
	return categoryOrder
}
