// achievements/triggers.go - Maps platform events to the badges worth re-checking
package achievements

type Trigger string

const (
	TriggerSessionCompleted Trigger = "session_completed"
	TriggerLessonCreated    Trigger = "custom_lesson_created"
	TriggerLevelChanged     Trigger = "level_changed"
)

// Candidates narrows the catalog to the definitions a trigger can affect.
// Evaluating everything on every event would be correct but wasteful, so
// each event only re-checks the stats it can have moved. An unknown
// trigger returns nothing rather than falling back to the full catalog.
func Candidates(trigger Trigger) []Definition {
	var defs []Definition
	switch trigger {
	case TriggerSessionCompleted:
		for _, def := range catalog {
			if def.Category == CategoryLevel {
				continue
			}
			// Lesson authoring has its own trigger; no session can move it.
			if def.Criteria.Kind == KindMissionsAuthored {
				continue
			}
			defs = append(defs, def)
		}
	case TriggerLessonCreated:
		for _, def := range catalog {
			if def.Criteria.Kind == KindMissionsAuthored {
				defs = append(defs, def)
			}
		}
	case TriggerLevelChanged:
		for _, def := range catalog {
			if def.Category == CategoryLevel {
				defs = append(defs, def)
			}
		}
	}
	return defs
}
