// achievements/service.go - Award transaction and progress reporting
package achievements

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"speakly/models"

	"gorm.io/gorm"
)

// ErrConflict is returned when an award attempt keeps losing to
// concurrent writers and runs out of retries. The badge is not lost:
// the criteria stay met, so the caller can retry the whole trigger.
var ErrConflict = errors.New("achievement award conflict")

// errVersionRace aborts a transaction whose summary version guard failed.
var errVersionRace = errors.New("summary version changed")

const (
	maxAwardRetries = 5
	backfillSlots   = 4
)

type Service struct {
	db *gorm.DB

	// Bounded slots for fire-and-forget backfill awards. A full channel
	// drops the dispatch; the next report re-derives the same candidates.
	backfill chan struct{}
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db:       db,
		backfill: make(chan struct{}, backfillSlots),
	}
}

// AwardResult reports which candidate badges the user just earned and
// which were already on record.
type AwardResult struct {
	NewlyEarned   []Definition `json:"newly_earned"`
	AlreadyEarned []string     `json:"already_earned"`
}

// ProgressEntry is one catalog badge with the user's standing against it.
type ProgressEntry struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Category        Category   `json:"category"`
	Icon            string     `json:"icon"`
	Earned          bool       `json:"earned"`
	EarnedAt        *time.Time `json:"earned_at,omitempty"`
	Current         int        `json:"current"`
	Target          int        `json:"target"`
	ProgressPercent int        `json:"progress_percent"`
}

// Award evaluates the badges relevant to a trigger and records any the
// user now qualifies for, exactly once. A user without a stats record
// yields an empty result, not an error.
func (s *Service) Award(userID uint, trigger Trigger) (*AwardResult, error) {
	return s.award(userID, Candidates(trigger))
}

func (s *Service) award(userID uint, candidates []Definition) (*AwardResult, error) {
	if len(candidates) == 0 {
		return &AwardResult{NewlyEarned: []Definition{}, AlreadyEarned: []string{}}, nil
	}

	var lastErr error
	for attempt := 0; attempt < maxAwardRetries; attempt++ {
		res, err := s.tryAward(userID, candidates)
		if err == nil {
			return res, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		// Stale reads are useless after a conflict; loop re-reads from scratch.
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrConflict, lastErr)
}

// tryAward runs one attempt of the award algorithm inside a single
// transaction: read stats + earned set, evaluate, insert earned rows,
// bump the summary under its version guard. Any conflict rolls the
// whole attempt back.
func (s *Service) tryAward(userID uint, candidates []Definition) (*AwardResult, error) {
	res := &AwardResult{NewlyEarned: []Definition{}, AlreadyEarned: []string{}}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		stats, err := snapshotStats(tx, &user)
		if err != nil {
			return err
		}

		earned, err := earnedIDs(tx, userID)
		if err != nil {
			return err
		}

		var staged []Definition
		for _, def := range candidates {
			if earned[def.ID] {
				res.AlreadyEarned = append(res.AlreadyEarned, def.ID)
				continue
			}
			if Meets(def.Criteria, stats) {
				staged = append(staged, def)
			}
		}
		if len(staged) == 0 {
			return nil
		}

		// Catalog order decides which staged badge becomes the "latest"
		// pointer when several land in one transaction.
		sortByCatalogOrder(staged)

		now := time.Now().UTC()
		rows := make([]models.EarnedAchievement, len(staged))
		for i, def := range staged {
			rows[i] = models.EarnedAchievement{
				UserID:        userID,
				AchievementID: def.ID,
				Name:          def.Name,
				Description:   def.Description,
				Category:      string(def.Category),
				Icon:          def.Icon,
				EarnedAt:      now,
			}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}

		latest := staged[len(staged)-1]
		if err := bumpSummary(tx, userID, len(staged), latest.ID, now); err != nil {
			return err
		}

		res.NewlyEarned = staged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// bumpSummary adds newly awarded badges to the per-user rollup. The
// update is guarded by the row version read inside this transaction; a
// concurrent committer invalidates the guard and forces a fresh attempt,
// which keeps Count equal to the number of earned rows.
func bumpSummary(tx *gorm.DB, userID uint, awarded int, latestID string, latestAt time.Time) error {
	var summary models.AchievementSummary
	err := tx.Where("user_id = ?", userID).First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		summary = models.AchievementSummary{
			UserID:   userID,
			Count:    awarded,
			LatestID: latestID,
			LatestAt: &latestAt,
			Version:  1,
		}
		return tx.Create(&summary).Error
	}
	if err != nil {
		return err
	}

	guard := tx.Model(&models.AchievementSummary{}).
		Where("user_id = ? AND version = ?", userID, summary.Version).
		Updates(map[string]interface{}{
			"count":     summary.Count + awarded,
			"latest_id": latestID,
			"latest_at": latestAt,
			"version":   summary.Version + 1,
		})
	if guard.Error != nil {
		return guard.Error
	}
	if guard.RowsAffected == 0 {
		return errVersionRace
	}
	return nil
}

// Report computes the user's standing against the whole catalog, in
// display order. Reading never blocks on the write path; if it spots
// badges that are met but not recorded it schedules a best-effort
// backfill award in the background and returns immediately.
func (s *Service) Report(userID uint) ([]ProgressEntry, error) {
	var user models.User
	err := s.db.First(&user, userID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	noStats := errors.Is(err, gorm.ErrRecordNotFound)

	var stats Stats
	if !noStats {
		if stats, err = snapshotStats(s.db, &user); err != nil {
			return nil, err
		}
	}

	earnedAt := map[string]time.Time{}
	if !noStats {
		var rows []models.EarnedAchievement
		if err := s.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			earnedAt[row.AchievementID] = row.EarnedAt
		}
	}

	entries := make([]ProgressEntry, 0, len(catalog))
	var missing []Definition
	for _, def := range catalog {
		current, target := Progress(def.Criteria, stats)
		entry := ProgressEntry{
			ID:              def.ID,
			Name:            def.Name,
			Description:     def.Description,
			Category:        def.Category,
			Icon:            def.Icon,
			Current:         current,
			Target:          target,
			ProgressPercent: ProgressPercent(current, target),
		}

		recorded := false
		if at, ok := earnedAt[def.ID]; ok {
			recorded = true
			t := at
			entry.EarnedAt = &t
		}
		met := !noStats && Meets(def.Criteria, stats)

		// Show the badge as earned as soon as the stats qualify, even
		// if the award side hasn't caught up yet.
		entry.Earned = recorded || met

		if met && !recorded {
			missing = append(missing, def)
		}
		entries = append(entries, entry)
	}

	if len(missing) > 0 {
		s.dispatchBackfill(userID, missing)
	}
	return entries, nil
}

// dispatchBackfill awards met-but-unrecorded badges without blocking the
// reader. Bypasses the trigger router on purpose: backfill is catalog-wide.
// Errors are logged and dropped; the next report retries naturally.
func (s *Service) dispatchBackfill(userID uint, defs []Definition) {
	select {
	case s.backfill <- struct{}{}:
		go func() {
			defer func() { <-s.backfill }()
			if _, err := s.award(userID, defs); err != nil {
				log.Printf("achievements: backfill for user %d failed: %v", userID, err)
			}
		}()
	default:
		// All slots busy. Skip; this report's candidates will still be
		// missing on the next call.
	}
}

// Latest returns the user's summary rollup, or nil if nothing earned yet.
func (s *Service) Latest(userID uint) (*models.AchievementSummary, error) {
	var summary models.AchievementSummary
	err := s.db.Where("user_id = ?", userID).First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// snapshotStats assembles the read-only stats snapshot the evaluator
// consumes. Everything lives on the user row except the distinct
// scenario count.
func snapshotStats(tx *gorm.DB, user *models.User) (Stats, error) {
	var scenarios int64
	err := tx.Model(&models.ScenarioCompletion{}).
		Where("user_id = ?", user.ID).
		Count(&scenarios).Error
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		SessionsCompleted:  user.SessionsCompleted,
		CurrentStreak:      user.CurrentStreak,
		LongestStreak:      user.LongestStreak,
		TotalStars:         user.TotalStars,
		PerfectStreak:      user.PerfectStreak,
		PracticeSeconds:    user.PracticeSeconds,
		ScenariosAttempted: int(scenarios),
		MissionsAuthored:   user.MissionsAuthored,
		Level:              user.Level,
	}, nil
}

func earnedIDs(tx *gorm.DB, userID uint) (map[string]bool, error) {
	var ids []string
	err := tx.Model(&models.EarnedAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, err
	}
	earned := make(map[string]bool, len(ids))
	for _, id := range ids {
		earned[id] = true
	}
	return earned, nil
}

var categoryRank = func() map[Category]int {
	ranks := make(map[Category]int, len(categoryOrder))
	for i, cat := range categoryOrder {
		ranks[cat] = i
	}
	return ranks
}()

func sortByCatalogOrder(defs []Definition) {
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].Category != defs[j].Category {
			return categoryRank[defs[i].Category] < categoryRank[defs[j].Category]
		}
		return defs[i].SortOrder < defs[j].SortOrder
	})
}

// isRetryable reports whether an award attempt failed only because of a
// concurrent writer. A duplicate key means another transaction already
// recorded one of the staged badges; re-reading turns it into membership.
func isRetryable(err error) bool {
	if errors.Is(err, errVersionRace) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 40001") || // serialization failure
		strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "database is locked")
}
