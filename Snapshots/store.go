package Snapshots

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"Compass/Models"
	"Compass/Scoring"
)

// Store manages completion snapshots. The one invariant it enforces is
// "at most one active snapshot per project": creation deactivates the
// previous active snapshot and inserts the new one inside a single
// transaction, so concurrent completions cannot both stay active.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// GetActiveSnapshot returns the active snapshot for a project, or nil when
// none exists.
func (s *Store) GetActiveSnapshot(projectID uint) (*Models.CompletionSnapshot, error) {
	var snap Models.CompletionSnapshot
	err := s.DB.Where("project_id = ? AND is_active = ?", projectID, true).
		Order("id DESC").
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// CreateSnapshot freezes a project's score. Any currently active snapshot is
// deactivated and its items removed, then the new snapshot plus items is
// inserted, all in one transaction. The frozen final score is the truncated
// sum of the items' converted scores.
func (s *Store) CreateSnapshot(projectID uint, completedAt time.Time, componentsJSON []byte, items []Models.SnapshotItem, actorID uint) (uint, error) {
	var total float64
	for _, item := range items {
		total += item.ConvertedScore
	}
	finalScore := Scoring.TruncateToOneDecimal(total)

	snap := Models.CompletionSnapshot{
		ProjectID:         projectID,
		FinalProjectScore: finalScore,
		CompletedAt:       completedAt,
		IsActive:          true,
		CreatedByID:       actorID,
		ComponentsJSON:    componentsJSON,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.deactivateActive(tx, projectID); err != nil {
			return err
		}

		if err := tx.Create(&snap).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].SnapshotID = snap.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return snap.ID, nil
}

// DeactivateSnapshots retires the active snapshot for a project without
// inserting a replacement (used on cancellation). Inactive rows stay for
// audit; their items do not.
func (s *Store) DeactivateSnapshots(projectID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.deactivateActive(tx, projectID)
	})
}

func (s *Store) deactivateActive(tx *gorm.DB, projectID uint) error {
	var active []Models.CompletionSnapshot
	if err := tx.Where("project_id = ? AND is_active = ?", projectID, true).
		Find(&active).Error; err != nil {
		return err
	}
	for _, old := range active {
		if err := tx.Model(&Models.CompletionSnapshot{}).
			Where("id = ?", old.ID).
			Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Where("snapshot_id = ?", old.ID).
			Delete(&Models.SnapshotItem{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// PurgeSnapshots removes every snapshot and item for a project, audit rows
// included. Used when a project reopens: its next completion must start from
// fresh inputs.
func (s *Store) PurgeSnapshots(projectID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&Models.CompletionSnapshot{}).Unscoped().
			Where("project_id = ?", projectID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Unscoped().Where("snapshot_id IN ?", ids).
			Delete(&Models.SnapshotItem{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("project_id = ?", projectID).
			Delete(&Models.CompletionSnapshot{}).Error
	})
}

// ActiveSnapshotsFor returns the active snapshot per project for a set of
// projects, keyed by project id.
func (s *Store) ActiveSnapshotsFor(projectIDs []uint) (map[uint]Models.CompletionSnapshot, error) {
	result := make(map[uint]Models.CompletionSnapshot)
	if len(projectIDs) == 0 {
		return result, nil
	}
	var snaps []Models.CompletionSnapshot
	if err := s.DB.Where("project_id IN ? AND is_active = ?", projectIDs, true).
		Find(&snaps).Error; err != nil {
		return nil, err
	}
	for _, snap := range snaps {
		result[snap.ProjectID] = snap
	}
	return result, nil
}

// ActiveItemsForUser returns one snapshot item per project for the given
// user, restricted to active snapshots of the given projects.
func (s *Store) ActiveItemsForUser(projectIDs []uint, userID uint) (map[uint]Models.SnapshotItem, error) {
	result := make(map[uint]Models.SnapshotItem)
	if len(projectIDs) == 0 {
		return result, nil
	}
	type itemRow struct {
		ProjectID      uint
		SnapshotID     uint
		UserID         uint
		UserEvalScore  float64
		ConvertedScore float64
	}
	var rows []itemRow
	err := s.DB.Model(&Models.SnapshotItem{}).
		Select("project_completion_snapshots.project_id AS project_id, " +
			"project_completion_snapshot_items.snapshot_id AS snapshot_id, " +
			"project_completion_snapshot_items.user_id AS user_id, " +
			"project_completion_snapshot_items.user_eval_score AS user_eval_score, " +
			"project_completion_snapshot_items.converted_score AS converted_score").
		Joins("JOIN project_completion_snapshots ON project_completion_snapshots.id = project_completion_snapshot_items.snapshot_id").
		Where("project_completion_snapshots.is_active = ?", true).
		Where("project_completion_snapshots.project_id IN ?", projectIDs).
		Where("project_completion_snapshot_items.user_id = ?", userID).
		Where("project_completion_snapshots.deleted_at IS NULL").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ProjectID] = Models.SnapshotItem{
			SnapshotID:     row.SnapshotID,
			UserID:         row.UserID,
			UserEvalScore:  row.UserEvalScore,
			ConvertedScore: row.ConvertedScore,
		}
	}
	return result, nil
}
