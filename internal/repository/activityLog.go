package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cradoe/kycflow/internal/models"
)

// ActivityRepository records stage outcomes and account actions for audit.
// The entity/entity_id pair is polymorphic so the same table serves users,
// identity checks and bank challenges alike.
type ActivityRepository interface {
	Insert(log *models.ActivityLog) (*models.ActivityLog, error)
	CountConsecutiveFailedLoginAttempts(userID, actionDesc string) int
}

const (
	// ActivityLogUserEntity is used in activities that relate to user accounts
	ActivityLogUserEntity = "user"

	// ActivityLogIdentityEntity is used for identity-check stage outcomes
	ActivityLogIdentityEntity = "pan_verification"

	// ActivityLogChallengeEntity is used for bank-challenge and payment stage outcomes
	ActivityLogChallengeEntity = "reverse_penny_drop"
)

type ActivityRepositoryImpl struct {
	db *DB
}

func NewActivityRepository(db *DB) ActivityRepository {
	return &ActivityRepositoryImpl{db: db}
}

func (repo *ActivityRepositoryImpl) Insert(log *models.ActivityLog) (*models.ActivityLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var inserted models.ActivityLog

	query := `
		INSERT INTO activity_logs (user_id, entity, entity_id, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, entity, entity_id, description, created_at`

	err := repo.db.GetContext(ctx, &inserted, query,
		log.UserID,
		log.Entity,
		log.EntityId,
		log.Description,
	)
	if err != nil {
		return nil, err
	}

	return &inserted, nil
}

// CountConsecutiveFailedLoginAttempts counts failed logins since the last
// successful one, capped at the most recent 3 entries. Used to decide when
// an account should be locked.
func (repo *ActivityRepositoryImpl) CountConsecutiveFailedLoginAttempts(userID, actionDesc string) int {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var descriptions []string

	query := `
		SELECT description
		FROM activity_logs
		WHERE user_id = $1 AND entity = $2
		ORDER BY created_at DESC
		LIMIT 3
	`
	err := repo.db.SelectContext(ctx, &descriptions, query, userID, ActivityLogUserEntity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0
		}
		return 0
	}

	count := 0
	for _, desc := range descriptions {
		if desc == actionDesc {
			count++
		} else {
			break
		}
	}

	return count
}
