package repository

import (
	"context"

	"github.com/cradoe/kycflow/internal/models"
)

// PanVerificationRepository stores identity-check outcomes. Rows are
// insert-only: failed attempts are recorded alongside successful ones so the
// funnel can attribute every attempt.
type PanVerificationRepository interface {
	Insert(verification *models.PANVerification) (string, error)
	GetAll() ([]models.PANVerification, error)
	ExistsSuccessByTraceID(traceID string) (bool, error)
}

type PanVerificationRepositoryImpl struct {
	db *DB
}

func NewPanVerificationRepository(db *DB) PanVerificationRepository {
	return &PanVerificationRepositoryImpl{db: db}
}

func (repo *PanVerificationRepositoryImpl) Insert(verification *models.PANVerification) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO pan_verifications
			(pan, full_name, category, aadhaar_seeding_status, first_name, middle_name, last_name, status, message, trace_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		verification.Pan,
		verification.FullName,
		verification.Category,
		verification.AadhaarSeedingStatus,
		verification.FirstName,
		verification.MiddleName,
		verification.LastName,
		verification.Status,
		verification.Message,
		verification.TraceID,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *PanVerificationRepositoryImpl) GetAll() ([]models.PANVerification, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var verifications []models.PANVerification

	query := `SELECT * FROM pan_verifications ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &verifications, query)
	if err != nil {
		return nil, err
	}

	return verifications, nil
}

// ExistsSuccessByTraceID reports whether a successful identity check was
// recorded under the given trace identifier. The bank-challenge stage uses
// this to prove the caller-supplied trace belongs to a passed identity check.
func (repo *PanVerificationRepositoryImpl) ExistsSuccessByTraceID(traceID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM pan_verifications WHERE trace_id = $1 AND status = 'success')`

	err := repo.db.GetContext(ctx, &exists, query, traceID)
	if err != nil {
		return false, err
	}

	return exists, nil
}
