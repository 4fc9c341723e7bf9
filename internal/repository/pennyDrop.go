package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cradoe/kycflow/internal/models"
)

type PennyDropRepository interface {
	Insert(drop *models.ReversePennyDrop) error
	GetOne(id string) (*models.ReversePennyDrop, bool, error)
	GetAll() ([]models.ReversePennyDrop, error)
	SettleStatus(id, status string) (bool, error)
}

type PennyDropRepositoryImpl struct {
	db *DB
}

func NewPennyDropRepository(db *DB) PennyDropRepository {
	return &PennyDropRepositoryImpl{db: db}
}

func (repo *PennyDropRepositoryImpl) Insert(drop *models.ReversePennyDrop) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		INSERT INTO reverse_penny_drops (id, short_url, status, trace_id, upi_bill_id, upi_link, valid_upto)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := repo.db.ExecContext(ctx, query,
		drop.ID,
		drop.ShortURL,
		drop.Status,
		drop.TraceID,
		drop.UpiBillID,
		drop.UpiLink,
		drop.ValidUpto,
	)

	return err
}

func (repo *PennyDropRepositoryImpl) GetOne(id string) (*models.ReversePennyDrop, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var drop models.ReversePennyDrop

	query := `SELECT * FROM reverse_penny_drops WHERE id = $1`

	err := repo.db.GetContext(ctx, &drop, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &drop, true, err
}

func (repo *PennyDropRepositoryImpl) GetAll() ([]models.ReversePennyDrop, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var drops []models.ReversePennyDrop

	query := `SELECT * FROM reverse_penny_drops ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &drops, query)
	if err != nil {
		return nil, err
	}

	return drops, nil
}

// SettleStatus moves a challenge out of CREATED. The predicate keeps the
// transition legal: a challenge that has already settled as SUCCESS or
// EXPIRED is never overwritten. Returns false when no row changed.
func (repo *PennyDropRepositoryImpl) SettleStatus(id, status string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE reverse_penny_drops SET status = $1 WHERE id = $2 AND status = 'CREATED'`

	result, err := repo.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
