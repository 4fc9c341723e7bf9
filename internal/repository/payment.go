package repository

import (
	"context"

	"github.com/cradoe/kycflow/internal/models"
)

type PaymentRepository interface {
	Insert(payment *models.Payment) (string, error)
	GetAll() ([]models.Payment, error)
}

type PaymentRepositoryImpl struct {
	db *DB
}

func NewPaymentRepository(db *DB) PaymentRepository {
	return &PaymentRepositoryImpl{db: db}
}

func (repo *PaymentRepositoryImpl) Insert(payment *models.Payment) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO payments (request_id, payment_status, trace_id)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		payment.RequestID,
		payment.PaymentStatus,
		payment.TraceID,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *PaymentRepositoryImpl) GetAll() ([]models.Payment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var payments []models.Payment

	query := `SELECT * FROM payments ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &payments, query)
	if err != nil {
		return nil, err
	}

	return payments, nil
}
