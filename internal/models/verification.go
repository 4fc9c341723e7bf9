package models

import (
	"database/sql"
	"time"
)

// PANVerification is the outcome of one identity-check attempt. Rows are
// insert-only; failed attempts are recorded too so the attempt remains
// attributable in the funnel.
type PANVerification struct {
	ID                   string         `db:"id"`
	Pan                  string         `db:"pan"`
	FullName             string         `db:"full_name"`
	Category             string         `db:"category"`
	AadhaarSeedingStatus sql.NullString `db:"aadhaar_seeding_status"`
	FirstName            sql.NullString `db:"first_name"`
	MiddleName           sql.NullString `db:"middle_name"`
	LastName             sql.NullString `db:"last_name"`
	Status               string         `db:"status"`
	Message              string         `db:"message"`
	TraceID              string         `db:"trace_id"`
	CreatedAt            time.Time      `db:"created_at"`
}

// ReversePennyDrop is one bank-account ownership challenge. The provider
// assigns the id; status is the only column that ever changes after insert.
type ReversePennyDrop struct {
	ID        string    `db:"id"`
	ShortURL  string    `db:"short_url"`
	Status    string    `db:"status"`
	TraceID   string    `db:"trace_id"`
	UpiBillID string    `db:"upi_bill_id"`
	UpiLink   string    `db:"upi_link"`
	ValidUpto string    `db:"valid_upto"`
	CreatedAt time.Time `db:"created_at"`
}

// Payment records one settlement confirmation of a penny-drop challenge.
type Payment struct {
	ID            string    `db:"id"`
	RequestID     string    `db:"request_id"`
	PaymentStatus bool      `db:"payment_status"`
	TraceID       string    `db:"trace_id"`
	CreatedAt     time.Time `db:"created_at"`
}
