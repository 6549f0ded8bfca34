package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rongwang/stonks/internal/models"
)

type transactionRow struct {
	UserID        models.ID      `db:"user_id"`
	TransactionID models.ID      `db:"transaction_id"`
	Name          sql.NullString `db:"transaction_name"`
	Comment       sql.NullString `db:"transaction_comment"`
	Timestamp     sql.NullTime   `db:"transaction_timestamp"`
}

func (r transactionRow) toModel() models.Transaction {
	txn := models.Transaction{
		UserID:  r.UserID,
		ID:      r.TransactionID,
		Name:    stringPtr(r.Name),
		Comment: stringPtr(r.Comment),
	}
	if r.Timestamp.Valid {
		ts := r.Timestamp.Time.UTC()
		txn.Timestamp = &ts
	}
	return txn
}

// TruncateTimestamp brings a timestamp to the stored precision.
func TruncateTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func (r *sqlRepository) InsertTransaction(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, transaction_id, transaction_name, transaction_comment, transaction_timestamp)
		VALUES (?, ?, ?, ?, ?)
	`
	var ts sql.NullTime
	if txn.Timestamp != nil {
		ts = sql.NullTime{Time: TruncateTimestamp(*txn.Timestamp), Valid: true}
	}
	_, err := r.exec(ctx, query,
		txn.UserID, txn.ID, nullString(txn.Name), nullString(txn.Comment), ts)
	return errors.Wrap(err, "insert transaction")
}

func (r *sqlRepository) TransactionExists(ctx context.Context, userID, transactionID models.ID) (bool, error) {
	ok, err := r.exists(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ? AND transaction_id = ?`,
		userID, transactionID)
	return ok, errors.Wrap(err, "check transaction")
}

func (r *sqlRepository) ListTransactions(ctx context.Context, userID, startAt models.ID, limit int) ([]models.Transaction, error) {
	query := `
		SELECT user_id, transaction_id, transaction_name, transaction_comment, transaction_timestamp
		FROM transactions
		WHERE user_id = ? AND transaction_id >= ?
		ORDER BY transaction_id ASC
		LIMIT ?
	`
	var rows []transactionRow
	if err := r.selectRows(ctx, &rows, query, userID, startAt, limit); err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}

	txns := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, row.toModel())
	}
	return txns, nil
}
