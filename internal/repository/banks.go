package repository

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rongwang/stonks/internal/models"
)

type bankRow struct {
	UserID  models.ID `db:"user_id"`
	BankID  models.ID `db:"bank_id"`
	Name    string    `db:"bank_name"`
	Comment string    `db:"bank_comment"`
}

func (r bankRow) toModel() models.Bank {
	return models.Bank{
		UserID:  r.UserID,
		ID:      r.BankID,
		Name:    r.Name,
		Comment: r.Comment,
	}
}

func (r *sqlRepository) InsertBank(ctx context.Context, bank *models.Bank) error {
	query := `
		INSERT INTO banks (user_id, bank_id, bank_name, bank_comment)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.exec(ctx, query, bank.UserID, bank.ID, bank.Name, bank.Comment)
	return errors.Wrap(err, "insert bank")
}

func (r *sqlRepository) BankExists(ctx context.Context, userID, bankID models.ID) (bool, error) {
	ok, err := r.exists(ctx,
		`SELECT COUNT(*) FROM banks WHERE user_id = ? AND bank_id = ?`,
		userID, bankID)
	return ok, errors.Wrap(err, "check bank")
}

func (r *sqlRepository) DeleteBank(ctx context.Context, userID, bankID models.ID) (bool, error) {
	n, err := r.exec(ctx,
		`DELETE FROM banks WHERE user_id = ? AND bank_id = ?`,
		userID, bankID)
	if err != nil {
		return false, errors.Wrap(err, "delete bank")
	}
	return n > 0, nil
}

func (r *sqlRepository) ListBanks(ctx context.Context, userID, startAt models.ID, limit int) ([]models.Bank, error) {
	query := `
		SELECT user_id, bank_id, bank_name, bank_comment
		FROM banks
		WHERE user_id = ? AND bank_id >= ?
		ORDER BY bank_id ASC
		LIMIT ?
	`
	var rows []bankRow
	if err := r.selectRows(ctx, &rows, query, userID, startAt, limit); err != nil {
		return nil, errors.Wrap(err, "list banks")
	}

	banks := make([]models.Bank, 0, len(rows))
	for _, row := range rows {
		banks = append(banks, row.toModel())
	}
	return banks, nil
}

func (r *sqlRepository) CountAccountsForBank(ctx context.Context, userID, bankID models.ID) (int, error) {
	n, err := r.count(ctx,
		`SELECT COUNT(*) FROM accounts WHERE user_id = ? AND bank_id = ?`,
		userID, bankID)
	return n, errors.Wrap(err, "count bank accounts")
}
