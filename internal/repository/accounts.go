package repository

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/rongwang/stonks/internal/models"
)

type accountRow struct {
	UserID      models.ID      `db:"user_id"`
	AccountID   models.ID      `db:"account_id"`
	Name        string         `db:"account_name"`
	Description sql.NullString `db:"account_description"`
	BankID      models.NullID  `db:"bank_id"`
}

func (r accountRow) toModel() models.Account {
	return models.Account{
		UserID:      r.UserID,
		ID:          r.AccountID,
		BankID:      r.BankID.Ptr(),
		Name:        r.Name,
		Description: stringPtr(r.Description),
	}
}

func (r *sqlRepository) InsertAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (user_id, account_id, account_name, account_description, bank_id)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.exec(ctx, query,
		account.UserID, account.ID, account.Name,
		nullString(account.Description), models.NullIDFrom(account.BankID))
	return errors.Wrap(err, "insert account")
}

func (r *sqlRepository) AccountExists(ctx context.Context, userID, accountID models.ID) (bool, error) {
	ok, err := r.exists(ctx,
		`SELECT COUNT(*) FROM accounts WHERE user_id = ? AND account_id = ?`,
		userID, accountID)
	return ok, errors.Wrap(err, "check account")
}

func (r *sqlRepository) DeleteAccount(ctx context.Context, userID, accountID models.ID) (bool, error) {
	n, err := r.exec(ctx,
		`DELETE FROM accounts WHERE user_id = ? AND account_id = ?`,
		userID, accountID)
	if err != nil {
		return false, errors.Wrap(err, "delete account")
	}
	return n > 0, nil
}

func (r *sqlRepository) ListAccounts(ctx context.Context, userID, startAt models.ID, limit int) ([]models.Account, error) {
	query := `
		SELECT user_id, account_id, account_name, account_description, bank_id
		FROM accounts
		WHERE user_id = ? AND account_id >= ?
		ORDER BY account_id ASC
		LIMIT ?
	`
	var rows []accountRow
	if err := r.selectRows(ctx, &rows, query, userID, startAt, limit); err != nil {
		return nil, errors.Wrap(err, "list accounts")
	}

	accounts := make([]models.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, row.toModel())
	}
	return accounts, nil
}

func (r *sqlRepository) CountDeltasForAccount(ctx context.Context, userID, accountID models.ID) (int, error) {
	n, err := r.count(ctx,
		`SELECT COUNT(*) FROM transaction_deltas WHERE user_id = ? AND account_id = ?`,
		userID, accountID)
	return n, errors.Wrap(err, "count account deltas")
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
