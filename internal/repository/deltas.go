package repository

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/rongwang/stonks/internal/balance"
	"github.com/rongwang/stonks/internal/models"
)

type deltaRow struct {
	UserID        models.ID      `db:"user_id"`
	TransactionID models.ID      `db:"transaction_id"`
	AccountID     models.ID      `db:"account_id"`
	AssetID       models.ID      `db:"asset_id"`
	DeltaID       models.ID      `db:"delta_id"`
	Amount        int64          `db:"delta_amount"`
	DeltaTypeID   models.ID      `db:"delta_type_id"`
	Comment       sql.NullString `db:"delta_comment"`
}

type deltaTypeRow struct {
	DeltaTypeID models.ID `db:"delta_type_id"`
	Name        string    `db:"delta_type_name"`
	Multiplier  int8      `db:"delta_type_multiplier"`
}

type contributionRow struct {
	AssetID       models.ID     `db:"asset_id"`
	Amount        int64         `db:"delta_amount"`
	Multiplier    sql.NullInt16 `db:"delta_type_multiplier"`
	DecimalPlaces sql.NullInt32 `db:"asset_decimal_places"`
}

func (r *sqlRepository) InsertDelta(ctx context.Context, delta *models.TransactionDelta) error {
	query := `
		INSERT INTO transaction_deltas
			(user_id, transaction_id, account_id, asset_id, delta_id, delta_amount, delta_type_id, delta_comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.exec(ctx, query,
		delta.UserID, delta.TransactionID, delta.AccountID, delta.AssetID,
		delta.ID, int64(delta.Amount), delta.DeltaTypeID, nullString(delta.Comment))
	return errors.Wrap(err, "insert delta")
}

func (r *sqlRepository) ListDeltasForTransaction(ctx context.Context, userID, transactionID models.ID) ([]models.TransactionDelta, error) {
	query := `
		SELECT user_id, transaction_id, account_id, asset_id, delta_id, delta_amount, delta_type_id, delta_comment
		FROM transaction_deltas
		WHERE user_id = ? AND transaction_id = ?
		ORDER BY delta_id ASC
	`
	var rows []deltaRow
	if err := r.selectRows(ctx, &rows, query, userID, transactionID); err != nil {
		return nil, errors.Wrap(err, "list deltas")
	}

	deltas := make([]models.TransactionDelta, 0, len(rows))
	for _, row := range rows {
		deltas = append(deltas, models.TransactionDelta{
			UserID:        row.UserID,
			ID:            row.DeltaID,
			TransactionID: row.TransactionID,
			AccountID:     row.AccountID,
			AssetID:       row.AssetID,
			Amount:        uint64(row.Amount),
			DeltaTypeID:   row.DeltaTypeID,
			Comment:       stringPtr(row.Comment),
		})
	}
	return deltas, nil
}

// ListBalanceContributions returns every delta of the account together with
// the multiplier of its type and the decimal places of its asset.
func (r *sqlRepository) ListBalanceContributions(ctx context.Context, userID, accountID models.ID) ([]balance.Contribution, error) {
	query := `
		SELECT d.asset_id, d.delta_amount, t.delta_type_multiplier, a.asset_decimal_places
		FROM transaction_deltas d
		LEFT JOIN delta_types t ON t.delta_type_id = d.delta_type_id
		LEFT JOIN assets a ON a.user_id = d.user_id AND a.asset_id = d.asset_id
		WHERE d.user_id = ? AND d.account_id = ?
		ORDER BY d.asset_id ASC
	`
	var rows []contributionRow
	if err := r.selectRows(ctx, &rows, query, userID, accountID); err != nil {
		return nil, errors.Wrap(err, "list balance contributions")
	}

	contributions := make([]balance.Contribution, 0, len(rows))
	for _, row := range rows {
		if !row.Multiplier.Valid {
			return nil, errors.Newf("delta of asset %s references an unknown delta type", row.AssetID)
		}
		c := balance.Contribution{
			AssetID:    row.AssetID,
			Amount:     uint64(row.Amount),
			Multiplier: int8(row.Multiplier.Int16),
		}
		if row.DecimalPlaces.Valid {
			dp := int(row.DecimalPlaces.Int32)
			c.DecimalPlaces = &dp
		}
		contributions = append(contributions, c)
	}
	return contributions, nil
}

func (r *sqlRepository) DeltaTypeExists(ctx context.Context, deltaTypeID models.ID) (bool, error) {
	ok, err := r.exists(ctx,
		`SELECT COUNT(*) FROM delta_types WHERE delta_type_id = ?`,
		deltaTypeID)
	return ok, errors.Wrap(err, "check delta type")
}

func (r *sqlRepository) ListDeltaTypes(ctx context.Context) ([]models.DeltaType, error) {
	query := `
		SELECT delta_type_id, delta_type_name, delta_type_multiplier
		FROM delta_types
		ORDER BY delta_type_id ASC
	`
	var rows []deltaTypeRow
	if err := r.selectRows(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "list delta types")
	}

	types := make([]models.DeltaType, 0, len(rows))
	for _, row := range rows {
		types = append(types, models.DeltaType{
			ID:         row.DeltaTypeID,
			Name:       row.Name,
			Multiplier: row.Multiplier,
		})
	}
	return types, nil
}
