package repository

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/rongwang/stonks/internal/models"
)

type assetRow struct {
	UserID        models.ID      `db:"user_id"`
	AssetID       models.ID      `db:"asset_id"`
	Name          string         `db:"asset_name"`
	Comment       sql.NullString `db:"asset_comment"`
	DecimalPlaces int            `db:"asset_decimal_places"`
}

func (r *sqlRepository) InsertAsset(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO assets (user_id, asset_id, asset_name, asset_comment, asset_decimal_places)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.exec(ctx, query,
		asset.UserID, asset.ID, asset.Name, nullString(asset.Comment), asset.DecimalPlaces)
	return errors.Wrap(err, "insert asset")
}

func (r *sqlRepository) AssetExists(ctx context.Context, userID, assetID models.ID) (bool, error) {
	ok, err := r.exists(ctx,
		`SELECT COUNT(*) FROM assets WHERE user_id = ? AND asset_id = ?`,
		userID, assetID)
	return ok, errors.Wrap(err, "check asset")
}

func (r *sqlRepository) ListAssets(ctx context.Context, userID, startAt models.ID, limit int) ([]models.Asset, error) {
	query := `
		SELECT user_id, asset_id, asset_name, asset_comment, asset_decimal_places
		FROM assets
		WHERE user_id = ? AND asset_id >= ?
		ORDER BY asset_id ASC
		LIMIT ?
	`
	var rows []assetRow
	if err := r.selectRows(ctx, &rows, query, userID, startAt, limit); err != nil {
		return nil, errors.Wrap(err, "list assets")
	}

	assets := make([]models.Asset, 0, len(rows))
	for _, row := range rows {
		assets = append(assets, models.Asset{
			UserID:        row.UserID,
			ID:            row.AssetID,
			Name:          row.Name,
			Comment:       stringPtr(row.Comment),
			DecimalPlaces: row.DecimalPlaces,
		})
	}
	return assets, nil
}
