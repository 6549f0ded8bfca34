package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rongwang/stonks/internal/balance"
	"github.com/rongwang/stonks/internal/models"
)

// Repository is the ledger's view of one open transaction. Values are only
// obtained through Store.RunInTx and must not outlive the TxFunc.
type Repository interface {
	// Bank operations
	InsertBank(ctx context.Context, bank *models.Bank) error
	BankExists(ctx context.Context, userID, bankID models.ID) (bool, error)
	DeleteBank(ctx context.Context, userID, bankID models.ID) (bool, error)
	ListBanks(ctx context.Context, userID, startAt models.ID, limit int) ([]models.Bank, error)
	CountAccountsForBank(ctx context.Context, userID, bankID models.ID) (int, error)

	// Account operations
	InsertAccount(ctx context.Context, account *models.Account) error
	AccountExists(ctx context.Context, userID, accountID models.ID) (bool, error)
	DeleteAccount(ctx context.Context, userID, accountID models.ID) (bool, error)
	ListAccounts(ctx context.Context, userID, startAt models.ID, limit int) ([]models.Account, error)
	CountDeltasForAccount(ctx context.Context, userID, accountID models.ID) (int, error)

	// Asset operations
	InsertAsset(ctx context.Context, asset *models.Asset) error
	AssetExists(ctx context.Context, userID, assetID models.ID) (bool, error)
	ListAssets(ctx context.Context, userID, startAt models.ID, limit int) ([]models.Asset, error)

	// Transaction operations
	InsertTransaction(ctx context.Context, txn *models.Transaction) error
	TransactionExists(ctx context.Context, userID, transactionID models.ID) (bool, error)
	ListTransactions(ctx context.Context, userID, startAt models.ID, limit int) ([]models.Transaction, error)

	// Delta operations
	InsertDelta(ctx context.Context, delta *models.TransactionDelta) error
	ListDeltasForTransaction(ctx context.Context, userID, transactionID models.ID) ([]models.TransactionDelta, error)
	ListBalanceContributions(ctx context.Context, userID, accountID models.ID) ([]balance.Contribution, error)

	// Delta type reference data
	DeltaTypeExists(ctx context.Context, deltaTypeID models.ID) (bool, error)
	ListDeltaTypes(ctx context.Context) ([]models.DeltaType, error)
}

// sqlRepository implements Repository on top of a sqlx transaction. Queries
// are written with '?' placeholders and rebound for the driver.
type sqlRepository struct {
	tx *sqlx.Tx
}

var _ Repository = (*sqlRepository)(nil)

func newSQLRepository(tx *sqlx.Tx) *sqlRepository {
	return &sqlRepository{tx: tx}
}

func (r *sqlRepository) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := r.tx.ExecContext(ctx, r.tx.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sqlRepository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := r.tx.GetContext(ctx, &n, r.tx.Rebind(query), args...); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *sqlRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	n, err := r.count(ctx, query, args...)
	return n > 0, err
}

func (r *sqlRepository) selectRows(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return r.tx.SelectContext(ctx, dest, r.tx.Rebind(query), args...)
}
