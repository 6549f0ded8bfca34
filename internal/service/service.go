package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rongwang/stonks/internal/balance"
	"github.com/rongwang/stonks/internal/idgen"
	"github.com/rongwang/stonks/internal/models"
	"github.com/rongwang/stonks/internal/pagination"
	"github.com/rongwang/stonks/internal/repository"
	"github.com/rongwang/stonks/internal/utils"
)

// MaxDecimalPlaces bounds Asset.DecimalPlaces.
const MaxDecimalPlaces = 18

// Service defines all the business logic operations
type Service interface {
	// Banks
	CreateBank(ctx context.Context, userID models.ID, req models.CreateBankRequest) (*models.Bank, error)
	ListBanks(ctx context.Context, userID, startAt models.ID) (*models.GetBanksResponse, error)
	DeleteBank(ctx context.Context, userID, bankID models.ID) (bool, error)

	// Accounts
	CreateAccount(ctx context.Context, userID models.ID, req models.CreateAccountRequest) (*models.Account, error)
	DeleteAccount(ctx context.Context, userID, accountID models.ID) (bool, error)
	ListAccounts(ctx context.Context, userID, startAt models.ID) (*models.GetAccountsResponse, error)
	GetAccountBalance(ctx context.Context, userID, accountID models.ID) (*models.BalanceResponse, error)

	// Assets
	CreateAsset(ctx context.Context, userID models.ID, req models.CreateAssetRequest) (*models.Asset, error)
	ListAssets(ctx context.Context, userID, startAt models.ID) (*models.GetAssetsResponse, error)

	// Transactions and deltas
	CreateTransaction(ctx context.Context, userID models.ID, req models.CreateTransactionRequest) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID, startAt models.ID) (*models.GetTransactionsResponse, error)
	AddDelta(ctx context.Context, userID, transactionID models.ID, req models.AddDeltaRequest) (models.ID, error)
	GetTransactionDeltas(ctx context.Context, userID, transactionID models.ID) (*models.GetDeltasResponse, error)
	ListDeltaTypes(ctx context.Context) (*models.GetDeltaTypesResponse, error)
}

// TxRunner runs a unit of work in one serializable transaction.
// *repository.Store implements it.
type TxRunner interface {
	RunInTx(ctx context.Context, op string, fn repository.TxFunc) error
}

// DefaultService implements the Service interface
type DefaultService struct {
	store  TxRunner
	ids    idgen.Generator
	logger *utils.Logger
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(store TxRunner, ids idgen.Generator, logger *utils.Logger) *DefaultService {
	if ids == nil {
		ids = idgen.New(nil)
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &DefaultService{store: store, ids: ids, logger: logger}
}

var _ Service = (*DefaultService)(nil)

// Bank operations
func (s *DefaultService) CreateBank(ctx context.Context, userID models.ID, req models.CreateBankRequest) (*models.Bank, error) {
	if err := requireName("bank_name", req.Name); err != nil {
		return nil, err
	}

	var bank *models.Bank
	err := s.store.RunInTx(ctx, "create bank", func(ctx context.Context, repo repository.Repository) error {
		b := &models.Bank{
			UserID:  userID,
			ID:      s.ids.NewID(),
			Name:    req.Name,
			Comment: req.Comment,
		}
		if err := repo.InsertBank(ctx, b); err != nil {
			return err
		}
		bank = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("created bank %s for user %s", bank.ID, userID)
	return bank, nil
}

func (s *DefaultService) ListBanks(ctx context.Context, userID, startAt models.ID) (*models.GetBanksResponse, error) {
	var page pagination.Page[models.Bank]
	err := s.store.RunInTx(ctx, "list banks", func(ctx context.Context, repo repository.Repository) error {
		rows, err := repo.ListBanks(ctx, userID, startAt, pagination.Limit(pagination.BanksPageSize))
		if err != nil {
			return err
		}
		page = pagination.Paginate(rows, pagination.BanksPageSize, func(b models.Bank) models.ID { return b.ID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &models.GetBanksResponse{Banks: page.Items, StartAt: page.Next}, nil
}

// DeleteBank reports false when the bank does not exist. A bank still
// referenced by accounts is not deleted.
func (s *DefaultService) DeleteBank(ctx context.Context, userID, bankID models.ID) (bool, error) {
	var deleted bool
	err := s.store.RunInTx(ctx, "delete bank", func(ctx context.Context, repo repository.Repository) error {
		n, err := repo.CountAccountsForBank(ctx, userID, bankID)
		if err != nil {
			return err
		}
		if n > 0 {
			return repository.ErrBankInUse
		}
		deleted, err = repo.DeleteBank(ctx, userID, bankID)
		return err
	})
	return deleted, err
}

// Account operations
func (s *DefaultService) CreateAccount(ctx context.Context, userID models.ID, req models.CreateAccountRequest) (*models.Account, error) {
	if err := requireName("account_name", req.Name); err != nil {
		return nil, err
	}

	var account *models.Account
	err := s.store.RunInTx(ctx, "create account", func(ctx context.Context, repo repository.Repository) error {
		if req.BankID != nil {
			ok, err := repo.BankExists(ctx, userID, *req.BankID)
			if err != nil {
				return err
			}
			if !ok {
				return repository.ErrBankNotFound
			}
		}

		a := &models.Account{
			UserID:      userID,
			ID:          s.ids.NewID(),
			BankID:      req.BankID,
			Name:        req.Name,
			Description: req.Description,
		}
		if err := repo.InsertAccount(ctx, a); err != nil {
			return err
		}
		account = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("created account %s for user %s", account.ID, userID)
	return account, nil
}

// DeleteAccount reports false when the account does not exist. An account
// still referenced by deltas is not deleted.
func (s *DefaultService) DeleteAccount(ctx context.Context, userID, accountID models.ID) (bool, error) {
	var deleted bool
	err := s.store.RunInTx(ctx, "delete account", func(ctx context.Context, repo repository.Repository) error {
		n, err := repo.CountDeltasForAccount(ctx, userID, accountID)
		if err != nil {
			return err
		}
		if n > 0 {
			return repository.ErrAccountInUse
		}
		deleted, err = repo.DeleteAccount(ctx, userID, accountID)
		return err
	})
	return deleted, err
}

func (s *DefaultService) ListAccounts(ctx context.Context, userID, startAt models.ID) (*models.GetAccountsResponse, error) {
	var page pagination.Page[models.Account]
	err := s.store.RunInTx(ctx, "list accounts", func(ctx context.Context, repo repository.Repository) error {
		rows, err := repo.ListAccounts(ctx, userID, startAt, pagination.Limit(pagination.AccountsPageSize))
		if err != nil {
			return err
		}
		page = pagination.Paginate(rows, pagination.AccountsPageSize, func(a models.Account) models.ID { return a.ID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &models.GetAccountsResponse{Accounts: page.Items, StartAt: page.Next}, nil
}

// GetAccountBalance sums the account's deltas per asset. The ownership check
// and the read happen in the same transaction, so the result reflects a
// single committed state.
func (s *DefaultService) GetAccountBalance(ctx context.Context, userID, accountID models.ID) (*models.BalanceResponse, error) {
	var balances []models.AssetBalance
	err := s.store.RunInTx(ctx, "account balance", func(ctx context.Context, repo repository.Repository) error {
		ok, err := repo.AccountExists(ctx, userID, accountID)
		if err != nil {
			return err
		}
		if !ok {
			return repository.ErrAccountNotFound
		}

		contributions, err := repo.ListBalanceContributions(ctx, userID, accountID)
		if err != nil {
			return err
		}
		balances = balance.Aggregate(contributions)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &models.BalanceResponse{AccountID: accountID, Balances: balances}, nil
}

// Asset operations
func (s *DefaultService) CreateAsset(ctx context.Context, userID models.ID, req models.CreateAssetRequest) (*models.Asset, error) {
	if err := requireName("name", req.Name); err != nil {
		return nil, err
	}
	if req.DecimalPlaces < 0 || req.DecimalPlaces > MaxDecimalPlaces {
		return nil, repository.InvalidArgument("decimal_places must be between 0 and %d, got %d",
			MaxDecimalPlaces, req.DecimalPlaces)
	}

	var asset *models.Asset
	err := s.store.RunInTx(ctx, "create asset", func(ctx context.Context, repo repository.Repository) error {
		a := &models.Asset{
			UserID:        userID,
			ID:            s.ids.NewID(),
			Name:          req.Name,
			Comment:       req.Comment,
			DecimalPlaces: req.DecimalPlaces,
		}
		if err := repo.InsertAsset(ctx, a); err != nil {
			return err
		}
		asset = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *DefaultService) ListAssets(ctx context.Context, userID, startAt models.ID) (*models.GetAssetsResponse, error) {
	var page pagination.Page[models.Asset]
	err := s.store.RunInTx(ctx, "list assets", func(ctx context.Context, repo repository.Repository) error {
		rows, err := repo.ListAssets(ctx, userID, startAt, pagination.Limit(pagination.AssetsPageSize))
		if err != nil {
			return err
		}
		page = pagination.Paginate(rows, pagination.AssetsPageSize, func(a models.Asset) models.ID { return a.ID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &models.GetAssetsResponse{Assets: page.Items, StartAt: page.Next}, nil
}

// Transaction operations
func (s *DefaultService) CreateTransaction(ctx context.Context, userID models.ID, req models.CreateTransactionRequest) (*models.Transaction, error) {
	var ts *time.Time
	if req.Timestamp != nil {
		t := repository.TruncateTimestamp(*req.Timestamp)
		ts = &t
	}

	var txn *models.Transaction
	err := s.store.RunInTx(ctx, "create transaction", func(ctx context.Context, repo repository.Repository) error {
		t := &models.Transaction{
			UserID:    userID,
			ID:        s.ids.NewID(),
			Name:      req.Name,
			Timestamp: ts,
			Comment:   req.Comment,
		}
		if err := repo.InsertTransaction(ctx, t); err != nil {
			return err
		}
		txn = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *DefaultService) ListTransactions(ctx context.Context, userID, startAt models.ID) (*models.GetTransactionsResponse, error) {
	var page pagination.Page[models.Transaction]
	err := s.store.RunInTx(ctx, "list transactions", func(ctx context.Context, repo repository.Repository) error {
		rows, err := repo.ListTransactions(ctx, userID, startAt, pagination.Limit(pagination.TransactionsPageSize))
		if err != nil {
			return err
		}
		page = pagination.Paginate(rows, pagination.TransactionsPageSize, func(t models.Transaction) models.ID { return t.ID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &models.GetTransactionsResponse{Transactions: page.Items, StartAt: page.Next}, nil
}

// AddDelta appends a delta to an existing transaction. Every reference is
// checked in the same transaction as the insert.
func (s *DefaultService) AddDelta(ctx context.Context, userID, transactionID models.ID, req models.AddDeltaRequest) (models.ID, error) {
	if req.AccountID == nil || req.AssetID == nil || req.DeltaTypeID == nil {
		return 0, repository.InvalidArgument("account_id, asset_id and delta_type_id are required")
	}
	if req.Amount > math.MaxInt64 {
		return 0, repository.InvalidArgument("delta_amount must not exceed %d", uint64(math.MaxInt64))
	}

	var deltaID models.ID
	err := s.store.RunInTx(ctx, "add delta", func(ctx context.Context, repo repository.Repository) error {
		checks := []struct {
			exists  func() (bool, error)
			missing error
		}{
			{func() (bool, error) { return repo.TransactionExists(ctx, userID, transactionID) }, repository.ErrTransactionNotFound},
			{func() (bool, error) { return repo.AccountExists(ctx, userID, *req.AccountID) }, repository.ErrAccountRefNotFound},
			{func() (bool, error) { return repo.AssetExists(ctx, userID, *req.AssetID) }, repository.ErrAssetRefNotFound},
			{func() (bool, error) { return repo.DeltaTypeExists(ctx, *req.DeltaTypeID) }, repository.ErrDeltaTypeNotFound},
		}
		for _, c := range checks {
			ok, err := c.exists()
			if err != nil {
				return err
			}
			if !ok {
				return c.missing
			}
		}

		d := &models.TransactionDelta{
			UserID:        userID,
			ID:            s.ids.NewID(),
			TransactionID: transactionID,
			AccountID:     *req.AccountID,
			AssetID:       *req.AssetID,
			Amount:        req.Amount,
			DeltaTypeID:   *req.DeltaTypeID,
			Comment:       req.Comment,
		}
		if err := repo.InsertDelta(ctx, d); err != nil {
			return err
		}
		deltaID = d.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deltaID, nil
}

// GetTransactionDeltas lists the deltas of a transaction owned by userID.
func (s *DefaultService) GetTransactionDeltas(ctx context.Context, userID, transactionID models.ID) (*models.GetDeltasResponse, error) {
	var deltas []models.TransactionDelta
	err := s.store.RunInTx(ctx, "list deltas", func(ctx context.Context, repo repository.Repository) error {
		ok, err := repo.TransactionExists(ctx, userID, transactionID)
		if err != nil {
			return err
		}
		if !ok {
			return repository.ErrTransactionNotFound
		}
		deltas, err = repo.ListDeltasForTransaction(ctx, userID, transactionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &models.GetDeltasResponse{TransactionID: transactionID, Deltas: deltas}, nil
}

func (s *DefaultService) ListDeltaTypes(ctx context.Context) (*models.GetDeltaTypesResponse, error) {
	var types []models.DeltaType
	err := s.store.RunInTx(ctx, "list delta types", func(ctx context.Context, repo repository.Repository) error {
		var err error
		types, err = repo.ListDeltaTypes(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &models.GetDeltaTypesResponse{DeltaTypes: types}, nil
}

// Helper methods
func requireName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return repository.InvalidArgument("%s must not be empty", field)
	}
	return nil
}
