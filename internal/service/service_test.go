package service_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/rongwang/stonks/internal/api/testutils"
	"github.com/rongwang/stonks/internal/idgen"
	"github.com/rongwang/stonks/internal/models"
	"github.com/rongwang/stonks/internal/repository"
	"github.com/rongwang/stonks/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	credit = models.ID(1)
	debit  = models.ID(2)
)

func newService(t *testing.T) *service.DefaultService {
	t.Helper()
	return service.NewDefaultService(testutils.SetupStore(t), idgen.New(nil), nil)
}

func strPtr(s string) *string { return &s }

func idPtr(id models.ID) *models.ID { return &id }

func TestCreateAccountUnknownBank(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	user := models.ID(1)

	_, err := svc.CreateAccount(ctx, user, models.CreateAccountRequest{Name: "A", BankID: idPtr(999)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrInvalidReference))
	assert.Contains(t, err.Error(), "bank does not exist")

	page, err := svc.ListAccounts(ctx, user, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Accounts)
	assert.NotNil(t, page.Accounts)
}

func TestValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateBank(ctx, 1, models.CreateBankRequest{Name: "  "})
	assert.True(t, errors.Is(err, repository.ErrInvalidArgument))

	_, err = svc.CreateAsset(ctx, 1, models.CreateAssetRequest{Name: "X", DecimalPlaces: 19})
	assert.True(t, errors.Is(err, repository.ErrInvalidArgument))

	_, err = svc.AddDelta(ctx, 1, 1, models.AddDeltaRequest{
		AccountID: idPtr(1), AssetID: idPtr(1), DeltaTypeID: idPtr(credit), Amount: 1 << 63,
	})
	assert.True(t, errors.Is(err, repository.ErrInvalidArgument))
}

func TestAddDeltaRequiresTransaction(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	user := models.ID(10)

	account, err := svc.CreateAccount(ctx, user, models.CreateAccountRequest{Name: "Acc"})
	require.NoError(t, err)
	asset, err := svc.CreateAsset(ctx, user, models.CreateAssetRequest{Name: "USD", DecimalPlaces: 2})
	require.NoError(t, err)

	_, err = svc.AddDelta(ctx, user, 12345, models.AddDeltaRequest{
		AccountID: idPtr(account.ID), AssetID: idPtr(asset.ID), DeltaTypeID: idPtr(credit), Amount: 5,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	assert.Contains(t, err.Error(), "transaction not found")

	// another user's transaction is not visible
	txn, err := svc.CreateTransaction(ctx, user+1, models.CreateTransactionRequest{})
	require.NoError(t, err)
	_, err = svc.AddDelta(ctx, user, txn.ID, models.AddDeltaRequest{
		AccountID: idPtr(account.ID), AssetID: idPtr(asset.ID), DeltaTypeID: idPtr(credit), Amount: 5,
	})
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestListTransactionsPagination(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	user := models.ID(3)

	for i := 0; i < 10; i++ {
		_, err := svc.CreateTransaction(ctx, user, models.CreateTransactionRequest{Name: strPtr(fmt.Sprint(i))})
		require.NoError(t, err)
	}
	page, err := svc.ListTransactions(ctx, user, 0)
	require.NoError(t, err)
	assert.Len(t, page.Transactions, 10)
	assert.Nil(t, page.StartAt)

	_, err = svc.CreateTransaction(ctx, user, models.CreateTransactionRequest{})
	require.NoError(t, err)
	page, err = svc.ListTransactions(ctx, user, 0)
	require.NoError(t, err)
	require.Len(t, page.Transactions, 10)
	require.NotNil(t, page.StartAt)

	next, err := svc.ListTransactions(ctx, user, *page.StartAt)
	require.NoError(t, err)
	require.Len(t, next.Transactions, 1)
	assert.Nil(t, next.StartAt)
}

func TestConcurrentAddDelta(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	user := models.ID(4)

	account, err := svc.CreateAccount(ctx, user, models.CreateAccountRequest{Name: "Acc"})
	require.NoError(t, err)
	asset, err := svc.CreateAsset(ctx, user, models.CreateAssetRequest{Name: "USD"})
	require.NoError(t, err)
	txn, err := svc.CreateTransaction(ctx, user, models.CreateTransactionRequest{})
	require.NoError(t, err)

	req := models.AddDeltaRequest{
		AccountID: idPtr(account.ID), AssetID: idPtr(asset.ID), DeltaTypeID: idPtr(credit), Amount: 1,
	}
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.AddDelta(ctx, user, txn.ID, req)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}

	deltas, err := svc.GetTransactionDeltas(ctx, user, txn.ID)
	require.NoError(t, err)
	assert.Len(t, deltas.Deltas, 2)
}

func TestAccountBalance(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	user := models.ID(5)

	account, err := svc.CreateAccount(ctx, user, models.CreateAccountRequest{Name: "Acc"})
	require.NoError(t, err)
	asset, err := svc.CreateAsset(ctx, user, models.CreateAssetRequest{Name: "USD", DecimalPlaces: 2})
	require.NoError(t, err)
	txn, err := svc.CreateTransaction(ctx, user, models.CreateTransactionRequest{})
	require.NoError(t, err)

	for _, d := range []struct {
		typ    models.ID
		amount uint64
	}{{credit, 100}, {debit, 50}} {
		_, err := svc.AddDelta(ctx, user, txn.ID, models.AddDeltaRequest{
			AccountID: idPtr(account.ID), AssetID: idPtr(asset.ID), DeltaTypeID: idPtr(d.typ), Amount: d.amount,
		})
		require.NoError(t, err)
	}

	resp, err := svc.GetAccountBalance(ctx, user, account.ID)
	require.NoError(t, err)
	require.Len(t, resp.Balances, 1)
	assert.True(t, resp.Balances[0].Amount.Equal(decimal.NewFromInt(50)))

	_, err = svc.GetAccountBalance(ctx, user, account.ID+1)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestRestrictDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	user := models.ID(6)

	bank, err := svc.CreateBank(ctx, user, models.CreateBankRequest{Name: "B"})
	require.NoError(t, err)
	account, err := svc.CreateAccount(ctx, user, models.CreateAccountRequest{Name: "A", BankID: idPtr(bank.ID)})
	require.NoError(t, err)

	_, err = svc.DeleteBank(ctx, user, bank.ID)
	assert.True(t, errors.Is(err, repository.ErrConflict))

	deleted, err := svc.DeleteAccount(ctx, user, account.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.DeleteBank(ctx, user, bank.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.DeleteBank(ctx, user, bank.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestIDsFromInjectedSource(t *testing.T) {
	var buf bytes.Buffer
	for _, v := range []uint64{1 << 63, 42} {
		require.NoError(t, binary.Write(&buf, binary.BigEndian, v))
	}
	svc := service.NewDefaultService(testutils.SetupStore(t), idgen.New(&buf), nil)
	ctx := context.Background()

	bank, err := svc.CreateBank(ctx, 1, models.CreateBankRequest{Name: "first"})
	require.NoError(t, err)
	assert.Equal(t, models.ID(1<<63), bank.ID)

	asset, err := svc.CreateAsset(ctx, 1, models.CreateAssetRequest{Name: "second"})
	require.NoError(t, err)
	assert.Equal(t, models.ID(42), asset.ID)

	banks, err := svc.ListBanks(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, banks.Banks, 1)
	assert.Equal(t, models.ID(1<<63), banks.Banks[0].ID)
}
