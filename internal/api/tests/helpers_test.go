package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/rongwang/stonks/internal/api/testutils"
	"github.com/rongwang/stonks/internal/models"
	"github.com/stretchr/testify/require"
)

var (
	credit = models.ID(1)
	debit  = models.ID(2)
	memo   = models.ID(3)
)

func strPtr(s string) *string { return &s }

func idPtr(id models.ID) *models.ID { return &id }

func createBank(t *testing.T, tc *testutils.TestContext, name string) models.Bank {
	t.Helper()
	w := testutils.PerformRequest(tc.Router, http.MethodPost, "/api/banks",
		models.CreateBankRequest{Name: name}, testutils.AuthHeaders(tc.TestUserJWT))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var bank models.Bank
	testutils.DecodeJSON(t, w, &bank)
	return bank
}

func createAccount(t *testing.T, tc *testutils.TestContext, req models.CreateAccountRequest) models.Account {
	t.Helper()
	w := testutils.PerformRequest(tc.Router, http.MethodPost, "/api/accounts",
		req, testutils.AuthHeaders(tc.TestUserJWT))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var account models.Account
	testutils.DecodeJSON(t, w, &account)
	return account
}

func createAsset(t *testing.T, tc *testutils.TestContext, name string, decimalPlaces int) models.Asset {
	t.Helper()
	w := testutils.PerformRequest(tc.Router, http.MethodPost, "/api/assets",
		models.CreateAssetRequest{Name: name, DecimalPlaces: decimalPlaces}, testutils.AuthHeaders(tc.TestUserJWT))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var asset models.Asset
	testutils.DecodeJSON(t, w, &asset)
	return asset
}

func createTransaction(t *testing.T, tc *testutils.TestContext, name string) models.Transaction {
	t.Helper()
	w := testutils.PerformRequest(tc.Router, http.MethodPost, "/api/transactions",
		models.CreateTransactionRequest{Name: strPtr(name)}, testutils.AuthHeaders(tc.TestUserJWT))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var txn models.Transaction
	testutils.DecodeJSON(t, w, &txn)
	return txn
}

func deltasPath(transactionID models.ID) string {
	return fmt.Sprintf("/api/transactions/%s/deltas", transactionID)
}

func addDelta(t *testing.T, tc *testutils.TestContext, transactionID models.ID, req models.AddDeltaRequest) models.ID {
	t.Helper()
	w := testutils.PerformRequest(tc.Router, http.MethodPost, deltasPath(transactionID),
		req, testutils.AuthHeaders(tc.TestUserJWT))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.AddDeltaResponse
	testutils.DecodeJSON(t, w, &resp)
	return resp.DeltaID
}
