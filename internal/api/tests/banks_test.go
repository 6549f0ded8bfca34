package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/rongwang/stonks/internal/api/testutils"
	"github.com/rongwang/stonks/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBank(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// Test case 1: Successful bank creation
	bank := createBank(t, testCtx, "Test Bank")
	assert.Equal(t, "Test Bank", bank.Name)

	// Test case 2: Invalid request (missing name)
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/banks",
		models.CreateBankRequest{Comment: "no name"}, testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 3: Unauthorized request (no token)
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/banks",
		models.CreateBankRequest{Name: "Test Bank"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListBanksPagination(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	for i := 0; i < 51; i++ {
		createBank(t, testCtx, fmt.Sprintf("Bank %d", i))
	}

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/banks", nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	require.Equal(t, http.StatusOK, w.Code)

	var first models.GetBanksResponse
	testutils.DecodeJSON(t, w, &first)
	require.Len(t, first.Banks, 50)
	require.NotNil(t, first.StartAt)
	assert.Greater(t, uint64(*first.StartAt), uint64(first.Banks[49].ID))

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet,
		"/api/banks?start_at="+first.StartAt.String(), nil, testutils.AuthHeaders(testCtx.TestUserJWT))
	require.Equal(t, http.StatusOK, w.Code)

	var second models.GetBanksResponse
	testutils.DecodeJSON(t, w, &second)
	require.Len(t, second.Banks, 1)
	assert.Equal(t, *first.StartAt, second.Banks[0].ID)
	assert.Nil(t, second.StartAt)
	assert.NotContains(t, w.Body.String(), "start_at")

	// Test case: malformed cursor
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/banks?start_at=abc", nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteBank(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	bank := createBank(t, testCtx, "Bank to Delete")

	// Test case 1: Successfully delete the bank
	w := testutils.PerformRequest(testCtx.Router, http.MethodDelete, "/api/banks/"+bank.ID.String(), nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)

	// Test case 2: Delete non-existent bank
	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, "/api/banks/"+bank.ID.String(), nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Test case 3: Malformed id
	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, "/api/banks/non-existent-id", nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 4: Bank still referenced by an account
	used := createBank(t, testCtx, "Used Bank")
	createAccount(t, testCtx, models.CreateAccountRequest{Name: "Checking", BankID: idPtr(used.ID)})
	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, "/api/banks/"+used.ID.String(), nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusConflict, w.Code)
}
