package models

import "time"

// Request models
type CreateBankRequest struct {
	Name    string `json:"bank_name" binding:"required"`
	Comment string `json:"bank_comment"`
}

type CreateAccountRequest struct {
	Name        string  `json:"account_name" binding:"required"`
	Description *string `json:"description"`
	BankID      *ID     `json:"bank_id"`
}

type CreateAssetRequest struct {
	Name          string  `json:"name" binding:"required"`
	Comment       *string `json:"comment"`
	DecimalPlaces int     `json:"decimal_places" binding:"min=0,max=18"`
}

type CreateTransactionRequest struct {
	Name      *string    `json:"name"`
	Comment   *string    `json:"comment"`
	Timestamp *time.Time `json:"timestamp"`
}

type AddDeltaRequest struct {
	AccountID   *ID     `json:"account_id" binding:"required"`
	AssetID     *ID     `json:"asset_id" binding:"required"`
	Amount      uint64  `json:"delta_amount"`
	DeltaTypeID *ID     `json:"delta_type_id" binding:"required"`
	Comment     *string `json:"delta_comment"`
}

// Response models. StartAt is the cursor of the next page and is omitted on
// the last one.
type GetBanksResponse struct {
	Banks   []Bank `json:"banks"`
	StartAt *ID    `json:"start_at,omitempty"`
}

type GetAccountsResponse struct {
	Accounts []Account `json:"accounts"`
	StartAt  *ID       `json:"start_at,omitempty"`
}

type GetAssetsResponse struct {
	Assets  []Asset `json:"assets"`
	StartAt *ID     `json:"start_at,omitempty"`
}

type GetTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
	StartAt      *ID           `json:"start_at,omitempty"`
}

type AddDeltaResponse struct {
	Status  string `json:"status"`
	DeltaID ID     `json:"delta_id"`
}

type GetDeltasResponse struct {
	TransactionID ID                 `json:"transaction_id"`
	Deltas        []TransactionDelta `json:"deltas"`
}

type GetDeltaTypesResponse struct {
	DeltaTypes []DeltaType `json:"delta_types"`
}

type BalanceResponse struct {
	AccountID ID             `json:"account_id"`
	Balances  []AssetBalance `json:"balances"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
