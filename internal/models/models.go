package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bank is a user-owned institution that accounts may reference
type Bank struct {
	UserID  ID     `json:"-"`
	ID      ID     `json:"bank_id"`
	Name    string `json:"bank_name"`
	Comment string `json:"bank_comment"`
}

// Asset is a currency or instrument; DecimalPlaces is fixed at creation
type Asset struct {
	UserID        ID      `json:"-"`
	ID            ID      `json:"asset_id"`
	Name          string  `json:"asset_name"`
	Comment       *string `json:"asset_comment,omitempty"`
	DecimalPlaces int     `json:"decimal_places"`
}

// Account holds balances of any number of assets
type Account struct {
	UserID      ID      `json:"-"`
	ID          ID      `json:"account_id"`
	BankID      *ID     `json:"bank_id,omitempty"`
	Name        string  `json:"account_name"`
	Description *string `json:"description,omitempty"`
}

// Transaction groups deltas. It is never updated after creation.
type Transaction struct {
	UserID    ID         `json:"-"`
	ID        ID         `json:"transaction_id"`
	Name      *string    `json:"name,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Comment   *string    `json:"comment,omitempty"`
}

// DeltaType supplies the sign of a delta. Multiplier is -1, 0 or +1.
type DeltaType struct {
	ID         ID     `json:"delta_type_id"`
	Name       string `json:"delta_type_name"`
	Multiplier int8   `json:"multiplier"`
}

// TransactionDelta is an unsigned adjustment of one (account, asset) pair
type TransactionDelta struct {
	UserID        ID      `json:"-"`
	ID            ID      `json:"delta_id"`
	TransactionID ID      `json:"transaction_id"`
	AccountID     ID      `json:"account_id"`
	AssetID       ID      `json:"asset_id"`
	Amount        uint64  `json:"delta_amount"`
	DeltaTypeID   ID      `json:"delta_type_id"`
	Comment       *string `json:"delta_comment,omitempty"`
}

// AssetBalance is the net amount of one asset in an account. Amount is in
// base units; Display is Amount shifted by the asset's decimal places and is
// absent when the asset row no longer exists.
type AssetBalance struct {
	AssetID ID               `json:"asset_id"`
	Amount  decimal.Decimal  `json:"amount"`
	Display *decimal.Decimal `json:"display,omitempty"`
}
