// Package pagination implements keyset pagination over unsigned ids.
//
// A page query asks the store for Limit(pageSize) rows with key >= startAt in
// ascending key order. Paginate keeps the first pageSize rows; if one more row
// came back its key becomes the cursor of the next page and the row itself is
// left for that page. A nil cursor means the list is exhausted.
package pagination

import "github.com/rongwang/stonks/internal/models"

// Page sizes of the ledger lists.
const (
	AccountsPageSize     = 10
	TransactionsPageSize = 10
	BanksPageSize        = 50
	AssetsPageSize       = 50
)

// Page is one slice of a keyset-paginated list.
type Page[T any] struct {
	Items []T
	Next  *models.ID
}

// Limit is the number of rows a page query must request.
func Limit(pageSize int) int {
	return pageSize + 1
}

// Paginate splits rows fetched with Limit(pageSize) into a page and the next
// cursor. rows must already be ordered by key.
func Paginate[T any](rows []T, pageSize int, key func(T) models.ID) Page[T] {
	if len(rows) <= pageSize {
		items := rows
		if items == nil {
			items = []T{}
		}
		return Page[T]{Items: items}
	}
	next := key(rows[pageSize])
	return Page[T]{Items: rows[:pageSize], Next: &next}
}
