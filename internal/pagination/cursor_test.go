package pagination

import (
	"testing"

	"github.com/rongwang/stonks/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(n int) []models.ID {
	out := make([]models.ID, n)
	for i := range out {
		out[i] = models.ID(i * 10)
	}
	return out
}

func self(id models.ID) models.ID { return id }

func TestPaginate(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		page := Paginate[models.ID](nil, 10, self)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
		assert.Nil(t, page.Next)
	})

	t.Run("exactly one page", func(t *testing.T) {
		page := Paginate(ids(10), 10, self)
		assert.Len(t, page.Items, 10)
		assert.Nil(t, page.Next)
	})

	t.Run("one extra row", func(t *testing.T) {
		page := Paginate(ids(11), 10, self)
		assert.Len(t, page.Items, 10)
		require.NotNil(t, page.Next)
		assert.Equal(t, models.ID(100), *page.Next)
	})
}

func TestLimit(t *testing.T) {
	assert.Equal(t, 11, Limit(AccountsPageSize))
	assert.Equal(t, 51, Limit(BanksPageSize))
}
