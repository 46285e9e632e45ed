package types

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBook(t *testing.T) {
	b := NewBook("算法导论", "Thomas H. Cormen", "9787111187776", 2006, 89.00)

	assert.Equal(t, "算法导论", b.Title)
	assert.Equal(t, "Thomas H. Cormen", b.Author)
	assert.Equal(t, "9787111187776", b.ISBN)
	assert.Equal(t, 2006, b.Year)
	assert.Equal(t, 89.00, b.Price)
	assert.True(t, b.IsAvailable(), "new books start available")
	assert.Empty(t, b.BookID, "BookID is assigned by the catalog")
}

func TestNewBookSkipsValidation(t *testing.T) {
	b := NewBook("Old", "Anon", "1", 1500, -3)

	assert.Equal(t, 1500, b.Year)
	assert.Equal(t, -3.0, b.Price)
	assert.True(t, b.IsAvailable())
	assert.ErrorIs(t, b.Validate(), ErrInvalidYear)
}

func TestBookValidate(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		price   float64
		wantErr error
	}{
		{name: "in range", year: 2010, price: 139},
		{name: "lower bounds", year: MinYear, price: 0},
		{name: "upper year bound", year: MaxYear, price: 1},
		{name: "year too early", year: MinYear - 1, price: 1, wantErr: ErrInvalidYear},
		{name: "year too late", year: MaxYear + 1, price: 1, wantErr: ErrInvalidYear},
		{name: "negative price", year: 2000, price: -0.01, wantErr: ErrInvalidPrice},
		{name: "NaN price", year: 2000, price: math.NaN(), wantErr: ErrInvalidPrice},
		{name: "infinite price", year: 2000, price: math.Inf(1)},
		{name: "year checked before price", year: 1, price: -1, wantErr: ErrInvalidYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBook("t", "a", "i", tt.year, tt.price)
			err := b.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBookUpdatePrice(t *testing.T) {
	tests := []struct {
		name      string
		price     float64
		wantErr   error
		wantPrice float64
	}{
		{name: "negative rejected", price: -1.0, wantErr: ErrInvalidPrice, wantPrice: 39.80},
		{name: "NaN rejected", price: math.NaN(), wantErr: ErrInvalidPrice, wantPrice: 39.80},
		{name: "zero accepted", price: 0.0, wantPrice: 0.0},
		{name: "positive accepted", price: 45.5, wantPrice: 45.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBook("C程序设计", "谭浩强", "9787111495482", 2015, 39.80)

			err := b.UpdatePrice(tt.price)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantPrice, b.Price)
		})
	}
}

func TestBookUpdateYear(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		wantErr  error
		wantYear int
	}{
		{name: "1799 rejected", year: 1799, wantErr: ErrInvalidYear, wantYear: 2015},
		{name: "2025 rejected", year: 2025, wantErr: ErrInvalidYear, wantYear: 2015},
		{name: "1800 accepted", year: 1800, wantYear: 1800},
		{name: "2024 accepted", year: 2024, wantYear: 2024},
		{name: "midrange accepted", year: 1999, wantYear: 1999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBook("C程序设计", "谭浩强", "9787111495482", 2015, 39.80)

			err := b.UpdateYear(tt.year)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantYear, b.Year)
		})
	}
}

func TestBookSetAvailability(t *testing.T) {
	b := NewBook("t", "a", "i", 2000, 1)

	b.SetAvailability(false)
	assert.False(t, b.IsAvailable())

	// Unconditional: repeating a value is allowed.
	b.SetAvailability(false)
	assert.False(t, b.IsAvailable())

	b.SetAvailability(true)
	assert.True(t, b.IsAvailable())
}

func TestNewBookID(t *testing.T) {
	id, err := NewBookID()
	require.NoError(t, err)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	other, err := NewBookID()
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}
