package service

import (
	"testing"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func stocksNamed(names ...string) []model.Stock {
	stocks := make([]model.Stock, 0, len(names))
	for _, n := range names {
		s := model.Stock{Name: n}
		s.ID = uuid.New()
		stocks = append(stocks, s)
	}
	return stocks
}

func TestResolveStockPrefersExactMatch(t *testing.T) {
	t.Parallel()

	stocks := stocksNamed("Tomato Sauce", "tomato")
	got := ResolveStock("Tomato", stocks)
	require.NotNil(t, got)
	require.Equal(t, "tomato", got.Name)
}

func TestResolveStockSubstringEitherDirection(t *testing.T) {
	t.Parallel()

	stocks := stocksNamed("Whole Milk", "Sugar")

	got := ResolveStock("milk", stocks)
	require.NotNil(t, got)
	require.Equal(t, "Whole Milk", got.Name)

	got = ResolveStock("Brown Sugar", stocks)
	require.NotNil(t, got)
	require.Equal(t, "Sugar", got.Name)
}

func TestResolveStockIsDeterministic(t *testing.T) {
	t.Parallel()

	a := stocksNamed("Cheddar Cheese", "Cheese Blend")
	b := []model.Stock{a[1], a[0]}

	require.Equal(t, "Cheddar Cheese", ResolveStock("cheese", a).Name)
	require.Equal(t, "Cheddar Cheese", ResolveStock("cheese", b).Name)
}

func TestResolveStockBlankName(t *testing.T) {
	t.Parallel()

	stocks := stocksNamed("Flour")
	require.Nil(t, ResolveStock("", stocks))
	require.Nil(t, ResolveStock("   ", stocks))
	require.Nil(t, ResolveStock("Saffron", stocks))
}

func TestFindSimilarStocks(t *testing.T) {
	t.Parallel()

	stocks := stocksNamed("Extract of Almond", "Vanilla Pod", "Salt", "Oil")
	similar := FindSimilarStocks("Vanilla Extract", stocks)
	require.Equal(t, []string{"Extract of Almond", "Vanilla Pod"}, stockNames(similar))

	require.Nil(t, ResolveStock("Vanilla Extract", stocks))
	require.Empty(t, FindSimilarStocks("Soy", stocks))
}
