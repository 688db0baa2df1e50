package service

import (
	"testing"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDeductIngredientSameUnit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	flour := f.seedStock(t, "Flour", "5000", "g", "100")

	res, err := f.stock.DeductIngredient(f.ctx, DeductRequest{IngredientName: "flour", Quantity: dec("600"), Unit: "g", Reason: "Order for Pancake"})
	require.NoError(t, err)
	require.True(t, res.Deducted)
	require.Empty(t, res.Failure)
	require.False(t, res.LowStock)
	requireDecimal(t, "4400", res.Remaining)
	requireDecimal(t, "4400", f.quantityOf(t, flour))

	entries := f.historyOf(t, flour)
	require.Len(t, entries, 1)
	requireDecimal(t, "5000", entries[0].PreviousQuantity)
	requireDecimal(t, "4400", entries[0].NewQuantity)
	require.Equal(t, "Order for Pancake", entries[0].Reason)
	require.Equal(t, model.SystemActor, entries[0].ChangedBy)
	require.NotContains(t, entries[0].Notes, "Converted")

	current, err := f.stocks.FindByID(f.ctx, flour.ID)
	require.NoError(t, err)
	require.Equal(t, model.SystemActor, current.UpdatedBy)
	require.Len(t, f.pub.ofType(EventStockUpdate), 1)
}

func TestDeductIngredientConvertsUnits(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	milk := f.seedStock(t, "Milk", "2", "l", "0")

	res, err := f.stock.DeductIngredient(f.ctx, DeductRequest{IngredientName: "Milk", Quantity: dec("1"), Unit: "cup"})
	require.NoError(t, err)
	require.True(t, res.Deducted)
	requireDecimal(t, "0.24", res.Quantity)
	requireDecimal(t, "1.76", f.quantityOf(t, milk))

	entries := f.historyOf(t, milk)
	require.Len(t, entries, 1)
	require.Contains(t, entries[0].Notes, "Converted from 1 cup")
	require.Equal(t, defaultDeductReason, entries[0].Reason)
}

func TestDeductIngredientInsufficientStock(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	flour := f.seedStock(t, "Flour", "400", "g", "100")

	res, err := f.stock.DeductIngredient(f.ctx, DeductRequest{IngredientName: "Flour", Quantity: dec("600"), Unit: "g"})
	require.NoError(t, err)
	require.False(t, res.Deducted)
	require.Equal(t, FailureInsufficientStock, res.Failure)
	requireDecimal(t, "400", res.Available)
	requireDecimal(t, "400", f.quantityOf(t, flour))
	require.Empty(t, f.historyOf(t, flour))
	require.Empty(t, f.pub.events)
}

func TestDeductIngredientUnresolvedName(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedStock(t, "Extract of Almond", "100", "ml", "0")

	res, err := f.stock.DeductIngredient(f.ctx, DeductRequest{IngredientName: "Vanilla Extract", Quantity: dec("5"), Unit: "ml"})
	require.NoError(t, err)
	require.Equal(t, FailureResolution, res.Failure)
	require.Equal(t, []string{"Extract of Almond"}, res.Similar)
}

func TestDeductIngredientIncompatibleUnits(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	flour := f.seedStock(t, "Flour", "1000", "g", "0")

	res, err := f.stock.DeductIngredient(f.ctx, DeductRequest{IngredientName: "Flour", Quantity: dec("1"), Unit: "cup"})
	require.NoError(t, err)
	require.Equal(t, FailureConversion, res.Failure)
	requireDecimal(t, "1000", f.quantityOf(t, flour))
	require.Empty(t, f.historyOf(t, flour))
}

func TestDeductIngredientRaisesLowStock(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	sugar := f.seedStock(t, "Sugar", "1000", "g", "500")

	res, err := f.stock.DeductIngredient(f.ctx, DeductRequest{IngredientName: "Sugar", Quantity: dec("0.6"), Unit: "kg"})
	require.NoError(t, err)
	require.True(t, res.Deducted)
	require.True(t, res.LowStock)
	requireDecimal(t, "400", f.quantityOf(t, sugar))

	alerts := f.pub.ofType(EventLowStock)
	require.Len(t, alerts, 1)
	alert, ok := alerts[0].Data.(LowStockAlert)
	require.True(t, ok)
	require.Equal(t, sugar.ID, alert.StockID)
	requireDecimal(t, "100", alert.Shortfall)
}

func TestDeductIngredientFollowsStockLink(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	tomato := f.seedStock(t, "Tomato", "10", "pcs", "0")
	sauce := f.seedStock(t, "Tomato Sauce", "1000", "ml", "0")

	res, err := f.stock.DeductIngredient(f.ctx, DeductRequest{IngredientName: "Tomato", StockID: &sauce.ID, Quantity: dec("100"), Unit: "ml"})
	require.NoError(t, err)
	require.True(t, res.Deducted)
	require.Equal(t, sauce.ID, res.StockID)
	requireDecimal(t, "900", f.quantityOf(t, sauce))
	requireDecimal(t, "10", f.quantityOf(t, tomato))

	missing := uuid.New()
	res, err = f.stock.DeductIngredient(f.ctx, DeductRequest{IngredientName: "Tomato", StockID: &missing, Quantity: dec("2"), Unit: "pcs"})
	require.NoError(t, err)
	require.True(t, res.Deducted)
	require.Equal(t, tomato.ID, res.StockID)
}

func TestDeductIngredientRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedStock(t, "Flour", "1000", "g", "0")

	_, err := f.stock.DeductIngredient(f.ctx, DeductRequest{IngredientName: "Flour", Quantity: dec("0"), Unit: "g"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateStockRecordsInitialHistory(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	stock := &model.Stock{Name: "  Butter ", Quantity: dec("250"), Unit: "g", Threshold: dec("50")}
	require.NoError(t, f.stock.CreateStock(f.ctx, stock, "manager-1"))
	require.Equal(t, "Butter", stock.Name)

	entries := f.historyOf(t, stock)
	require.Len(t, entries, 1)
	require.Equal(t, model.ReasonInitialStock, entries[0].Reason)
	requireDecimal(t, "0", entries[0].PreviousQuantity)
	requireDecimal(t, "250", entries[0].NewQuantity)
	require.Equal(t, "manager-1", entries[0].ChangedBy)

	err := f.stock.CreateStock(f.ctx, &model.Stock{Name: "Eggs", Unit: "", Quantity: dec("1")}, "manager-1")
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateStockRecordsManualUpdate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	flour := f.seedStock(t, "Flour", "1000", "g", "100")

	updated, err := f.stock.UpdateStock(f.ctx, flour.ID, &model.Stock{Name: "Flour", Category: "Dry", Quantity: dec("1500"), Unit: "g", Threshold: dec("200")}, "", "manager-1")
	require.NoError(t, err)
	require.Equal(t, "Dry", updated.Category)

	entries := f.historyOf(t, flour)
	require.Len(t, entries, 1)
	require.Equal(t, model.ReasonManualUpdate, entries[0].Reason)
	requireDecimal(t, "1000", entries[0].PreviousQuantity)
	requireDecimal(t, "1500", entries[0].NewQuantity)

	_, err = f.stock.UpdateStock(f.ctx, uuid.New(), &model.Stock{Name: "X", Unit: "g"}, "", "manager-1")
	require.ErrorIs(t, err, ErrStockNotFound)
}

func TestAdjustQuantity(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	flour := f.seedStock(t, "Flour", "100", "g", "0")

	updated, err := f.stock.AdjustQuantity(f.ctx, flour.ID, dec("400"), "Restock", "manager-1")
	require.NoError(t, err)
	requireDecimal(t, "500", updated.Quantity)

	_, err = f.stock.AdjustQuantity(f.ctx, flour.ID, dec("-600"), "", "manager-1")
	require.ErrorIs(t, err, ErrValidation)
	requireDecimal(t, "500", f.quantityOf(t, flour))

	entries := f.historyOf(t, flour)
	require.Len(t, entries, 1)
	require.Equal(t, "Restock", entries[0].Reason)
	requireDecimal(t, "100", entries[0].PreviousQuantity)
}

func TestDeleteStock(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	withHistory := &model.Stock{Name: "Butter", Quantity: dec("250"), Unit: "g"}
	require.NoError(t, f.stock.CreateStock(f.ctx, withHistory, "manager-1"))
	require.ErrorIs(t, f.stock.DeleteStock(f.ctx, withHistory.ID, "manager-1"), ErrStockHasHistory)

	unused := f.seedStock(t, "Cinnamon", "10", "g", "0")
	require.NoError(t, f.stock.DeleteStock(f.ctx, unused.ID, "manager-1"))
	_, err := f.stock.GetStock(f.ctx, unused.ID)
	require.ErrorIs(t, err, ErrStockNotFound)

	require.ErrorIs(t, f.stock.DeleteStock(f.ctx, uuid.New(), "manager-1"), ErrStockNotFound)
}

func TestListLowStock(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedStock(t, "Flour", "1000", "g", "100")
	f.seedStock(t, "Sugar", "50", "g", "100")
	f.seedStock(t, "Salt", "100", "g", "100")

	low, err := f.stock.ListLowStock(f.ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Sugar", "Salt"}, stockNames(low))
}

func TestDeductIngredientBelowStockPrecision(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewStockService(f.db, f.stocks, f.history, f.pub, zap.New(core))
	sugar := f.seedStock(t, "Sugar", "2", "kg", "0")

	res, err := svc.DeductIngredient(f.ctx, DeductRequest{IngredientName: "Sugar", Quantity: dec("0.1"), Unit: "g"})
	require.NoError(t, err)
	require.False(t, res.Deducted)
	require.Equal(t, FailureBelowPrecision, res.Failure)
	requireDecimal(t, "2", f.quantityOf(t, sugar))
	require.Empty(t, f.historyOf(t, sugar))
	require.Empty(t, f.pub.ofType(EventStockUpdate))

	entries := logs.FilterMessage("converted quantity rounds to zero, nothing deducted").All()
	require.Len(t, entries, 1)
	require.Equal(t, "stock", entries[0].LoggerName)
}
