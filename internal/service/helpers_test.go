package service

import (
	"context"
	"sync"
	"testing"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(v any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := v.(Event); ok {
		p.events = append(p.events, e)
	}
}

func (p *recordingPublisher) ofType(typ string) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Event
	for _, e := range p.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	ctx      context.Context
	db       *gorm.DB
	pub      *recordingPublisher
	stocks   repository.StockRepository
	history  repository.StockHistoryRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	carts    repository.CartRepository
	wallets  repository.WalletRepository
	stock    StockService
	wallet   WalletService
	order    OrderService
	cart     CartService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{
		ctx:      context.Background(),
		db:       db,
		pub:      &recordingPublisher{},
		stocks:   repository.NewStockRepo(db),
		history:  repository.NewStockHistoryRepo(db),
		products: repository.NewProductRepo(db),
		orders:   repository.NewOrderRepo(db),
		carts:    repository.NewCartRepo(db),
		wallets:  repository.NewWalletRepo(db),
	}
	f.stock = NewStockService(db, f.stocks, f.history, f.pub, nil)
	f.wallet = NewWalletService(db, f.wallets, f.pub, nil)
	f.order = NewOrderService(db, f.orders, f.products, f.stock, f.pub, nil, decimal.NewFromInt(20), WithWallet(f.wallet))
	f.cart = NewCartService(db, f.carts, f.products, f.order, f.wallet, nil)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedStock inserts a stock row without the initial history entry.
func (f *fixture) seedStock(t *testing.T, name, quantity, unitName, threshold string) *model.Stock {
	t.Helper()
	s := &model.Stock{Name: name, Quantity: dec(quantity), Unit: unitName, Threshold: dec(threshold)}
	require.NoError(t, f.stocks.Create(f.ctx, s))
	return s
}

func (f *fixture) seedProduct(t *testing.T, name, price string, ingredients ...model.Ingredient) *model.Product {
	t.Helper()
	p := &model.Product{Name: name, Price: dec(price), IsAvailable: true, Ingredients: ingredients}
	require.NoError(t, f.products.Create(f.ctx, p))
	return p
}

func (f *fixture) seedOrder(t *testing.T, productName, price string, quantity int) *model.Order {
	t.Helper()
	o := &model.Order{
		UserID:      "customer-1",
		ProductName: productName,
		Price:       dec(price),
		Quantity:    quantity,
		Status:      model.OrderPending,
	}
	o.TotalPrice = o.Subtotal()
	require.NoError(t, f.orders.Create(f.ctx, o))
	return o
}

func (f *fixture) quantityOf(t *testing.T, s *model.Stock) decimal.Decimal {
	t.Helper()
	current, err := f.stocks.FindByID(f.ctx, s.ID)
	require.NoError(t, err)
	return current.Quantity
}

func (f *fixture) historyOf(t *testing.T, s *model.Stock) []model.StockHistory {
	t.Helper()
	entries, err := f.history.FindByStock(f.ctx, s.ID)
	require.NoError(t, err)
	return entries
}

func ingredient(name, quantity, unitName string) model.Ingredient {
	return model.Ingredient{Name: name, Quantity: dec(quantity), Unit: unitName}
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func (f *fixture) balanceOf(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	w, err := f.wallet.GetBalance(f.ctx, userID)
	require.NoError(t, err)
	return w.Balance
}

func (f *fixture) topUp(t *testing.T, userID, amount string) {
	t.Helper()
	_, err := f.wallet.TopUp(f.ctx, userID, TopUpRequest{Amount: dec(amount)}, "cashier-1")
	require.NoError(t, err)
}
