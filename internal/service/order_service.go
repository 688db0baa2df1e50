package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/logger"
	"go-pos-ws/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// errUnchanged lets a mutation skip the write without failing.
var errUnchanged = errors.New("order unchanged")

type PlaceOrderRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1,lte=1000"`
	Notes     string    `json:"notes" validate:"max=500"`
}

// CompletionReport summarizes the stock side of a completed order. Stock
// shortfalls never block completion; they are reported here instead.
type CompletionReport struct {
	OrderID       uuid.UUID      `json:"order_id"`
	ProductFound  bool           `json:"product_found"`
	FullyDeducted bool           `json:"fully_deducted"`
	Deductions    []DeductResult `json:"deductions"`
	Failures      []DeductResult `json:"failures"`
}

type OrderService interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest, userID string) (*model.Order, error)
	// PlaceOrderInTx places an order inside the caller's transaction without
	// publishing it. Call PublishOrders after commit.
	PlaceOrderInTx(ctx context.Context, tx *gorm.DB, req PlaceOrderRequest, userID string) (*model.Order, error)
	PublishOrders(action string, orders ...*model.Order)
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error)
	ListNewOrders(ctx context.Context) ([]model.Order, error)
	ListAssignedOrders(ctx context.Context, employeeID string) ([]model.Order, error)
	ListOrderHistory(ctx context.Context, employeeID string) ([]model.Order, error)
	ListAwaitingDiscount(ctx context.Context) ([]model.Order, error)

	AssignOrder(ctx context.Context, id uuid.UUID, employeeID string) (*model.Order, error)
	// UpdateStatus moves an order along the workflow. Completed is routed
	// through CompleteOrder.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, actor string) (*model.Order, *CompletionReport, error)
	CancelOrder(ctx context.Context, id uuid.UUID, actor string) (*model.Order, error)
	MarkPaid(ctx context.Context, id uuid.UUID, actor string) (*model.Order, error)
	// PayWithWallet marks the order Paid and debits its owner's wallet in
	// the same transaction. Cancelling a wallet-paid order refunds it.
	PayWithWallet(ctx context.Context, id uuid.UUID, actor string) (*model.Order, *model.WalletTransaction, error)
	PayInTx(ctx context.Context, tx *gorm.DB, o *model.Order, actor string) (*model.WalletTransaction, error)

	RequestDiscount(ctx context.Context, id uuid.UUID, discountType, actor string) (*model.Order, error)
	// ApproveDiscount applies percentage (the configured default when zero).
	// The bool is false when the order had no pending request.
	ApproveDiscount(ctx context.Context, id uuid.UUID, percentage decimal.Decimal, approverID string) (*model.Order, bool, error)
	DenyDiscount(ctx context.Context, id uuid.UUID, approverID string) (*model.Order, error)
	SkipDiscount(ctx context.Context, id uuid.UUID, actor string) (*model.Order, error)

	CompleteOrder(ctx context.Context, id uuid.UUID, actor string) (*model.Order, *CompletionReport, error)
}

type orderService struct {
	db              *gorm.DB
	orders          repository.OrderRepository
	products        repository.ProductRepository
	stock           StockService
	pub             Publisher
	log             *zap.Logger
	defaultDiscount decimal.Decimal
	wallet          WalletService
}

type OrderOption func(*orderService)

// WithWallet enables wallet payments and refunds on cancellation.
func WithWallet(w WalletService) OrderOption {
	return func(s *orderService) {
		s.wallet = w
	}
}

func NewOrderService(
	db *gorm.DB,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	stock StockService,
	pub Publisher,
	log *zap.Logger,
	defaultDiscount decimal.Decimal,
	opts ...OrderOption,
) OrderService {
	if pub == nil {
		pub = nopPublisher{}
	}
	if !defaultDiscount.IsPositive() {
		defaultDiscount = decimal.NewFromInt(20)
	}
	s := &orderService{
		db:              db,
		orders:          orders,
		products:        products,
		stock:           stock,
		pub:             pub,
		log:             logger.OrNop(log).Named("order"),
		defaultDiscount: defaultDiscount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *orderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest, userID string) (*model.Order, error) {
	order, err := s.placeOrder(ctx, s.orders, s.products, req, userID)
	if err != nil {
		return nil, err
	}
	s.publish(order, "order_created")
	return order, nil
}

func (s *orderService) PlaceOrderInTx(ctx context.Context, tx *gorm.DB, req PlaceOrderRequest, userID string) (*model.Order, error) {
	return s.placeOrder(ctx, s.orders.WithTx(tx), s.products.WithTx(tx), req, userID)
}

func (s *orderService) placeOrder(ctx context.Context, orders repository.OrderRepository, products repository.ProductRepository, req PlaceOrderRequest, userID string) (*model.Order, error) {
	if msg := validator.FirstError(req); msg != "" {
		return nil, invalid(msg)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, invalid("user id is required")
	}

	product, err := products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	if !product.IsAvailable {
		return nil, invalid(fmt.Sprintf("product '%s' is not available", product.Name))
	}

	order := &model.Order{
		UserID:                  userID,
		ProductName:             product.Name,
		ProductImageURL:         product.ImageURL,
		ProductImageDescription: product.ImageDescription,
		Price:                   product.Price,
		Quantity:                req.Quantity,
		Status:                  model.OrderPending,
		Notes:                   req.Notes,
	}
	order.TotalPrice = order.Subtotal()
	order.CreatedBy = userID
	order.UpdatedBy = userID

	if err := orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.log.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("product", order.ProductName),
		zap.Int("quantity", order.Quantity),
		zap.String("total", order.TotalPrice.String()))
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, invalid(fmt.Sprintf("unknown order status %q", st))
		}
	}
	return s.orders.FindAll(ctx, filter)
}

func (s *orderService) ListNewOrders(ctx context.Context) ([]model.Order, error) {
	return s.orders.FindAll(ctx, repository.OrderFilter{
		Statuses:   []model.OrderStatus{model.OrderPending},
		Unassigned: true,
	})
}

func (s *orderService) ListAssignedOrders(ctx context.Context, employeeID string) ([]model.Order, error) {
	return s.orders.FindAll(ctx, repository.OrderFilter{
		EmployeeID: employeeID,
		Statuses: []model.OrderStatus{
			model.OrderReceived, model.OrderOnGoing, model.OrderProcessing, model.OrderReadyToServe,
		},
	})
}

func (s *orderService) ListOrderHistory(ctx context.Context, employeeID string) ([]model.Order, error) {
	return s.orders.FindAll(ctx, repository.OrderFilter{
		EmployeeID: employeeID,
		Statuses:   []model.OrderStatus{model.OrderCompleted, model.OrderCancelled},
	})
}

func (s *orderService) ListAwaitingDiscount(ctx context.Context) ([]model.Order, error) {
	return s.orders.FindAll(ctx, repository.OrderFilter{
		Statuses: []model.OrderStatus{model.OrderAwaitingDiscountApproval},
	})
}

func (s *orderService) AssignOrder(ctx context.Context, id uuid.UUID, employeeID string) (*model.Order, error) {
	if strings.TrimSpace(employeeID) == "" {
		return nil, invalid("employee id is required")
	}
	return s.mutate(ctx, id, employeeID, "order_assigned", func(_ *gorm.DB, o *model.Order) error {
		return o.Assign(employeeID)
	})
}

func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, actor string) (*model.Order, *CompletionReport, error) {
	if !status.Valid() {
		return nil, nil, invalid(fmt.Sprintf("unknown order status %q", status))
	}
	if status == model.OrderCompleted {
		return s.CompleteOrder(ctx, id, actor)
	}
	var refund *model.WalletTransaction
	order, err := s.mutate(ctx, id, actor, "status_changed", func(tx *gorm.DB, o *model.Order) error {
		if err := o.TransitionTo(status); err != nil {
			return err
		}
		if status != model.OrderCancelled || s.wallet == nil {
			return nil
		}
		var err error
		refund, err = s.wallet.RefundInTx(ctx, tx, o, actor)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	if refund != nil {
		s.wallet.Notify(refund)
	}
	return order, nil, nil
}

func (s *orderService) CancelOrder(ctx context.Context, id uuid.UUID, actor string) (*model.Order, error) {
	order, _, err := s.UpdateStatus(ctx, id, model.OrderCancelled, actor)
	return order, err
}

func (s *orderService) MarkPaid(ctx context.Context, id uuid.UUID, actor string) (*model.Order, error) {
	order, _, err := s.UpdateStatus(ctx, id, model.OrderPaid, actor)
	return order, err
}

func (s *orderService) PayWithWallet(ctx context.Context, id uuid.UUID, actor string) (*model.Order, *model.WalletTransaction, error) {
	if s.wallet == nil {
		return nil, nil, ErrWalletUnavailable
	}
	var charge *model.WalletTransaction
	order, err := s.mutate(ctx, id, actor, "order_paid", func(tx *gorm.DB, o *model.Order) error {
		var err error
		charge, err = s.chargeWallet(ctx, tx, o, actor)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	s.wallet.Notify(charge)
	return order, charge, nil
}

func (s *orderService) PayInTx(ctx context.Context, tx *gorm.DB, o *model.Order, actor string) (*model.WalletTransaction, error) {
	if s.wallet == nil {
		return nil, ErrWalletUnavailable
	}
	expected := o.Status
	charge, err := s.chargeWallet(ctx, tx, o, actor)
	if err != nil {
		o.Status = expected
		return nil, err
	}
	o.UpdatedBy = actor
	ok, err := s.orders.WithTx(tx).UpdateIfStatus(ctx, o, expected)
	if err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	if !ok {
		return nil, &model.TransitionError{From: expected, To: o.Status}
	}
	return charge, nil
}

// chargeWallet moves o to Paid and debits its total.
func (s *orderService) chargeWallet(ctx context.Context, tx *gorm.DB, o *model.Order, actor string) (*model.WalletTransaction, error) {
	if err := o.TransitionTo(model.OrderPaid); err != nil {
		return nil, err
	}
	return s.wallet.ChargeInTx(ctx, tx, o, actor)
}

func (s *orderService) PublishOrders(action string, orders ...*model.Order) {
	for _, o := range orders {
		s.publish(o, action)
	}
}

func (s *orderService) RequestDiscount(ctx context.Context, id uuid.UUID, discountType, actor string) (*model.Order, error) {
	discountType = strings.TrimSpace(discountType)
	if discountType == "" {
		return nil, invalid("discount type is required")
	}
	return s.mutate(ctx, id, actor, "discount_requested", func(_ *gorm.DB, o *model.Order) error {
		return o.RequestDiscount(discountType)
	})
}

func (s *orderService) ApproveDiscount(ctx context.Context, id uuid.UUID, percentage decimal.Decimal, approverID string) (*model.Order, bool, error) {
	if percentage.IsZero() {
		percentage = s.defaultDiscount
	}
	var applied bool
	order, err := s.mutate(ctx, id, approverID, "discount_approved", func(_ *gorm.DB, o *model.Order) error {
		ok, err := o.ApproveDiscount(approverID, percentage)
		if err != nil {
			return err
		}
		if !ok {
			return errUnchanged
		}
		applied = true
		return nil
	})
	return order, applied, err
}

func (s *orderService) DenyDiscount(ctx context.Context, id uuid.UUID, approverID string) (*model.Order, error) {
	return s.mutate(ctx, id, approverID, "discount_denied", func(_ *gorm.DB, o *model.Order) error {
		return o.DenyDiscount(approverID)
	})
}

func (s *orderService) SkipDiscount(ctx context.Context, id uuid.UUID, actor string) (*model.Order, error) {
	return s.mutate(ctx, id, actor, "discount_skipped", func(_ *gorm.DB, o *model.Order) error {
		return o.SkipDiscount()
	})
}

// CompleteOrder marks the order Completed and deducts every ingredient of its
// product in one transaction. Ingredient shortfalls are reported, not fatal;
// a storage error rolls back the status change and every deduction.
func (s *orderService) CompleteOrder(ctx context.Context, id uuid.UUID, actor string) (*model.Order, *CompletionReport, error) {
	if actor == "" {
		actor = model.SystemActor
	}
	var (
		order  *model.Order
		report *CompletionReport
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		o, err := orders.FindByID(ctx, id)
		if err != nil {
			return notFound(err, ErrOrderNotFound)
		}
		previous := o.Status
		if !previous.CanComplete() {
			return &model.TransitionError{From: previous, To: model.OrderCompleted}
		}

		o.Status = model.OrderCompleted
		o.UpdatedBy = actor
		ok, err := orders.UpdateIfStatus(ctx, o, previous)
		if err != nil {
			return fmt.Errorf("complete order: %w", err)
		}
		if !ok {
			return &model.TransitionError{From: previous, To: model.OrderCompleted}
		}

		report, err = s.deductIngredients(ctx, tx, o)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		s.log.Error("order completion failed", zap.String("order_id", id.String()), zap.Error(err))
		return nil, nil, err
	}

	s.stock.Flush(report.Deductions...)
	s.log.Info("order completed",
		zap.String("order_id", order.ID.String()),
		zap.Bool("fully_deducted", report.FullyDeducted),
		zap.Int("failures", len(report.Failures)))
	s.publish(order, "order_completed")
	return order, report, nil
}

func (s *orderService) deductIngredients(ctx context.Context, tx *gorm.DB, o *model.Order) (*CompletionReport, error) {
	report := &CompletionReport{OrderID: o.ID, FullyDeducted: true}
	log := s.log.With(zap.String("order_id", o.ID.String()), zap.String("product", o.ProductName))

	product, err := s.products.WithTx(tx).FindByName(ctx, o.ProductName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("product not found, no stock deducted")
		return report, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", o.ProductName, err)
	}
	report.ProductFound = true
	if len(product.Ingredients) == 0 {
		log.Warn("product has no ingredients, no stock deducted")
		return report, nil
	}

	reason := "Order for " + product.Name
	for _, ing := range product.Ingredients {
		required := ing.RequiredFor(o.Quantity)
		if !required.IsPositive() {
			log.Warn("skipping ingredient without quantity", zap.String("ingredient", ing.Name))
			continue
		}
		res, err := s.stock.DeductInTx(ctx, tx, DeductRequest{
			IngredientName: ing.Name,
			StockID:        ing.StockID,
			Quantity:       required,
			Unit:           ing.Unit,
			Reason:         reason,
			Actor:          model.SystemActor,
		})
		if err != nil {
			return nil, err
		}
		report.Deductions = append(report.Deductions, res)
		if !res.Deducted {
			report.FullyDeducted = false
			report.Failures = append(report.Failures, res)
		}
	}
	return report, nil
}

// mutate loads the order, applies fn and writes it back only if no one else
// changed its status in the meantime. fn may write through tx; those writes
// roll back with the order.
func (s *orderService) mutate(ctx context.Context, id uuid.UUID, actor, action string, fn func(tx *gorm.DB, o *model.Order) error) (*model.Order, error) {
	var (
		order   *model.Order
		changed = true
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		o, err := orders.FindByID(ctx, id)
		if err != nil {
			return notFound(err, ErrOrderNotFound)
		}
		expected := o.Status

		if err := fn(tx, o); err != nil {
			if errors.Is(err, errUnchanged) {
				order, changed = o, false
				return nil
			}
			return err
		}
		o.UpdatedBy = actor

		ok, err := orders.UpdateIfStatus(ctx, o, expected)
		if err != nil {
			return fmt.Errorf("save order: %w", err)
		}
		if !ok {
			return &model.TransitionError{From: expected, To: o.Status}
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.Info("order updated",
			zap.String("order_id", order.ID.String()),
			zap.String("action", action),
			zap.String("status", string(order.Status)),
			zap.String("actor", actor))
		s.publish(order, action)
	}
	return order, nil
}

func (s *orderService) publish(order *model.Order, action string) {
	s.pub.Publish(newEvent(EventOrderUpdate, action, order,
		fmt.Sprintf("Order %s for '%s' is %s", order.ID, order.ProductName, order.Status)))
}
