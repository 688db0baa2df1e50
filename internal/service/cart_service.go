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

// maxLineQuantity matches the per-order quantity limit.
const maxLineQuantity = 1000

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1,lte=1000"`
}

type CheckoutRequest struct {
	Notes         string `json:"notes" validate:"max=500"`
	PayWithWallet bool   `json:"pay_with_wallet"`
}

type CartSummary struct {
	Items    int             `json:"items"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

type CheckoutResult struct {
	Orders   []*model.Order             `json:"orders"`
	Total    decimal.Decimal            `json:"total"`
	Payments []*model.WalletTransaction `json:"payments,omitempty"`
}

type CartService interface {
	ListItems(ctx context.Context, userID string) ([]model.CartItem, error)
	Summary(ctx context.Context, userID string) (*CartSummary, error)
	// AddItem adds a product to the cart. Adding a product that is already
	// there raises the quantity of the existing line.
	AddItem(ctx context.Context, userID string, req AddToCartRequest) (*model.CartItem, error)
	UpdateItem(ctx context.Context, userID string, itemID uuid.UUID, quantity int) (*model.CartItem, error)
	RemoveItem(ctx context.Context, userID string, itemID uuid.UUID) error
	// Clear empties the cart. It reports false when there was nothing to remove.
	Clear(ctx context.Context, userID string) (bool, error)
	// Checkout turns every line into an order at current catalog prices and
	// empties the cart, all in one transaction.
	Checkout(ctx context.Context, userID string, req CheckoutRequest) (*CheckoutResult, error)
}

type cartService struct {
	db       *gorm.DB
	carts    repository.CartRepository
	products repository.ProductRepository
	orders   OrderService
	wallet   WalletService
	log      *zap.Logger
}

func NewCartService(
	db *gorm.DB,
	carts repository.CartRepository,
	products repository.ProductRepository,
	orders OrderService,
	wallet WalletService,
	log *zap.Logger,
) CartService {
	return &cartService{
		db:       db,
		carts:    carts,
		products: products,
		orders:   orders,
		wallet:   wallet,
		log:      logger.OrNop(log).Named("cart"),
	}
}

func (s *cartService) ListItems(ctx context.Context, userID string) ([]model.CartItem, error) {
	return s.carts.FindByUser(ctx, userID)
}

func (s *cartService) Summary(ctx context.Context, userID string) (*CartSummary, error) {
	items, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum := &CartSummary{Items: len(items), Total: decimal.Zero}
	for i := range items {
		sum.Quantity += items[i].Quantity
		sum.Total = sum.Total.Add(items[i].LineTotal())
	}
	return sum, nil
}

func (s *cartService) AddItem(ctx context.Context, userID string, req AddToCartRequest) (*model.CartItem, error) {
	if msg := validator.FirstError(req); msg != "" {
		return nil, invalid(msg)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, invalid("user id is required")
	}

	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	if !product.IsAvailable {
		return nil, invalid(fmt.Sprintf("product '%s' is not available", product.Name))
	}

	existing, err := s.carts.FindByProduct(ctx, userID, product.ID)
	switch {
	case err == nil:
		if existing.Quantity+req.Quantity > maxLineQuantity {
			return nil, invalid(fmt.Sprintf("quantity for '%s' cannot exceed %d", product.Name, maxLineQuantity))
		}
		existing.Quantity += req.Quantity
		existing.UpdatedBy = userID
		if err := s.carts.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("update cart item: %w", err)
		}
		return existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("load cart item: %w", err)
	}

	description := product.ImageDescription
	if description == "" {
		description = product.Name
	}
	item := &model.CartItem{
		UserID:                  userID,
		ProductID:               product.ID,
		ProductName:             product.Name,
		ProductImageURL:         product.ImageURL,
		ProductImageDescription: description,
		Price:                   product.Price,
		Quantity:                req.Quantity,
	}
	item.CreatedBy = userID
	item.UpdatedBy = userID
	if err := s.carts.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create cart item: %w", err)
	}
	return item, nil
}

func (s *cartService) UpdateItem(ctx context.Context, userID string, itemID uuid.UUID, quantity int) (*model.CartItem, error) {
	if quantity < 1 || quantity > maxLineQuantity {
		return nil, invalid(fmt.Sprintf("quantity must be between 1 and %d", maxLineQuantity))
	}
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	item.Quantity = quantity
	item.UpdatedBy = userID
	if err := s.carts.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return item, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID string, itemID uuid.UUID) error {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	return s.carts.Delete(ctx, item.ID)
}

func (s *cartService) Clear(ctx context.Context, userID string) (bool, error) {
	n, err := s.carts.ClearByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *cartService) Checkout(ctx context.Context, userID string, req CheckoutRequest) (*CheckoutResult, error) {
	if msg := validator.FirstError(req); msg != "" {
		return nil, invalid(msg)
	}
	if req.PayWithWallet && s.wallet == nil {
		return nil, ErrWalletUnavailable
	}

	result := &CheckoutResult{Total: decimal.Zero}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		items, err := carts.FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrCartEmpty
		}

		for _, item := range items {
			order, err := s.orders.PlaceOrderInTx(ctx, tx, PlaceOrderRequest{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Notes:     req.Notes,
			}, userID)
			if err != nil {
				return fmt.Errorf("%s: %w", item.ProductName, err)
			}
			if req.PayWithWallet {
				charge, err := s.orders.PayInTx(ctx, tx, order, userID)
				if err != nil {
					return err
				}
				if charge != nil {
					result.Payments = append(result.Payments, charge)
				}
			}
			result.Orders = append(result.Orders, order)
			result.Total = result.Total.Add(order.TotalPrice)
		}

		_, err = carts.ClearByUser(ctx, userID)
		return err
	})
	if err != nil {
		s.log.Warn("checkout failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.log.Info("checkout completed",
		zap.String("user_id", userID),
		zap.Int("orders", len(result.Orders)),
		zap.String("total", result.Total.String()),
		zap.Bool("wallet", req.PayWithWallet))
	s.orders.PublishOrders("order_created", result.Orders...)
	if s.wallet != nil {
		s.wallet.Notify(result.Payments...)
	}
	return result, nil
}

func (s *cartService) ownedItem(ctx context.Context, userID string, itemID uuid.UUID) (*model.CartItem, error) {
	item, err := s.carts.FindByID(ctx, itemID)
	if err != nil {
		return nil, notFound(err, ErrCartItemNotFound)
	}
	if item.UserID != userID {
		return nil, ErrCartItemNotFound
	}
	return item, nil
}
