package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/logger"
	"go-pos-ws/pkg/unit"
	"go-pos-ws/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IngredientMatch shows which stock an ingredient deducts from, and what
// else looks like it, so an admin can pin the link.
type IngredientMatch struct {
	Ingredient model.Ingredient `json:"ingredient"`
	Resolved   *model.Stock     `json:"resolved,omitempty"`
	Similar    []model.Stock    `json:"similar"`
}

type ProductService interface {
	CreateProduct(ctx context.Context, req *model.Product, actor string) error
	UpdateProduct(ctx context.Context, id uuid.UUID, req *model.Product, actor string) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, actor string) error
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context, onlyAvailable bool) ([]model.Product, error)
	FindByNameWithIngredients(ctx context.Context, name string) (*model.Product, error)

	// MatchIngredients reports, per ingredient, the stock a deduction would hit.
	MatchIngredients(ctx context.Context, productID uuid.UUID) ([]IngredientMatch, error)
	LinkIngredientStock(ctx context.Context, ingredientID uuid.UUID, stockID *uuid.UUID, actor string) error
}

type productService struct {
	products repository.ProductRepository
	stocks   repository.StockRepository
	pub      Publisher
	log      *zap.Logger
}

func NewProductService(products repository.ProductRepository, stocks repository.StockRepository, pub Publisher, log *zap.Logger) ProductService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &productService{
		products: products,
		stocks:   stocks,
		pub:      pub,
		log:      logger.OrNop(log).Named("product"),
	}
}

func (s *productService) prepare(req *model.Product) error {
	req.Name = strings.TrimSpace(req.Name)
	for i := range req.Ingredients {
		req.Ingredients[i].Name = strings.TrimSpace(req.Ingredients[i].Name)
		req.Ingredients[i].Unit = strings.TrimSpace(req.Ingredients[i].Unit)
	}
	if msg := validator.FirstError(req); msg != "" {
		return invalid(msg)
	}
	for _, ing := range req.Ingredients {
		if !unit.Known(ing.Unit) {
			s.log.Warn("ingredient unit has no conversions",
				zap.String("product", req.Name),
				zap.String("ingredient", ing.Name),
				zap.String("unit", ing.Unit))
		}
	}
	return nil
}

func (s *productService) CreateProduct(ctx context.Context, req *model.Product, actor string) error {
	if err := s.prepare(req); err != nil {
		return err
	}
	if err := s.ensureUniqueName(ctx, req.Name, uuid.Nil); err != nil {
		return err
	}

	req.ID = uuid.Nil
	req.CreatedBy = actor
	req.UpdatedBy = actor
	for i := range req.Ingredients {
		req.Ingredients[i].ID = uuid.Nil
		req.Ingredients[i].CreatedBy = actor
		req.Ingredients[i].UpdatedBy = actor
	}

	if err := s.products.Create(ctx, req); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	s.log.Info("product created", zap.String("product_id", req.ID.String()), zap.String("name", req.Name))
	s.pub.Publish(newEvent(EventStockUpdate, "product_created", req, fmt.Sprintf("%s created product '%s'", actor, req.Name)))
	return nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *model.Product, actor string) (*model.Product, error) {
	if err := s.prepare(req); err != nil {
		return nil, err
	}
	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	if err := s.ensureUniqueName(ctx, req.Name, id); err != nil {
		return nil, err
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Category = req.Category
	existing.ImageURL = req.ImageURL
	existing.ImageDescription = req.ImageDescription
	existing.Price = req.Price
	existing.IsAvailable = req.IsAvailable
	existing.Ingredients = req.Ingredients
	existing.UpdatedBy = actor

	if err := s.products.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.log.Info("product updated", zap.String("product_id", id.String()), zap.Int("ingredients", len(existing.Ingredients)))
	s.pub.Publish(newEvent(EventStockUpdate, "product_updated", existing, fmt.Sprintf("%s updated product '%s'", actor, existing.Name)))
	return existing, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID, actor string) error {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return notFound(err, ErrProductNotFound)
	}
	if err := s.products.Delete(ctx, id, actor); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.log.Info("product deleted", zap.String("product_id", id.String()), zap.String("actor", actor))
	return nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, onlyAvailable bool) ([]model.Product, error) {
	return s.products.FindAll(ctx, onlyAvailable)
}

func (s *productService) FindByNameWithIngredients(ctx context.Context, name string) (*model.Product, error) {
	product, err := s.products.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return product, nil
}

func (s *productService) MatchIngredients(ctx context.Context, productID uuid.UUID) ([]IngredientMatch, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	stocks, err := s.stocks.FindAll(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}

	matches := make([]IngredientMatch, 0, len(product.Ingredients))
	for _, ing := range product.Ingredients {
		m := IngredientMatch{Ingredient: ing, Similar: FindSimilarStocks(ing.Name, stocks)}
		if ing.StockID != nil {
			for i := range stocks {
				if stocks[i].ID == *ing.StockID {
					m.Resolved = &stocks[i]
					break
				}
			}
		}
		if m.Resolved == nil {
			m.Resolved = ResolveStock(ing.Name, stocks)
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// LinkIngredientStock pins an ingredient to a stock, or clears the pin when
// stockID is nil.
func (s *productService) LinkIngredientStock(ctx context.Context, ingredientID uuid.UUID, stockID *uuid.UUID, actor string) error {
	if stockID != nil {
		if _, err := s.stocks.FindByID(ctx, *stockID); err != nil {
			return notFound(err, ErrStockNotFound)
		}
	}
	if err := s.products.LinkIngredientStock(ctx, ingredientID, stockID, actor); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrIngredientNotFound
		}
		return fmt.Errorf("link ingredient: %w", err)
	}
	return nil
}

func (s *productService) ensureUniqueName(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.products.FindByName(ctx, name)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("lookup product: %w", err)
	case existing.ID != self:
		return ErrDuplicateName
	}
	return nil
}
