package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/logger"
	"go-pos-ws/pkg/unit"
	"go-pos-ws/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FailureCode explains why an ingredient could not be deducted.
type FailureCode string

const (
	FailureResolution        FailureCode = "resolution_failed"
	FailureConversion        FailureCode = "conversion_failed"
	FailureInsufficientStock FailureCode = "insufficient_stock"
	// FailureBelowPrecision: the converted amount rounds to zero in the stock unit.
	FailureBelowPrecision    FailureCode = "below_precision"
)

const defaultDeductReason = "Order"

// stockScale matches the decimal(12,3) quantity columns.
const stockScale = 3

type DeductRequest struct {
	IngredientName string
	// StockID pins the deduction to a stock record and skips name matching.
	StockID  *uuid.UUID
	Quantity decimal.Decimal
	Unit     string
	Reason   string
	Actor    string
}

// DeductResult describes one deduction. Business failures are reported through
// Failure; only storage problems surface as errors.
type DeductResult struct {
	IngredientName string          `json:"ingredient_name"`
	Requested      decimal.Decimal `json:"requested"`
	RequestedUnit  string          `json:"requested_unit"`
	Deducted       bool            `json:"deducted"`
	Failure        FailureCode     `json:"failure,omitempty"`
	StockID        uuid.UUID       `json:"stock_id,omitempty"`
	StockName      string          `json:"stock_name,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit,omitempty"`
	Available      decimal.Decimal `json:"available"`
	Remaining      decimal.Decimal `json:"remaining"`
	LowStock       bool            `json:"low_stock"`
	Similar        []string        `json:"similar,omitempty"`

	events []Event
}

// LowStockAlert is published when a stock falls to or below its threshold.
type LowStockAlert struct {
	StockID   uuid.UUID       `json:"stock_id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Threshold decimal.Decimal `json:"threshold"`
	Shortfall decimal.Decimal `json:"shortfall"`
	Unit      string          `json:"unit"`
	At        time.Time       `json:"at"`
}

func newLowStockAlert(s *model.Stock) LowStockAlert {
	return LowStockAlert{
		StockID:   s.ID,
		Name:      s.Name,
		Quantity:  s.Quantity,
		Threshold: s.Threshold,
		Shortfall: decimal.Max(s.Threshold.Sub(s.Quantity), decimal.Zero),
		Unit:      s.Unit,
		At:        time.Now(),
	}
}

type StockService interface {
	CreateStock(ctx context.Context, req *model.Stock, actor string) error
	UpdateStock(ctx context.Context, id uuid.UUID, req *model.Stock, reason, actor string) (*model.Stock, error)
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta decimal.Decimal, reason, actor string) (*model.Stock, error)
	DeleteStock(ctx context.Context, id uuid.UUID, actor string) error

	GetStock(ctx context.Context, id uuid.UUID) (*model.Stock, error)
	ListStocks(ctx context.Context, category string) ([]model.Stock, error)
	ListLowStock(ctx context.Context) ([]model.Stock, error)
	ListHistory(ctx context.Context, stockID uuid.UUID) ([]model.StockHistory, error)
	ResolveStock(ctx context.Context, name string) (*model.Stock, error)
	FindSimilarStocks(ctx context.Context, name string) ([]model.Stock, error)

	DeductIngredient(ctx context.Context, req DeductRequest) (DeductResult, error)
	// DeductInTx runs a deduction inside the caller's transaction. Events
	// are held on the result until the caller commits.
	DeductInTx(ctx context.Context, tx *gorm.DB, req DeductRequest) (DeductResult, error)
	// Flush publishes the events held by committed deduction results.
	Flush(results ...DeductResult)
}

type stockService struct {
	db      *gorm.DB
	stocks  repository.StockRepository
	history repository.StockHistoryRepository
	pub     Publisher
	log     *zap.Logger
}

func NewStockService(db *gorm.DB, stocks repository.StockRepository, history repository.StockHistoryRepository, pub Publisher, log *zap.Logger) StockService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &stockService{
		db:      db,
		stocks:  stocks,
		history: history,
		pub:     pub,
		log:     logger.OrNop(log).Named("stock"),
	}
}

func (s *stockService) CreateStock(ctx context.Context, req *model.Stock, actor string) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)
	if msg := validator.FirstError(req); msg != "" {
		return invalid(msg)
	}

	req.ID = uuid.Nil
	req.CreatedBy = actor
	req.UpdatedBy = actor

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.stocks.WithTx(tx).Create(ctx, req); err != nil {
			return fmt.Errorf("create stock: %w", err)
		}
		entry := &model.StockHistory{
			StockID:          req.ID,
			PreviousQuantity: decimal.Zero,
			NewQuantity:      req.Quantity,
			Reason:           model.ReasonInitialStock,
			ChangedBy:        actor,
			Notes:            "Initial stock created",
		}
		if err := s.history.WithTx(tx).Create(ctx, entry); err != nil {
			return fmt.Errorf("record stock history: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("stock created", zap.String("stock_id", req.ID.String()), zap.String("name", req.Name), zap.String("actor", actor))
	s.pub.Publish(newEvent(EventStockUpdate, "stock_created", req, fmt.Sprintf("%s created stock '%s'", actor, req.Name)))
	return nil
}

func (s *stockService) UpdateStock(ctx context.Context, id uuid.UUID, req *model.Stock, reason, actor string) (*model.Stock, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)
	if msg := validator.FirstError(req); msg != "" {
		return nil, invalid(msg)
	}
	if reason == "" {
		reason = model.ReasonManualUpdate
	}

	var updated *model.Stock
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stocks := s.stocks.WithTx(tx)
		existing, err := stocks.FindByID(ctx, id)
		if err != nil {
			return notFound(err, ErrStockNotFound)
		}

		previous := existing.Quantity
		existing.Name = req.Name
		existing.Category = req.Category
		existing.Quantity = req.Quantity
		existing.Unit = req.Unit
		existing.Threshold = req.Threshold
		existing.Notes = req.Notes
		existing.UpdatedBy = actor

		if err := stocks.Update(ctx, existing); err != nil {
			return fmt.Errorf("update stock: %w", err)
		}
		entry := &model.StockHistory{
			StockID:          existing.ID,
			PreviousQuantity: previous,
			NewQuantity:      existing.Quantity,
			Reason:           reason,
			ChangedBy:        actor,
			Notes:            req.Notes,
		}
		if err := s.history.WithTx(tx).Create(ctx, entry); err != nil {
			return fmt.Errorf("record stock history: %w", err)
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishStock(updated, "stock_updated", actor)
	return updated, nil
}

// AdjustQuantity adds delta (negative to remove) and records the change. The
// quantity never drops below zero.
func (s *stockService) AdjustQuantity(ctx context.Context, id uuid.UUID, delta decimal.Decimal, reason, actor string) (*model.Stock, error) {
	if delta.IsZero() {
		return nil, invalid("adjustment must not be zero")
	}
	if reason == "" {
		reason = model.ReasonAdjustment
	}

	var updated *model.Stock
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stocks := s.stocks.WithTx(tx)
		if _, err := stocks.FindByID(ctx, id); err != nil {
			return notFound(err, ErrStockNotFound)
		}
		ok, err := stocks.AddQuantity(ctx, id, delta, actor, "Last updated due to "+reason)
		if err != nil {
			return fmt.Errorf("adjust stock: %w", err)
		}
		if !ok {
			return invalid("adjustment would make the quantity negative")
		}
		current, err := stocks.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("reload stock: %w", err)
		}
		entry := &model.StockHistory{
			StockID:          id,
			PreviousQuantity: current.Quantity.Sub(delta),
			NewQuantity:      current.Quantity,
			Reason:           reason,
			ChangedBy:        actor,
		}
		if err := s.history.WithTx(tx).Create(ctx, entry); err != nil {
			return fmt.Errorf("record stock history: %w", err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishStock(updated, "stock_adjusted", actor)
	return updated, nil
}

func (s *stockService) DeleteStock(ctx context.Context, id uuid.UUID, actor string) error {
	if _, err := s.stocks.FindByID(ctx, id); err != nil {
		return notFound(err, ErrStockNotFound)
	}
	count, err := s.history.CountByStock(ctx, id)
	if err != nil {
		return fmt.Errorf("count stock history: %w", err)
	}
	if count > 0 {
		return ErrStockHasHistory
	}
	if err := s.stocks.Delete(ctx, id, actor); err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}

	s.log.Info("stock deleted", zap.String("stock_id", id.String()), zap.String("actor", actor))
	s.pub.Publish(newEvent(EventStockUpdate, "stock_deleted", map[string]any{"id": id}, ""))
	return nil
}

func (s *stockService) GetStock(ctx context.Context, id uuid.UUID) (*model.Stock, error) {
	stock, err := s.stocks.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrStockNotFound)
	}
	return stock, nil
}

func (s *stockService) ListStocks(ctx context.Context, category string) ([]model.Stock, error) {
	return s.stocks.FindAll(ctx, category)
}

func (s *stockService) ListLowStock(ctx context.Context) ([]model.Stock, error) {
	return s.stocks.FindLow(ctx)
}

func (s *stockService) ListHistory(ctx context.Context, stockID uuid.UUID) ([]model.StockHistory, error) {
	return s.history.FindByStock(ctx, stockID)
}

func (s *stockService) ResolveStock(ctx context.Context, name string) (*model.Stock, error) {
	candidates, err := s.stocks.FindAll(ctx, "")
	if err != nil {
		return nil, err
	}
	return ResolveStock(name, candidates), nil
}

func (s *stockService) FindSimilarStocks(ctx context.Context, name string) ([]model.Stock, error) {
	candidates, err := s.stocks.FindAll(ctx, "")
	if err != nil {
		return nil, err
	}
	return FindSimilarStocks(name, candidates), nil
}

func (s *stockService) DeductIngredient(ctx context.Context, req DeductRequest) (DeductResult, error) {
	var res DeductResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = s.DeductInTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return DeductResult{}, err
	}
	s.Flush(res)
	return res, nil
}

func (s *stockService) DeductInTx(ctx context.Context, tx *gorm.DB, req DeductRequest) (DeductResult, error) {
	res := DeductResult{
		IngredientName: req.IngredientName,
		Requested:      req.Quantity,
		RequestedUnit:  req.Unit,
	}
	if !req.Quantity.IsPositive() {
		return res, invalid(fmt.Sprintf("deduction of %q must be greater than 0", req.IngredientName))
	}
	reason := req.Reason
	if reason == "" {
		reason = defaultDeductReason
	}
	actor := req.Actor
	if actor == "" {
		actor = model.SystemActor
	}

	stocks := s.stocks.WithTx(tx)
	log := s.log.With(zap.String("ingredient", req.IngredientName), zap.String("reason", reason))

	stock, candidates, err := s.resolveForDeduction(ctx, stocks, req)
	if err != nil {
		return res, err
	}
	if stock == nil {
		res.Failure = FailureResolution
		res.Similar = stockNames(FindSimilarStocks(req.IngredientName, candidates))
		log.Warn("no stock matches ingredient", zap.Strings("similar", res.Similar))
		return res, nil
	}
	res.StockID = stock.ID
	res.StockName = stock.Name
	res.Unit = stock.Unit
	res.Available = stock.Quantity

	converted, ok := unit.Convert(req.Quantity, req.Unit, stock.Unit)
	if !ok {
		res.Failure = FailureConversion
		log.Warn("unit conversion failed",
			zap.String("from", req.Unit),
			zap.String("to", stock.Unit),
			zap.String("stock", stock.Name))
		return res, nil
	}
	converted = converted.Round(stockScale)
	res.Quantity = converted
	if !converted.IsPositive() {
		res.Failure = FailureBelowPrecision
		log.Warn("converted quantity rounds to zero, nothing deducted",
			zap.String("requested", req.Quantity.String()+" "+req.Unit),
			zap.String("stock", stock.Name),
			zap.String("unit", stock.Unit))
		return res, nil
	}
	wasConverted := unit.Normalize(req.Unit) != unit.Normalize(stock.Unit)

	applied, err := stocks.AddQuantity(ctx, stock.ID, converted.Neg(), actor, "Last updated due to "+reason)
	if err != nil {
		return res, fmt.Errorf("deduct stock %s: %w", stock.Name, err)
	}
	if !applied {
		res.Failure = FailureInsufficientStock
		log.Warn("not enough stock",
			zap.String("stock", stock.Name),
			zap.String("available", stock.Quantity.String()),
			zap.String("requested", converted.String()),
			zap.String("unit", stock.Unit))
		return res, nil
	}

	current, err := stocks.FindByID(ctx, stock.ID)
	if err != nil {
		return res, fmt.Errorf("reload stock %s: %w", stock.Name, err)
	}

	notes := "Automatic deduction due to " + reason
	if wasConverted {
		notes += fmt.Sprintf(" (Converted from %s %s)", req.Quantity.String(), req.Unit)
	}
	entry := &model.StockHistory{
		StockID:          current.ID,
		PreviousQuantity: current.Quantity.Add(converted),
		NewQuantity:      current.Quantity,
		Reason:           reason,
		ChangedBy:        actor,
		Notes:            notes,
	}
	if err := s.history.WithTx(tx).Create(ctx, entry); err != nil {
		return res, fmt.Errorf("record stock history for %s: %w", stock.Name, err)
	}

	res.Deducted = true
	res.Available = entry.PreviousQuantity
	res.Remaining = current.Quantity
	res.events = append(res.events, newEvent(EventStockUpdate, "stock_deducted", current,
		fmt.Sprintf("%s %s of '%s' used: %s", converted.String(), current.Unit, current.Name, reason)))
	if current.IsLow() {
		res.LowStock = true
		res.events = append(res.events, newEvent(EventLowStock, "low_stock", newLowStockAlert(current),
			fmt.Sprintf("'%s' is low: %s %s remaining", current.Name, current.Quantity.String(), current.Unit)))
	}

	log.Info("stock deducted",
		zap.String("stock", current.Name),
		zap.String("quantity", converted.String()),
		zap.String("remaining", current.Quantity.String()))
	return res, nil
}

func (s *stockService) Flush(results ...DeductResult) {
	for _, res := range results {
		if res.LowStock {
			s.log.Warn("low stock",
				zap.String("stock_id", res.StockID.String()),
				zap.String("stock", res.StockName),
				zap.String("remaining", res.Remaining.String()),
				zap.String("unit", res.Unit))
		}
		for _, e := range res.events {
			s.pub.Publish(e)
		}
	}
}

// resolveForDeduction follows an explicit stock link first and falls back to
// name matching when the link is missing or dangling.
func (s *stockService) resolveForDeduction(ctx context.Context, stocks repository.StockRepository, req DeductRequest) (*model.Stock, []model.Stock, error) {
	if req.StockID != nil && *req.StockID != uuid.Nil {
		linked, err := stocks.FindByID(ctx, *req.StockID)
		switch {
		case err == nil:
			return linked, nil, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, nil, fmt.Errorf("load linked stock: %w", err)
		}
		s.log.Warn("linked stock not found, matching by name",
			zap.String("ingredient", req.IngredientName),
			zap.String("stock_id", req.StockID.String()))
	}

	candidates, err := stocks.FindAll(ctx, "")
	if err != nil {
		return nil, nil, fmt.Errorf("list stocks: %w", err)
	}
	return ResolveStock(req.IngredientName, candidates), candidates, nil
}

func (s *stockService) publishStock(stock *model.Stock, action, actor string) {
	s.log.Info("stock changed",
		zap.String("action", action),
		zap.String("stock_id", stock.ID.String()),
		zap.String("quantity", stock.Quantity.String()),
		zap.String("actor", actor))
	s.pub.Publish(newEvent(EventStockUpdate, action, stock, fmt.Sprintf("%s updated stock '%s'", actor, stock.Name)))
	if stock.IsLow() {
		s.log.Warn("low stock", zap.String("stock_id", stock.ID.String()), zap.String("stock", stock.Name))
		s.pub.Publish(newEvent(EventLowStock, "low_stock", newLowStockAlert(stock), ""))
	}
}

// notFound maps gorm.ErrRecordNotFound onto sentinel and wraps anything else.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", sentinel.Error(), err)
}
