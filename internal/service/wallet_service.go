package service

import (
	"context"
	"fmt"
	"strings"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/logger"
	"go-pos-ws/pkg/validator"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultWalletHistory = 10

type TopUpRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"decimal_gt0"`
	Description string          `json:"description" validate:"max=255"`
}

type WalletService interface {
	GetBalance(ctx context.Context, userID string) (*model.Wallet, error)
	TopUp(ctx context.Context, userID string, req TopUpRequest, actor string) (*model.WalletTransaction, error)
	// History returns the newest movements first. limit <= 0 uses the default.
	History(ctx context.Context, userID string, limit int) ([]model.WalletTransaction, error)

	// ChargeInTx debits the order total from its owner's wallet inside the
	// caller's transaction. It fails with ErrInsufficientFunds and leaves the
	// balance untouched when the wallet cannot cover it.
	ChargeInTx(ctx context.Context, tx *gorm.DB, order *model.Order, actor string) (*model.WalletTransaction, error)
	// RefundInTx returns whatever the wallet paid for the order and has not
	// refunded yet. It returns nil when there is nothing to give back.
	RefundInTx(ctx context.Context, tx *gorm.DB, order *model.Order, actor string) (*model.WalletTransaction, error)
	// Notify publishes committed movements.
	Notify(txs ...*model.WalletTransaction)
}

type walletService struct {
	db      *gorm.DB
	wallets repository.WalletRepository
	pub     Publisher
	log     *zap.Logger
}

func NewWalletService(db *gorm.DB, wallets repository.WalletRepository, pub Publisher, log *zap.Logger) WalletService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &walletService{
		db:      db,
		wallets: wallets,
		pub:     pub,
		log:     logger.OrNop(log).Named("wallet"),
	}
}

func (s *walletService) GetBalance(ctx context.Context, userID string) (*model.Wallet, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalid("user id is required")
	}
	return s.wallets.GetOrCreate(ctx, userID)
}

func (s *walletService) TopUp(ctx context.Context, userID string, req TopUpRequest, actor string) (*model.WalletTransaction, error) {
	if msg := validator.FirstError(req); msg != "" {
		return nil, invalid(msg)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, invalid("user id is required")
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "Wallet top-up"
	}

	var entry *model.WalletTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = s.move(ctx, tx, movement{
			userID:      userID,
			kind:        model.WalletTopUp,
			amount:      req.Amount,
			description: description,
			actor:       actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Notify(entry)
	return entry, nil
}

func (s *walletService) History(ctx context.Context, userID string, limit int) ([]model.WalletTransaction, error) {
	if limit <= 0 {
		limit = defaultWalletHistory
	}
	return s.wallets.FindTransactions(ctx, userID, limit)
}

func (s *walletService) ChargeInTx(ctx context.Context, tx *gorm.DB, order *model.Order, actor string) (*model.WalletTransaction, error) {
	if !order.TotalPrice.IsPositive() {
		return nil, nil
	}
	return s.move(ctx, tx, movement{
		userID:      order.UserID,
		kind:        model.WalletPayment,
		amount:      order.TotalPrice.Neg(),
		order:       order,
		description: fmt.Sprintf("Payment for %d x %s", order.Quantity, order.ProductName),
		actor:       actor,
	})
}

func (s *walletService) RefundInTx(ctx context.Context, tx *gorm.DB, order *model.Order, actor string) (*model.WalletTransaction, error) {
	entries, err := s.wallets.WithTx(tx).FindByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load order payments: %w", err)
	}
	// Payments are negative, refunds positive: what is still owed is the
	// negated sum.
	owed := decimal.Zero
	for _, e := range entries {
		owed = owed.Sub(e.Amount)
	}
	if !owed.IsPositive() {
		return nil, nil
	}
	return s.move(ctx, tx, movement{
		userID:      order.UserID,
		kind:        model.WalletRefund,
		amount:      owed,
		order:       order,
		description: fmt.Sprintf("Refund for cancelled order %s", order.ID),
		actor:       actor,
	})
}

func (s *walletService) Notify(txs ...*model.WalletTransaction) {
	for _, t := range txs {
		if t == nil {
			continue
		}
		s.log.Info("wallet updated",
			zap.String("user_id", t.UserID),
			zap.String("type", string(t.Type)),
			zap.String("amount", t.Amount.String()),
			zap.String("balance", t.NewBalance.String()))
		s.pub.Publish(newEvent(EventWallet, strings.ToLower(string(t.Type)), t,
			fmt.Sprintf("Wallet balance is now %s", t.NewBalance.StringFixed(2))))
	}
}

type movement struct {
	userID      string
	kind        model.WalletTransactionType
	amount      decimal.Decimal
	order       *model.Order
	description string
	actor       string
}

// move applies one signed balance change and records it in the ledger.
func (s *walletService) move(ctx context.Context, tx *gorm.DB, m movement) (*model.WalletTransaction, error) {
	if m.actor == "" {
		m.actor = model.SystemActor
	}
	wallets := s.wallets.WithTx(tx)
	if _, err := wallets.GetOrCreate(ctx, m.userID); err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}

	ok, err := wallets.AddBalance(ctx, m.userID, m.amount, m.actor)
	if err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}
	if !ok {
		return nil, ErrInsufficientFunds
	}
	wallet, err := wallets.GetOrCreate(ctx, m.userID)
	if err != nil {
		return nil, fmt.Errorf("reload wallet: %w", err)
	}

	entry := &model.WalletTransaction{
		UserID:          m.userID,
		Type:            m.kind,
		Amount:          m.amount,
		PreviousBalance: wallet.Balance.Sub(m.amount),
		NewBalance:      wallet.Balance,
		Description:     m.description,
		CreatedBy:       m.actor,
	}
	if m.order != nil {
		id := m.order.ID
		entry.OrderID = &id
	}
	if err := wallets.CreateTransaction(ctx, entry); err != nil {
		return nil, fmt.Errorf("record wallet transaction: %w", err)
	}
	return entry, nil
}
