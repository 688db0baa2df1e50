package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending                  OrderStatus = "Pending"
	OrderReceived                 OrderStatus = "OrderReceived"
	OrderOnGoing                  OrderStatus = "OnGoing"
	OrderProcessing               OrderStatus = "Processing"
	OrderReadyToServe             OrderStatus = "ReadyToServe"
	OrderCompleted                OrderStatus = "Completed"
	OrderCancelled                OrderStatus = "Cancelled"
	OrderPaid                     OrderStatus = "Paid"
	OrderAwaitingDiscountApproval OrderStatus = "AwaitingDiscountApproval"
)

// DiscountStatus mirrors the discount flags as a single value so that exactly
// one outcome describes the order at a time.
type DiscountStatus string

const (
	DiscountNone     DiscountStatus = ""
	DiscountPending  DiscountStatus = "Pending"
	DiscountApproved DiscountStatus = "Approved"
	DiscountDenied   DiscountStatus = "Denied"
	DiscountSkipped  DiscountStatus = "Skipped"
)

// DiscountTypeSkipped tags an explicit customer opt-out.
const DiscountTypeSkipped = "Skipped"

var (
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrAlreadyAssigned    = errors.New("order is already assigned to an employee")
	ErrDiscountNotAllowed = errors.New("discount cannot be requested for this order")
	ErrInvalidPercentage  = errors.New("discount percentage must be greater than 0 and at most 100")
)

// TransitionError describes a rejected status change.
type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

var transitions = map[OrderStatus][]OrderStatus{
	OrderPending:                  {OrderReceived, OrderPaid, OrderCancelled, OrderAwaitingDiscountApproval},
	OrderPaid:                     {OrderReceived, OrderCancelled},
	OrderAwaitingDiscountApproval: {OrderPending, OrderCancelled},
	OrderReceived:                 {OrderOnGoing, OrderProcessing, OrderReadyToServe, OrderCancelled},
	OrderOnGoing:                  {OrderProcessing, OrderReadyToServe, OrderCancelled},
	OrderProcessing:               {OrderOnGoing, OrderReadyToServe, OrderCancelled},
	OrderReadyToServe:             {OrderCancelled},
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderReceived, OrderOnGoing, OrderProcessing, OrderReadyToServe,
		OrderCompleted, OrderCancelled, OrderPaid, OrderAwaitingDiscountApproval:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// CanComplete reports whether an order in status s may be completed.
// Completion is driven by the completion workflow, not by the table.
func (s OrderStatus) CanComplete() bool {
	return s.Valid() && !s.Terminal() && s != OrderAwaitingDiscountApproval
}

// CanTransition reports whether from -> to is allowed. Completed is checked
// through CanComplete.
func CanTransition(from, to OrderStatus) bool {
	if to == OrderCompleted {
		return from.CanComplete()
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is a customer order with a snapshot of the product it was placed for.
type Order struct {
	BaseModel
	UserID               string  `gorm:"type:varchar(255);not null;index" json:"user_id"`
	AssignedToEmployeeID *string `gorm:"type:varchar(255);index" json:"assigned_to_employee_id,omitempty"`

	ProductName             string          `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductImageURL         string          `gorm:"type:varchar(500)" json:"product_image_url"`
	ProductImageDescription string          `gorm:"type:varchar(500)" json:"product_image_description"`
	Price                   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity                int             `gorm:"not null;default:1" json:"quantity"`
	TotalPrice              decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`

	Status OrderStatus `gorm:"type:varchar(32);not null;default:'Pending';index" json:"status"`

	IsDiscountRequested bool            `gorm:"default:false" json:"is_discount_requested"`
	IsDiscountApproved  bool            `gorm:"default:false" json:"is_discount_approved"`
	DiscountStatus      DiscountStatus  `gorm:"type:varchar(16);not null;default:''" json:"discount_status"`
	DiscountType        string          `gorm:"type:varchar(50)" json:"discount_type,omitempty"`
	DiscountPercentage  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percentage"`
	DiscountAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount_amount"`
	OriginalTotalPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"original_total_price"`
	DiscountReviewerID  *string         `gorm:"type:varchar(255)" json:"discount_reviewer_id,omitempty"`

	Notes string `gorm:"type:varchar(500)" json:"notes"`
}

func (Order) TableName() string {
	return "orders"
}

// Subtotal is Price * Quantity, the total before any discount.
func (o *Order) Subtotal() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// TransitionTo moves the order to status when the table allows it.
func (o *Order) TransitionTo(status OrderStatus) error {
	if !CanTransition(o.Status, status) {
		return &TransitionError{From: o.Status, To: status}
	}
	o.Status = status
	return nil
}

// Assign hands an unassigned Pending or Paid order to an employee.
func (o *Order) Assign(employeeID string) error {
	if o.AssignedToEmployeeID != nil && *o.AssignedToEmployeeID != "" {
		return ErrAlreadyAssigned
	}
	if o.Status != OrderPending && o.Status != OrderPaid {
		return &TransitionError{From: o.Status, To: OrderReceived}
	}
	o.AssignedToEmployeeID = &employeeID
	o.Status = OrderReceived
	return nil
}

// RequestDiscount parks a Pending order until a manager reviews the discount.
// Requesting again while the review is pending only updates the type.
func (o *Order) RequestDiscount(discountType string) error {
	switch {
	case o.Status == OrderAwaitingDiscountApproval && o.IsDiscountRequested:
		o.DiscountType = discountType
		return nil
	case o.IsDiscountApproved:
		return ErrDiscountNotAllowed
	case o.Status != OrderPending:
		return ErrDiscountNotAllowed
	}

	o.IsDiscountRequested = true
	o.DiscountType = discountType
	o.DiscountStatus = DiscountPending
	o.OriginalTotalPrice = o.TotalPrice
	o.Status = OrderAwaitingDiscountApproval
	return nil
}

// ApproveDiscount applies percentage to the original total. It only acts on
// an order waiting for review; it returns false, leaving the order untouched,
// when no discount was requested or the discount was already approved.
func (o *Order) ApproveDiscount(approverID string, percentage decimal.Decimal) (bool, error) {
	if !o.IsDiscountRequested {
		return false, nil
	}
	if o.Status != OrderAwaitingDiscountApproval {
		if o.IsDiscountApproved {
			return false, nil
		}
		return false, ErrDiscountNotAllowed
	}
	if !percentage.IsPositive() || percentage.GreaterThan(decimal.NewFromInt(100)) {
		return false, ErrInvalidPercentage
	}

	if !o.OriginalTotalPrice.IsPositive() {
		o.OriginalTotalPrice = o.TotalPrice
	}

	o.IsDiscountApproved = true
	o.DiscountStatus = DiscountApproved
	o.DiscountReviewerID = &approverID
	o.DiscountPercentage = percentage
	o.DiscountAmount = o.OriginalTotalPrice.Mul(percentage).Div(decimal.NewFromInt(100)).RoundBank(2)
	o.TotalPrice = o.OriginalTotalPrice.Sub(o.DiscountAmount)
	o.Status = OrderPending
	return true, nil
}

// DenyDiscount records a manager's refusal and restores the undiscounted total.
func (o *Order) DenyDiscount(approverID string) error {
	if err := o.clearDiscount(); err != nil {
		return err
	}
	o.DiscountType = ""
	o.DiscountStatus = DiscountDenied
	o.DiscountReviewerID = &approverID
	return nil
}

// SkipDiscount records that the customer opted out of a discount.
func (o *Order) SkipDiscount() error {
	if err := o.clearDiscount(); err != nil {
		return err
	}
	o.DiscountType = DiscountTypeSkipped
	o.DiscountStatus = DiscountSkipped
	o.DiscountReviewerID = nil
	return nil
}

// clearDiscount is only valid before payment, while the order is Pending or
// waiting for review.
func (o *Order) clearDiscount() error {
	if o.Status != OrderPending && o.Status != OrderAwaitingDiscountApproval {
		return ErrDiscountNotAllowed
	}
	o.IsDiscountRequested = false
	o.IsDiscountApproved = false
	o.DiscountAmount = decimal.Zero
	o.DiscountPercentage = decimal.Zero
	if o.OriginalTotalPrice.IsPositive() {
		o.TotalPrice = o.OriginalTotalPrice
		o.OriginalTotalPrice = decimal.Zero
	}
	o.Status = OrderPending
	return nil
}
