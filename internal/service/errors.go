package service

import (
	"errors"

	"go-pos-ws/internal/model"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrStockNotFound      = errors.New("stock not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrStockHasHistory    = errors.New("stock has history records and cannot be deleted")
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateName      = errors.New("name already exists")
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrInsufficientFunds  = errors.New("insufficient wallet balance")
	ErrWalletUnavailable  = errors.New("wallet payments are not enabled")

	ErrInvalidTransition  = model.ErrInvalidTransition
	ErrAlreadyAssigned    = model.ErrAlreadyAssigned
	ErrDiscountNotAllowed = model.ErrDiscountNotAllowed
	ErrInvalidPercentage  = model.ErrInvalidPercentage
)

// ValidationError carries the first failed field of a request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}
