package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role codes as constants
const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleEmployee = "EMPLOYEE"
	RoleCustomer = "CUSTOMER"
)

// Privilege codes checked by the HTTP middleware.
const (
	PrivStockView       = "stock:view"
	PrivStockManage     = "stock:manage"
	PrivProductManage   = "product:manage"
	PrivOrderCreate     = "order:create"
	PrivOrderView       = "order:view"
	PrivOrderFulfill    = "order:fulfill"
	PrivDiscountRequest = "discount:request"
	PrivDiscountReview  = "discount:review"
	PrivDashboardView   = "dashboard:view"
	PrivUserManage      = "user:manage"
	PrivWalletTopUp     = "wallet:topup"
)

var rolePrivileges = map[string][]string{
	RoleAdmin: {
		PrivStockView, PrivStockManage, PrivProductManage, PrivOrderCreate, PrivOrderView,
		PrivOrderFulfill, PrivDiscountRequest, PrivDiscountReview, PrivDashboardView, PrivUserManage, PrivWalletTopUp,
	},
	RoleManager: {
		PrivStockView, PrivStockManage, PrivProductManage, PrivOrderView, PrivOrderFulfill,
		PrivDiscountRequest, PrivDiscountReview, PrivDashboardView, PrivWalletTopUp,
	},
	RoleEmployee: {PrivStockView, PrivOrderView, PrivOrderFulfill, PrivDiscountRequest, PrivWalletTopUp},
	RoleCustomer: {PrivOrderCreate, PrivDiscountRequest},
}

// PrivilegesFor returns the privilege codes granted to a role.
func PrivilegesFor(role string) []string {
	return append([]string(nil), rolePrivileges[role]...)
}

// ValidRole reports whether role is one of the known role codes.
func ValidRole(role string) bool {
	_, ok := rolePrivileges[role]
	return ok
}

// User represents an authenticated user in the system
type User struct {
	BaseModel
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email_active,where:deleted_at IS NULL" json:"email" validate:"required,email"`
	Password     string     `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string     `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	Role         string     `gorm:"type:varchar(20);not null;default:'CUSTOMER'" json:"role" validate:"required,oneof=ADMIN MANAGER EMPLOYEE CUSTOMER"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	TokenVersion string     `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// Privileges returns the privilege codes of the user's role.
func (u *User) Privileges() []string {
	return PrivilegesFor(u.Role)
}

// HasPrivilege checks if the user has a specific privilege
func (u *User) HasPrivilege(code string) bool {
	for _, p := range rolePrivileges[u.Role] {
		if p == code {
			return true
		}
	}
	return false
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	Role       string     `json:"role"`
	IsActive   bool       `json:"is_active"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
	Privileges []string   `json:"privileges"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		IsActive:   u.IsActive,
		LastSeenAt: u.LastSeenAt,
		Privileges: u.Privileges(),
	}
}
