package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the order lifecycle states
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions is the full transition table. completed and cancelled
// are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted},
	OrderStatusCompleted:  {},
	OrderStatusCancelled:  {},
}

// Valid reports whether the status is one of the enumerated values
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether the transition s -> next is legal
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in this status may still be cancelled
func (s OrderStatus) Cancellable() bool {
	return s.CanTransitionTo(OrderStatusCancelled)
}

// Active reports whether an order in this status holds its car reserved.
// Only cancellation releases the car; completed orders keep it reserved.
func (s OrderStatus) Active() bool {
	return s.Valid() && s != OrderStatusCancelled
}

// PaymentMethod enumerates the accepted payment methods
type PaymentMethod string

const (
	PaymentCashApp   PaymentMethod = "Cash App"
	PaymentChime     PaymentMethod = "Chime"
	PaymentZelle     PaymentMethod = "Zelle"
	PaymentApplePay  PaymentMethod = "Apple Pay"
	PaymentPayPal    PaymentMethod = "PayPal"
	PaymentVaro      PaymentMethod = "Varo"
	PaymentGiftCards PaymentMethod = "Gift Cards"
)

// PaymentMethods lists every accepted payment method
var PaymentMethods = []PaymentMethod{
	PaymentCashApp,
	PaymentChime,
	PaymentZelle,
	PaymentApplePay,
	PaymentPayPal,
	PaymentVaro,
	PaymentGiftCards,
}

// Valid reports whether the payment method is one of the enumerated values
func (p PaymentMethod) Valid() bool {
	for _, m := range PaymentMethods {
		if p == m {
			return true
		}
	}
	return false
}

// CustomerInfo field bounds
const (
	MaxCustomerNameLength    = 100
	MaxCustomerAddressLength = 200
	MaxOrderNotesLength      = 1000
)

var (
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s()-]+$`)
)

// ValidEmail reports whether s looks like an email address
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidPhone reports whether s looks like a phone number
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// CustomerInfo is the contact information embedded in an order
type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Validate checks presence, format and length of every customer field
func (ci CustomerInfo) Validate() error {
	verr := &ValidationError{}

	name := strings.TrimSpace(ci.Name)
	if name == "" {
		verr.Add("customer_info.name", "name is required")
	} else if len(name) > MaxCustomerNameLength {
		verr.Add("customer_info.name", "name cannot exceed 100 characters")
	}

	email := strings.TrimSpace(ci.Email)
	if email == "" {
		verr.Add("customer_info.email", "email is required")
	} else if !emailPattern.MatchString(email) {
		verr.Add("customer_info.email", "please enter a valid email address")
	}

	phone := strings.TrimSpace(ci.Phone)
	if phone == "" {
		verr.Add("customer_info.phone", "phone is required")
	} else if !phonePattern.MatchString(phone) {
		verr.Add("customer_info.phone", "please enter a valid phone number")
	}

	address := strings.TrimSpace(ci.Address)
	if address == "" {
		verr.Add("customer_info.address", "address is required")
	} else if len(address) > MaxCustomerAddressLength {
		verr.Add("customer_info.address", "address cannot exceed 200 characters")
	}

	return verr.Err()
}

// Order is a purchase record for exactly one car. CarID is immutable after
// creation and orders are never deleted.
type Order struct {
	ID            string          `json:"order_id" db:"id"`
	CarID         string          `json:"car_id" db:"car_id"`
	UserID        string          `json:"user_id,omitempty" db:"user_id"` // empty for guest orders
	CustomerInfo  CustomerInfo    `json:"customer_info"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status        OrderStatus     `json:"status" db:"status"`
	Notes         string          `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// IsGuest reports whether the order was placed without an account
func (o *Order) IsGuest() bool {
	return o.UserID == ""
}

// FormattedAmount returns the total amount as a US dollar string
func (o *Order) FormattedAmount() string {
	return FormatAmount(o.TotalAmount)
}

// orderNumberLength is the trailing portion of the order id used as a
// human-shareable reference. Not unique across all time; collisions are
// accepted.
const orderNumberLength = 8

// Number returns the short human-shareable order reference
func (o *Order) Number() string {
	if len(o.ID) <= orderNumberLength {
		return o.ID
	}
	return o.ID[len(o.ID)-orderNumberLength:]
}

// OrderSummary is a pure read-side projection of an order for
// notifications and listings
type OrderSummary struct {
	OrderNumber  string `json:"order_number"`
	CarTitle     string `json:"car_title"`
	CustomerName string `json:"customer_name"`
	Amount       string `json:"amount"`
	Status       string `json:"status"`
	Date         string `json:"date"`
}

// Summary projects the order into its summary form. car may be nil when
// the referenced car no longer exists.
func (o *Order) Summary(car *Car) OrderSummary {
	carTitle := "Car not available"
	if car != nil {
		carTitle = car.Title()
	}

	return OrderSummary{
		OrderNumber:  o.Number(),
		CarTitle:     carTitle,
		CustomerName: o.CustomerInfo.Name,
		Amount:       o.FormattedAmount(),
		Status:       string(o.Status),
		Date:         o.CreatedAt.Format("01/02/2006"),
	}
}
