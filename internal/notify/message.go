package notify

import (
	"fmt"
	"strings"

	"autolot/models"
)

// Event identifies the order lifecycle moment a message describes
type Event string

const (
	EventNewOrder       Event = "new_order"
	EventOrderCancelled Event = "order_cancelled"
)

// Message is one rendered notification in every shape a channel might
// need. Channels pick the representation that fits their medium.
type Message struct {
	Event   Event
	Subject string
	HTML    string
	Text    string
	Short   string
}

func carTitle(car *models.Car) string {
	if car == nil {
		return "Car not available"
	}
	return car.Title()
}

// NewOrderMessage renders the staff notification for a freshly placed order
func NewOrderMessage(order *models.Order, car *models.Car) Message {
	title := carTitle(car)
	amount := order.FormattedAmount()

	var html strings.Builder
	html.WriteString("<b>\U0001F697 New Order Received!</b>\n\n")
	fmt.Fprintf(&html, "<b>Order:</b> #%s\n", order.Number())
	fmt.Fprintf(&html, "<b>Car:</b> %s\n", title)
	fmt.Fprintf(&html, "<b>Amount:</b> %s\n", amount)
	fmt.Fprintf(&html, "<b>Customer:</b> %s\n", order.CustomerInfo.Name)
	fmt.Fprintf(&html, "<b>Phone:</b> %s\n", order.CustomerInfo.Phone)
	fmt.Fprintf(&html, "<b>Payment:</b> %s", order.PaymentMethod)

	var text strings.Builder
	fmt.Fprintf(&text, "New order #%s\n", order.Number())
	fmt.Fprintf(&text, "Car: %s\n", title)
	fmt.Fprintf(&text, "Amount: %s\n", amount)
	fmt.Fprintf(&text, "Customer: %s (%s)\n", order.CustomerInfo.Name, order.CustomerInfo.Phone)
	fmt.Fprintf(&text, "Payment: %s", order.PaymentMethod)

	return Message{
		Event:   EventNewOrder,
		Subject: fmt.Sprintf("New Order #%s - %s", order.Number(), title),
		HTML:    html.String(),
		Text:    text.String(),
		Short:   fmt.Sprintf("New order #%s: %s for %s", order.Number(), title, amount),
	}
}

// OrderCancelledMessage renders the staff notification for a cancellation
func OrderCancelledMessage(order *models.Order, car *models.Car) Message {
	title := carTitle(car)
	amount := order.FormattedAmount()

	var html strings.Builder
	html.WriteString("<b>❌ Order Cancelled</b>\n\n")
	fmt.Fprintf(&html, "<b>Order:</b> #%s\n", order.Number())
	fmt.Fprintf(&html, "<b>Car:</b> %s\n", title)
	fmt.Fprintf(&html, "<b>Amount:</b> %s\n", amount)
	fmt.Fprintf(&html, "<b>Customer:</b> %s", order.CustomerInfo.Name)

	var text strings.Builder
	fmt.Fprintf(&text, "Order #%s was cancelled\n", order.Number())
	fmt.Fprintf(&text, "Car: %s\n", title)
	fmt.Fprintf(&text, "Amount: %s\n", amount)
	fmt.Fprintf(&text, "Customer: %s", order.CustomerInfo.Name)

	return Message{
		Event:   EventOrderCancelled,
		Subject: fmt.Sprintf("Order #%s Cancelled", order.Number()),
		HTML:    html.String(),
		Text:    text.String(),
		Short:   fmt.Sprintf("Order #%s cancelled (%s)", order.Number(), title),
	}
}
