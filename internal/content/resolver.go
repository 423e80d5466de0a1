// Package content maps a notification type and its payload context to the
// display title/body used for push delivery. Pure lookup, no I/O; display
// text decisions stay out of the dispatcher.
package content

import (
	"fmt"

	"github.com/pazarhub/notify-service/internal/domain"
)

const (
	genericTitle = "New notification"
	genericBody  = "You have a new update in your account."
)

type template func(ctx map[string]string) (title, body string)

var templates = map[domain.NotificationType]template{
	domain.TypeOrderConfirmation: func(ctx map[string]string) (string, string) {
		return "Order confirmed",
			fmt.Sprintf("Order #%s has been confirmed and is being prepared.", field(ctx, "order_id"))
	},
	domain.TypeOrderStatusChange: func(ctx map[string]string) (string, string) {
		return "Order update",
			fmt.Sprintf("Order #%s is now %s.", field(ctx, "order_id"), field(ctx, "status_after"))
	},
	domain.TypeDeliveryDelay: func(ctx map[string]string) (string, string) {
		return "Delivery delayed",
			fmt.Sprintf("Order #%s is running late. Sorry for the wait.", field(ctx, "order_id"))
	},
	domain.TypeOrderCancellation: func(ctx map[string]string) (string, string) {
		return "Order cancelled",
			fmt.Sprintf("Order #%s has been cancelled.", field(ctx, "order_id"))
	},
	domain.TypePaymentSuccess: func(ctx map[string]string) (string, string) {
		return "Payment received",
			fmt.Sprintf("Payment for order #%s went through.", field(ctx, "order_id"))
	},
	domain.TypePaymentFailed: func(ctx map[string]string) (string, string) {
		return "Payment failed",
			fmt.Sprintf("Payment for order #%s failed. Please try again.", field(ctx, "order_id"))
	},
	domain.TypeRefundProcessed: func(ctx map[string]string) (string, string) {
		return "Refund processed",
			fmt.Sprintf("Your refund for order #%s is on its way.", field(ctx, "order_id"))
	},
	domain.TypeDiscountOffer: func(ctx map[string]string) (string, string) {
		return "New deal for you", "A new discount is waiting in the app."
	},
	domain.TypeNewRestaurant: func(ctx map[string]string) (string, string) {
		return "New restaurant nearby",
			fmt.Sprintf("%s just joined. Take a look at their menu.", fieldOr(ctx, "vendor", "A new restaurant"))
	},
	domain.TypeReviewReminder: func(ctx map[string]string) (string, string) {
		return "How was your order?",
			fmt.Sprintf("Rate your order #%s and help others choose.", field(ctx, "order_id"))
	},
	domain.TypeRestaurantReply: func(ctx map[string]string) (string, string) {
		return "Reply to your review",
			fmt.Sprintf("%s replied to your review.", fieldOr(ctx, "vendor", "The restaurant"))
	},
	domain.TypeNewOrder: func(ctx map[string]string) (string, string) {
		return "New order received",
			fmt.Sprintf("Order #%s just came in. Total %s.", field(ctx, "order_id"), field(ctx, "total"))
	},
	domain.TypeVendorOrderCancellation: func(ctx map[string]string) (string, string) {
		return "Order cancelled",
			fmt.Sprintf("Order #%s was cancelled by the customer side.", field(ctx, "order_id"))
	},
	domain.TypeNewReview: func(ctx map[string]string) (string, string) {
		return "New review posted",
			fmt.Sprintf("A customer rated %s with %s stars.", fieldOr(ctx, "product", "your product"), fieldOr(ctx, "rating", "new"))
	},
	domain.TypeLowStock: func(ctx map[string]string) (string, string) {
		return "Low stock alert",
			fmt.Sprintf("%s is running low (%s left).", fieldOr(ctx, "product", "A product"), fieldOr(ctx, "inventory", "few"))
	},
	domain.TypePaymentReceived: func(ctx map[string]string) (string, string) {
		return "Payout incoming",
			fmt.Sprintf("Payment for order #%s has been received.", field(ctx, "order_id"))
	},
	domain.TypeAccount: func(ctx map[string]string) (string, string) {
		return "Account update", "There is an update on your account status."
	},
}

// Resolve returns the push display title and body for a notification type and
// its string-coerced payload. Unknown types get the generic pair.
func Resolve(typ domain.NotificationType, ctx map[string]string) (string, string) {
	tmpl, ok := templates[typ]
	if !ok {
		return genericTitle, genericBody
	}
	return tmpl(ctx)
}

func field(ctx map[string]string, key string) string {
	return fieldOr(ctx, key, "?")
}

func fieldOr(ctx map[string]string, key, fallback string) string {
	if ctx == nil {
		return fallback
	}
	if v, ok := ctx[key]; ok && v != "" {
		return v
	}
	return fallback
}
