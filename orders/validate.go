package orders

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/jeffsasaki/storefront/models"
)

const minAddressLength = 5

// Validate checks a checkout request field by field and returns the first
// problem found, or nil.
func Validate(req models.CreateOrderRequest) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return &ValidationError{Field: "customerName", Message: "Name is required"}
	}
	if !validEmail(req.CustomerEmail) {
		return &ValidationError{Field: "customerEmail", Message: "Invalid email address"}
	}
	if utf8.RuneCountInString(req.CustomerAddress) < minAddressLength {
		return &ValidationError{Field: "customerAddress", Message: "Address is required"}
	}
	if len(req.Items) == 0 {
		return &ValidationError{Field: "items", Message: "At least one item is required"}
	}
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return &ValidationError{
				Field:   fmt.Sprintf("items.%d.quantity", i),
				Message: "Number must be greater than or equal to 1",
			}
		}
		if item.Quantity > models.MaxInt4 {
			return &ValidationError{
				Field:   fmt.Sprintf("items.%d.quantity", i),
				Message: "Quantity is too large",
			}
		}
	}
	return nil
}

// validEmail accepts a single bare address with a dotted domain.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	domain := s[at+1:]
	return at > 0 && strings.Contains(domain, ".") &&
		!strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
