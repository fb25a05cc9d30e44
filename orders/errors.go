package orders

import "fmt"

// ValidationError is a malformed or missing request field. Field uses the
// dotted request path, e.g. "items.0.quantity".
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ProductNotFoundError is a line item that references no catalog product.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product %d not found", e.ProductID)
}
