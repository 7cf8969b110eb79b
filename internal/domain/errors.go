package domain

import "errors"

// Kind tags a domain error so callers can branch on the failure class
// without a type hierarchy.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindInsufficientStock
	KindOrderNotFound
	KindStateConflict
)

type Error struct {
	Kind    Kind
	Message string

	// Set when the error concerns a specific product or order.
	ProductID string
	OrderID   string
}

func (e *Error) Error() string { return e.Message }

func ErrValidation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func ErrInsufficientStock(productID string) error {
	return &Error{
		Kind:      KindInsufficientStock,
		Message:   "insufficient stock for product " + productID,
		ProductID: productID,
	}
}

func ErrOrderNotFound(orderID string) error {
	return &Error{
		Kind:    KindOrderNotFound,
		Message: "order not found: " + orderID,
		OrderID: orderID,
	}
}

func ErrStateConflict(msg string, orderID string) error {
	return &Error{Kind: KindStateConflict, Message: msg, OrderID: orderID}
}

// KindOf reports the kind of err, or KindUnknown for collaborator and
// other non-domain failures.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
