package db

import "errors"

// Domain errors surfaced by the Repo. Handlers map these to HTTP
// statuses; anything else is treated as a store failure.
var (
	// ErrNotFound: the referenced entity id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition: the loan exists but is not in a state the
	// requested transition accepts.
	ErrInvalidTransition = errors.New("invalid loan state transition")

	// ErrOutOfStock: reserve on an item with zero availability.
	ErrOutOfStock = errors.New("item out of stock")

	// ErrInvalidQuantity: administrative quantity update violates
	// 0 <= available <= total.
	ErrInvalidQuantity = errors.New("invalid quantities")

	// ErrInventoryInconsistency: a release would push available above
	// total. Should not happen under correct usage; the release is not
	// applied and the caller should alert an operator.
	ErrInventoryInconsistency = errors.New("inventory inconsistency: release exceeds total")

	// ErrDuplicateRequest: the user already has a pending request for
	// the same item.
	ErrDuplicateRequest = errors.New("duplicate pending request for this item")
)
