package domain

import "errors"

var (
	ErrInvalidThumbnail = errors.New("thumbnail index out of range")
	ErrUnknownCategory  = errors.New("unknown navigation category")
	ErrEmptyCart        = errors.New("cart is empty, nothing to checkout")
	ErrInvalidReceipt   = errors.New("invalid receipt")
)
