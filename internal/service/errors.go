package service

import "errors"

var ErrReceiptsDisabled = errors.New("receipt storage is not configured")
