package domain

import "errors"

var (
	ErrSOSNotFound = errors.New("sos not found")
)
