package services

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrOfferInactive = errors.New("offer is not active")
	ErrOfferExpired  = errors.New("offer has expired")
	ErrInvalidQuery  = errors.New("invalid query")
)
