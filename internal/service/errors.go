package service

import "errors"

var (
	ErrInvalidResponse = errors.New("invalid response from backend")
	ErrInvalidInput    = errors.New("invalid input")
)
