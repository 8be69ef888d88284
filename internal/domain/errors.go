package domain

import "errors"

var (
	ErrMalformedResponse = errors.New("malformed model response")
	ErrModelNotFound     = errors.New("model not found")
	ErrEmptyAPIKey       = errors.New("api key is empty")
)
