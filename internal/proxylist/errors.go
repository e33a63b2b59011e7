package proxylist

import "errors"

var (
	ErrEmptyList    = errors.New("list is empty")
	ErrInvalidProxy = errors.New("invalid proxy format")
)
