package repository

import "errors"

var (
	ErrPropertyNotFound = errors.New("property not found")
)
