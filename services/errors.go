package services

import "errors"

var (
	// ErrNotFound: die referenzierte Firma existiert nicht.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument: ungültige Stufe, leerer Tag, Index außerhalb des Bereichs.
	ErrInvalidArgument = errors.New("invalid argument")
)
