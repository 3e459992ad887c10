package storage

import "errors"

var (
	ErrNotFound         = errors.New("storage: not found")
	ErrInvalidPackageID = errors.New("storage: invalid package id")
	ErrDigestMismatch   = errors.New("storage: payload does not match package id")
	ErrImmutable        = errors.New("storage: immutable object mismatch")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
