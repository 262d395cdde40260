package store

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrNoAvailability = errors.New("no available schedule slot")
	ErrSlotTaken      = errors.New("slot already consumed")
)
