package store

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrDuplicateWaitlist = errors.New("waitlist entry already exists for this barber")
)
