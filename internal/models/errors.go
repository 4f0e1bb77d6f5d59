package models

import "errors"

// Custom errors
var (
	ErrInvalidOdds      = errors.New("invalid american odds")
	ErrUnorderedInput   = errors.New("games are not in chronological order")
	ErrDegenerateMarket = errors.New("degenerate market")
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateKey     = errors.New("duplicate key violation")
)
