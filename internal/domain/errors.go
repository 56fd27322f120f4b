package domain

import "errors"

// Sentinel ошибки доменного слоя
var (
	ErrPostNotFound     = errors.New("post not found")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrNoPosts          = errors.New("no posts found in the specified date range")
	ErrUnknownDialect   = errors.New("unknown dialect")
)
