package models

import (
	"time"
)

// TokenInfo describes an API bearer token issued to an organizer. The
// token itself is the lookup key in Redis; these fields live in the hash
// behind it.
type TokenInfo struct {
	Token           string    `json:"token"`
	Email           string    `json:"email"`
	RequestCount    int       `json:"request_count"`
	LastRequestTime time.Time `json:"last_request_dttm_utc"`
	CreatedTime     time.Time `json:"created_dttm_utc"`
}
