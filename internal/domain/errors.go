package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrStaleQuote   = errors.New("quote is stale")
	ErrNoQuote      = errors.New("no quote available yet")
	ErrWSDisconnect = errors.New("websocket disconnected")
)
