package funnel

import (
	"errors"

	"github.com/reviewfunnel/funnel/application/service"
)

// Errors returned by New and Client.
var (
	ErrNoDatabase   = errors.New("funnel: no database configured")
	ErrWeakSecret   = errors.New("funnel: token secret too weak")
	ErrClientClosed = service.ErrClientClosed
)
