// Package errors holds the sentinel errors returned by the hop runtime's
// registration and publishing surface.
package errors

import sterrors "errors"

var (
	ErrHopRequired          = sterrors.New("hoplog: hop runtime is required")
	ErrHandlerRequired      = sterrors.New("hoplog: handler function is required")
	ErrConsumeTopicRequired = sterrors.New("hoplog: consume topic is required")
	ErrHandlerNameRequired  = sterrors.New("hoplog: handler name is required")
	ErrPublisherRequired    = sterrors.New("hoplog: publisher is required")
	ErrTopicRequired        = sterrors.New("hoplog: topic is required")
	ErrPayloadRequired      = sterrors.New("hoplog: payload is required")
)
