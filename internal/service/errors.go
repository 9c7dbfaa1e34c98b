package service

import "fmt"

// ValidationError marks input rejected before any network call. Never
// retried automatically.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ChannelError marks a confirmation channel request that failed, either
// on the wire or with an explicit success=false answer.
type ChannelError struct {
	Channel string
	Message string
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("%s channel: %s", e.Channel, e.Message)
}
