package movement

import "errors"

var (
	ErrQueueFull         = errors.New("alert queue is full")
	ErrDispatcherStopped = errors.New("alert dispatcher is stopped")
)
