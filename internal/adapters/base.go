package adapters

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a lookup by ID finds nothing.
	ErrNotFound = errors.New("not found")
	// ErrNotConfigured is returned when an adapter is built without credentials.
	ErrNotConfigured = errors.New("not configured")
)

// ServiceError wraps a failure reported by an external service.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// BaseAdapter provides common functionality for platform adapters
type BaseAdapter struct {
	platformName string
	logger       *zap.Logger
}

// NewBaseAdapter creates a new BaseAdapter
func NewBaseAdapter(platformName string, logger *zap.Logger) BaseAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BaseAdapter{
		platformName: platformName,
		logger:       logger.Named(platformName),
	}
}

// Logger returns the adapter's named logger
func (b *BaseAdapter) Logger() *zap.Logger {
	return b.logger
}

// CheckContext fails fast when the caller has already given up.
// Used before calls into clients that take no context.
func (b *BaseAdapter) CheckContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return b.Wrap("call", err)
	}
	return nil
}

// Wrap turns a client failure into a ServiceError for this platform.
func (b *BaseAdapter) Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	b.logger.Debug("service call failed", zap.String("op", op), zap.Error(err))
	return &ServiceError{Service: b.platformName, Op: op, Err: err}
}
