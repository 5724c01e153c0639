package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/middleware"
	"github.com/google/uuid"
)

// BaseService provides common functionality for all services
type BaseService struct {
	now   func() time.Time
	newID func() string
}

func newBaseService() BaseService {
	return BaseService{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// Clock overrides the time source. Used by tests.
func (s *BaseService) setClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *BaseService) setIDGenerator(gen func() string) {
	if gen != nil {
		s.newID = gen
	}
}

// today returns the current UTC date at midnight.
func (s *BaseService) today() time.Time {
	return dateOf(s.now())
}

func dateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
