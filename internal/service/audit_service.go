package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/notification-service/internal/events"
)

// AuditService writes an audit line for every authentication event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventLoginSucceeded, a.handleInfo)
	a.dispatcher.Subscribe(events.EventTokensRotated, a.handleInfo)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.handleWarn)
	a.dispatcher.Subscribe(events.EventLoginLocked, a.handleWarn)
	a.dispatcher.Subscribe(events.EventAccessDenied, a.handleWarn)
}

func (a *AuditService) handleInfo(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type), a.fields(event)...)
	return nil
}

func (a *AuditService) handleWarn(_ context.Context, event events.Event) error {
	a.logger.Warn(string(event.Type), a.fields(event)...)
	return nil
}

func (a *AuditService) fields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("path", event.Path),
		zap.Time("at", event.Timestamp),
	}
	if event.Subject != "" {
		fields = append(fields, zap.String("subject", event.Subject))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	return fields
}
