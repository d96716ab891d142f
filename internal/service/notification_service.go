package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/calendar-service/internal/config"
	"github.com/spec-kit/calendar-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.NotificationEventCreated, n.handleEventCreated)
	n.dispatcher.Subscribe(events.NotificationEventDeleted, n.handleEventDeleted)
	n.dispatcher.Subscribe(events.NotificationEventsMerged, n.handleEventsMerged)
	n.dispatcher.Subscribe(events.NotificationUserCreated, n.handleUserCreated)
}

func (n *NotificationService) handleEventCreated(ctx context.Context, notification events.Notification) error {
	n.logger.Info("EventCreated", zap.Int64("event_id", notification.SubjectID), zap.Any("payload", notification.Payload))
	n.sendEmailNotificationStub(ctx, notification)
	n.sendWebhookNotificationStub(ctx, notification)
	return nil
}

func (n *NotificationService) handleEventDeleted(ctx context.Context, notification events.Notification) error {
	n.logger.Info("EventDeleted", zap.Int64("event_id", notification.SubjectID), zap.Any("payload", notification.Payload))
	n.sendWebhookNotificationStub(ctx, notification)
	return nil
}

func (n *NotificationService) handleEventsMerged(ctx context.Context, notification events.Notification) error {
	n.logger.Info("EventsMerged", zap.Int64("user_id", notification.SubjectID), zap.Any("payload", notification.Payload))
	n.sendEmailNotificationStub(ctx, notification)
	n.sendWebhookNotificationStub(ctx, notification)
	return nil
}

func (n *NotificationService) handleUserCreated(ctx context.Context, notification events.Notification) error {
	n.logger.Info("UserCreated", zap.Int64("user_id", notification.SubjectID), zap.Any("payload", notification.Payload))
	n.sendEmailNotificationStub(ctx, notification)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, notification events.Notification) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("subject_id", notification.SubjectID),
		zap.String("notification_type", string(notification.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, notification events.Notification) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("subject_id", notification.SubjectID),
		zap.String("notification_type", string(notification.Type)))
}
