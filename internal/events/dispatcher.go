package events

import (
	"context"
	"sync"
)

// NotificationHandler handles a published notification.
type NotificationHandler func(context.Context, Notification) error

// Dispatcher interface allows notification publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, notification Notification) error
	Subscribe(notificationType NotificationType, handler NotificationHandler)
}

// inMemoryDispatcher is a simple synchronous dispatcher.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[NotificationType][]NotificationHandler
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[NotificationType][]NotificationHandler),
	}
}

// Publish synchronously invokes handlers for the given notification.
func (d *inMemoryDispatcher) Publish(ctx context.Context, notification Notification) error {
	d.mu.RLock()
	handlers := append([]NotificationHandler{}, d.listeners[notification.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, notification); err != nil {
			// continue processing other handlers despite errors
			continue
		}
	}
	return nil
}

// Subscribe registers a handler for the given notification type.
func (d *inMemoryDispatcher) Subscribe(notificationType NotificationType, handler NotificationHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[notificationType] = append(d.listeners[notificationType], handler)
}
