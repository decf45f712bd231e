package worker

import (
	"github.com/desivolt/muzdesk/internal/events"
	"github.com/desivolt/muzdesk/internal/service"
)

// StartNotificationWorker registers notification handlers and routes every
// ticket event to the change feed sink.
func StartNotificationWorker(notificationService *service.NotificationService, dispatcher events.Dispatcher, sink events.Sink) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if dispatcher != nil && sink != nil {
		events.Forward(dispatcher, sink)
	}
}
