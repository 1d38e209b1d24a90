package booking

import (
	"encoding/json"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"slotify/models"
	"slotify/utils"
)

// Task type names consumed by the background worker.
const (
	TaskTicketIssue      = "ticket:issue"
	TaskInvoiceSync      = "invoice:sync"
	TaskPackageExhausted = "package:exhausted"
)

// EventEmitter hands successful-transaction side effects to the background
// worker. All methods are fire-and-forget: failures are logged and never
// surface as operation failure, since the reservation itself already
// committed.
type EventEmitter interface {
	TicketIssued(tenantID, bookingID, action string)
	InvoiceDue(tenantID, bookingID string, paidQuantity int, totalPrice float64)
	PackageExhausted(tenantID, subscriptionID, serviceID string)
}

// AsynqEventEmitter enqueues tasks on the shared Redis-backed queue.
type AsynqEventEmitter struct {
	Client *asynq.Client
}

func NewAsynqEventEmitter(client *asynq.Client) *AsynqEventEmitter {
	return &AsynqEventEmitter{Client: client}
}

func (e *AsynqEventEmitter) enqueue(taskType string, payload any) {
	logger := utils.GetLogger()
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal task payload", zap.String("task", taskType), zap.Error(err))
		return
	}
	if _, err := e.Client.Enqueue(asynq.NewTask(taskType, data), asynq.MaxRetry(5)); err != nil {
		logger.Error("failed to enqueue task", zap.String("task", taskType), zap.Error(err))
	}
}

func (e *AsynqEventEmitter) TicketIssued(tenantID, bookingID, action string) {
	e.enqueue(TaskTicketIssue, models.TicketTaskPayload{
		TenantID:  tenantID,
		BookingID: bookingID,
		Action:    action,
	})
}

func (e *AsynqEventEmitter) InvoiceDue(tenantID, bookingID string, paidQuantity int, totalPrice float64) {
	e.enqueue(TaskInvoiceSync, models.InvoiceTaskPayload{
		TenantID:     tenantID,
		BookingID:    bookingID,
		PaidQuantity: paidQuantity,
		TotalPrice:   totalPrice,
	})
}

func (e *AsynqEventEmitter) PackageExhausted(tenantID, subscriptionID, serviceID string) {
	e.enqueue(TaskPackageExhausted, models.ExhaustedTaskPayload{
		TenantID:       tenantID,
		SubscriptionID: subscriptionID,
		ServiceID:      serviceID,
	})
}
