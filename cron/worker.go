package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"slotify/config"
	bookingRepo "slotify/database/repository/booking"
	"slotify/models"
	bookingSvc "slotify/services/booking"
	"slotify/services/ticket"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// InitBookingWorker runs the async worker in background. It drains the
// post-commit queue: ticket issuance, invoice sync and exhaustion notices.
func InitBookingWorker(bookings bookingRepo.BookingRepository, tickets *ticket.Service) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(bookingSvc.TaskTicketIssue, handleTicketTask(bookings, tickets))
	mux.HandleFunc(bookingSvc.TaskInvoiceSync, handleInvoiceTask)
	mux.HandleFunc(bookingSvc.TaskPackageExhausted, handleExhaustedTask)

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[BookingWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[BookingWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[BookingWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// handleTicketTask stamps a fresh signed token onto the booking. A reschedule
// lands here too: the move cleared the old token, this writes its successor.
func handleTicketTask(bookings bookingRepo.BookingRepository, tickets *ticket.Service) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.TicketTaskPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[TicketHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		booking, err := bookings.GetByID(ctx, p.TenantID, p.BookingID)
		if err != nil {
			log.Printf("[TicketHandler] ❌ Failed to load booking %s: %v", p.BookingID, err)
			return err
		}
		if booking == nil {
			// Deleted before the task ran; nothing to issue.
			log.Printf("[TicketHandler] ⚠️ Booking %s no longer exists, skipping", p.BookingID)
			return nil
		}

		token := tickets.Token(booking)
		if err := bookings.SetTicketToken(ctx, p.TenantID, p.BookingID, token); err != nil {
			log.Printf("[TicketHandler] ❌ Failed to store ticket token for %s: %v", p.BookingID, err)
			return err
		}

		log.Printf("[TicketHandler] 🎟️ Ticket %s for booking %s (%s)", p.Action, p.BookingID, booking.CustomerPhone)
		return nil
	}
}

// handleInvoiceTask pushes the paid portion to the payment gateway. With no
// Stripe key configured the invoice is only logged for manual settlement.
func handleInvoiceTask(ctx context.Context, task *asynq.Task) error {
	var p models.InvoiceTaskPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		log.Printf("[InvoiceHandler] 🔴 Invalid payload: %v", err)
		return err
	}

	log.Printf("[InvoiceHandler] 💰 Invoice due for booking %s: %d visitor(s), %.2f", p.BookingID, p.PaidQuantity, p.TotalPrice)

	if config.AppConfig.StripeKey == "" {
		return nil
	}

	stripe.Key = config.AppConfig.StripeKey
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(p.TotalPrice * 100)),
		Currency: stripe.String(config.AppConfig.Currency),
	}
	params.AddMetadata("tenantId", p.TenantID)
	params.AddMetadata("bookingId", p.BookingID)

	pi, err := paymentintent.New(params)
	if err != nil {
		log.Printf("[InvoiceHandler] ❌ Stripe payment intent failed for %s: %v", p.BookingID, err)
		return err
	}
	log.Printf("[InvoiceHandler] ✅ Payment intent %s created for booking %s", pi.ID, p.BookingID)
	return nil
}

// handleExhaustedTask surfaces a drained entitlement to the tenant. Delivery
// channel is the log for now; the debit transaction already claimed the
// notification flag so a retry never double-notifies.
func handleExhaustedTask(ctx context.Context, task *asynq.Task) error {
	var p models.ExhaustedTaskPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		log.Printf("[ExhaustedHandler] 🔴 Invalid payload: %v", err)
		return err
	}

	log.Printf("[ExhaustedHandler] 📦 Package %s exhausted for service %s (tenant %s)", p.SubscriptionID, p.ServiceID, p.TenantID)
	return nil
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[BookingWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
