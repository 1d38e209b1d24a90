// File: database/repository/booking/transaction.go
package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	slotRepo "slotify/database/repository/slot"
	subscriptionRepo "slotify/database/repository/subscription"
	"slotify/models"
)

// ErrBookingGone means the row vanished between load and transaction,
// typically a concurrent delete of the same booking.
var ErrBookingGone = errors.New("booking no longer exists")

// maxTxnAttempts bounds retries of transactions aborted by write conflicts.
const maxTxnAttempts = 3

// isTransientTxnError reports whether the server flagged the transaction as
// safe to retry as a whole (e.g. a WriteConflict between two sessions
// touching the same slot document). Domain sentinels such as
// slotRepo.ErrCapacityExhausted never carry the label.
func isTransientTxnError(err error) bool {
	var le interface{ HasErrorLabel(string) bool }
	return errors.As(err, &le) && le.HasErrorLabel("TransientTransactionError")
}

// withTxnRetry runs fn up to maxTxnAttempts times, retrying only transient
// transaction errors. Retrying re-evaluates the guarded capacity filters, so
// a loser of a write conflict resurfaces as ErrCapacityExhausted instead of
// an aborted transaction.
func withTxnRetry(fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxTxnAttempts; attempt++ {
		if err = fn(); err == nil || !isTransientTxnError(err) {
			return err
		}
	}
	return err
}

// runInTransaction wraps fn in a Mongo session transaction with a bounded
// timeout. A capacity decrement never outlives a failed booking insert and
// vice versa.
func (r *mongoBookingRepo) runInTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := r.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return withTxnRetry(func() error {
		return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
			if err := sc.StartTransaction(); err != nil {
				return err
			}
			if err := fn(sc); err != nil {
				_ = sc.AbortTransaction(sc)
				return err
			}
			return sc.CommitTransaction(sc)
		})
	})
}

// CreateTransactionally reserves slot capacity, debits the entitlement (if
// any) and inserts the booking row as one atomic unit. Capacity losers get
// slotRepo.ErrCapacityExhausted; entitlement losers get
// subscriptionRepo.ErrEntitlementExhausted.
func (r *mongoBookingRepo) CreateTransactionally(ctx context.Context, booking *models.Booking, debit *models.UsageDebit) error {
	return r.runInTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := slotRepo.ApplyReserve(sc, r.slotColl, booking.TenantID, booking.SlotID, booking.VisitorCount); err != nil {
			return err
		}
		if debit != nil {
			if err := subscriptionRepo.ApplyDebit(sc, r.usageColl, debit.SubscriptionID, debit.ServiceID, debit.Quantity); err != nil {
				return err
			}
		}
		if _, err := r.bookingColl.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	})
}

// CreateGroupTransactionally books one visitor per slot, all-or-nothing.
// Reservations are applied per slot inside the transaction; any failure
// aborts and leaves every slot untouched.
func (r *mongoBookingRepo) CreateGroupTransactionally(ctx context.Context, bookings []models.Booking, debit *models.UsageDebit) error {
	if len(bookings) == 0 {
		return fmt.Errorf("empty booking group")
	}
	return r.runInTransaction(ctx, func(sc mongo.SessionContext) error {
		for i := range bookings {
			b := &bookings[i]
			if err := slotRepo.ApplyReserve(sc, r.slotColl, b.TenantID, b.SlotID, b.VisitorCount); err != nil {
				return fmt.Errorf("slot %s: %w", b.SlotID, err)
			}
		}
		if debit != nil {
			if err := subscriptionRepo.ApplyDebit(sc, r.usageColl, debit.SubscriptionID, debit.ServiceID, debit.Quantity); err != nil {
				return err
			}
		}
		docs := make([]interface{}, len(bookings))
		for i := range bookings {
			docs[i] = bookings[i]
		}
		if _, err := r.bookingColl.InsertMany(sc, docs); err != nil {
			return fmt.Errorf("insert booking group failed: %w", err)
		}
		return nil
	})
}

// MoveTransactionally releases the old slot, reserves the new one and
// repoints the booking. The ticket token is cleared so a previously issued
// ticket no longer verifies at check-in.
func (r *mongoBookingRepo) MoveTransactionally(ctx context.Context, move models.BookingMove) error {
	return r.runInTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := slotRepo.ApplyRelease(sc, r.slotColl, move.TenantID, move.OldSlotID, move.Quantity); err != nil {
			return fmt.Errorf("release old slot %s: %w", move.OldSlotID, err)
		}
		if err := slotRepo.ApplyReserve(sc, r.slotColl, move.TenantID, move.NewSlotID, move.Quantity); err != nil {
			return fmt.Errorf("reserve new slot %s: %w", move.NewSlotID, err)
		}

		filter := bson.M{"id": move.BookingID, "tenantId": move.TenantID, "slotId": move.OldSlotID}
		update := bson.M{
			"$set": bson.M{
				"slotId":     move.NewSlotID,
				"employeeId": move.NewEmployeeID,
				"date":       move.NewDate,
				"start":      move.NewStart,
				"end":        move.NewEnd,
				"totalPrice": move.NewTotalPrice,
				"updatedAt":  time.Now(),
			},
			"$unset": bson.M{"ticketToken": ""},
		}
		res, err := r.bookingColl.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("repoint booking failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("booking %s no longer references slot %s", move.BookingID, move.OldSlotID)
		}
		return nil
	})
}

// DeleteTransactionally restores slot capacity and entitlement before
// removing the row. Capacity is released only when the booking still holds
// it (pending or confirmed status).
func (r *mongoBookingRepo) DeleteTransactionally(ctx context.Context, booking *models.Booking, credit *models.UsageDebit) error {
	return r.runInTransaction(ctx, func(sc mongo.SessionContext) error {
		if booking.HoldsCapacity() {
			if err := slotRepo.ApplyRelease(sc, r.slotColl, booking.TenantID, booking.SlotID, booking.VisitorCount); err != nil {
				return fmt.Errorf("release slot %s: %w", booking.SlotID, err)
			}
		}
		if credit != nil {
			if err := subscriptionRepo.ApplyCredit(sc, r.usageColl, credit.SubscriptionID, credit.ServiceID, credit.Quantity); err != nil {
				return fmt.Errorf("credit entitlement: %w", err)
			}
		}

		res, err := r.bookingColl.DeleteOne(sc, bson.M{"id": booking.ID, "tenantId": booking.TenantID})
		if err != nil {
			return fmt.Errorf("delete booking failed: %w", err)
		}
		if res.DeletedCount == 0 {
			return ErrBookingGone
		}
		return nil
	})
}
