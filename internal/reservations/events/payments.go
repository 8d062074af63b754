package events

import (
	"context"

	apperrors "voyara/pkg/errors"
	"voyara/pkg/kafka"
	"voyara/pkg/logger"
	"voyara/pkg/model"
)

const EventPaymentResult = "payment.result"

// OutcomeRecorder is the slice of the reservation engine the payment
// consumer needs.
type OutcomeRecorder interface {
	RecordPaymentOutcome(ctx context.Context, outcome *model.PaymentOutcome) error
}

// PaymentOutcomeHandler returns a message handler that records gateway
// payment results against bookings. Malformed payloads and results for
// unknown bookings are permanent failures routed to the DLQ; everything
// else is retried.
func PaymentOutcomeHandler(engine OutcomeRecorder, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var outcome model.PaymentOutcome
		if err := msg.DecodeValue(&outcome); err != nil {
			return kafka.NewPermanentError("invalid payment outcome payload", err)
		}

		log.Debug("Processing payment outcome",
			"event_id", msg.GetEventID(),
			"booking_id", outcome.BookingID,
			"succeeded", outcome.Succeeded,
		)

		if err := engine.RecordPaymentOutcome(ctx, &outcome); err != nil {
			switch {
			case apperrors.IsCode(err, apperrors.CodeNotFound),
				apperrors.IsCode(err, apperrors.CodeValidation),
				apperrors.IsCode(err, apperrors.CodeInvalidInput):
				// Retrying will not make the booking appear or the
				// payload parse.
				return kafka.NewPermanentError("payment outcome rejected", err)
			default:
				return kafka.NewTransientError("recording payment outcome", err)
			}
		}
		return nil
	}
}
