package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rentivu/internal/domain/entity"
	repo "github.com/oksasatya/rentivu/internal/domain/repository"
)

type BookingInput struct {
	RentalID string
	UserName string
	Datetime string
}

// BookingService applies the booking rules on top of the ledger: the rental
// must exist, the time must be strictly in the future and the exact slot
// must be free. Check and append share one Storage.Atomic call.
type BookingService struct {
	Rentals  *RentalService
	Ledger   *ReservationService
	Location *time.Location
	Now      func() time.Time
	Events   EventPublisher
	Logger   *logrus.Logger
}

func NewBookingService(rentals *RentalService, ledger *ReservationService, loc *time.Location, logger *logrus.Logger) *BookingService {
	if loc == nil {
		loc = time.Local
	}
	return &BookingService{
		Rentals:  rentals,
		Ledger:   ledger,
		Location: loc,
		Now:      time.Now,
		Logger:   logger,
	}
}

func (s *BookingService) Book(ctx context.Context, in BookingInput) (entity.Reservation, error) {
	if _, err := s.Rentals.Get(ctx, in.RentalID); err != nil {
		return entity.Reservation{}, err
	}
	at, ok := ParseDatetime(in.Datetime, s.Location)
	if !ok {
		return entity.Reservation{}, ErrInvalidDatetime
	}
	if !at.After(s.Now().In(s.Location)) {
		return entity.Reservation{}, ErrDatetimeInPast
	}

	var res entity.Reservation
	err := s.Ledger.Store.Atomic(ctx, []string{s.Ledger.Key}, func(tx repo.KV) error {
		all, err := s.Ledger.load(ctx, tx)
		if err != nil {
			return err
		}
		if hasConflict(all, in.RentalID, in.Datetime) {
			return ErrSlotTaken
		}
		res, err = s.Ledger.appendTo(ctx, tx, all, in.RentalID, in.UserName, in.Datetime)
		return err
	})
	if err != nil {
		return entity.Reservation{}, err
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"reservation_id": res.ID,
			"rental_id":      res.RentalID,
		}).Info("reservation created")
	}
	publishEvent(ctx, s.Events, s.Logger, EventReservationCreated, res)
	return res, nil
}

