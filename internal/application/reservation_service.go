package application

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rentivu/internal/domain/entity"
	repo "github.com/oksasatya/rentivu/internal/domain/repository"
	"github.com/oksasatya/rentivu/internal/infrastructure/kv"
	"github.com/oksasatya/rentivu/pkg/helpers"
)

// datetimeLayouts are tried in order; zoneless values are read in the service location.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDatetime reads a reservation datetime. Values without an offset are
// interpreted in loc.
func ParseDatetime(value string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ReservationService is the ledger of viewing appointments, one JSON list under Key.
// It records bookings; the one-per-slot rule is enforced by BookingService.
type ReservationService struct {
	Store    repo.Storage
	Key      string
	Location *time.Location
	Logger   *logrus.Logger
	NewID    func() string
}

func NewReservationService(store repo.Storage, key string, loc *time.Location, logger *logrus.Logger) *ReservationService {
	return &ReservationService{
		Store:    store,
		Key:      key,
		Location: loc,
		Logger:   logger,
		NewID:    uuid.NewString,
	}
}

// ListFor returns the reservations of one rental in chronological order.
func (s *ReservationService) ListFor(ctx context.Context, rentalID string) []entity.Reservation {
	return s.sortChronologically(filterByRental(s.readAll(ctx), rentalID))
}

// HasConflict reports whether the exact datetime string is already booked for the rental.
func (s *ReservationService) HasConflict(ctx context.Context, rentalID, datetime string) bool {
	return hasConflict(s.readAll(ctx), rentalID, datetime)
}

// Add appends a reservation without checking for conflicts.
func (s *ReservationService) Add(ctx context.Context, rentalID, userName, datetime string) (entity.Reservation, error) {
	var res entity.Reservation
	err := s.Store.Atomic(ctx, []string{s.Key}, func(tx repo.KV) error {
		all, err := s.load(ctx, tx)
		if err != nil {
			return err
		}
		res, err = s.appendTo(ctx, tx, all, rentalID, userName, datetime)
		return err
	})
	if err != nil {
		return entity.Reservation{}, err
	}
	return res, nil
}

// load reads the ledger. A corrupt ledger reads as empty; a failed read is
// returned so a mutation never rewrites the ledger from nothing.
func (s *ReservationService) load(ctx context.Context, store repo.KV) ([]entity.Reservation, error) {
	all, err := kv.Load(ctx, store, s.Key, []entity.Reservation{})
	if err != nil {
		if !errors.Is(err, kv.ErrCorrupt) {
			return nil, err
		}
		helpers.LogWarn(s.Logger, "reservations corrupt, using empty ledger", err, logrus.Fields{"key": s.Key})
	}
	return all, nil
}

// readAll is load for read-only callers: any failure reads as an empty ledger.
func (s *ReservationService) readAll(ctx context.Context) []entity.Reservation {
	all, err := s.load(ctx, s.Store)
	if err != nil {
		helpers.LogWarn(s.Logger, "reservations unreadable, using empty ledger", err, logrus.Fields{"key": s.Key})
		return []entity.Reservation{}
	}
	return all
}

func (s *ReservationService) appendTo(ctx context.Context, tx repo.KV, all []entity.Reservation, rentalID, userName, datetime string) (entity.Reservation, error) {
	res := entity.Reservation{
		ID:       s.NewID(),
		RentalID: rentalID,
		UserName: userName,
		Datetime: datetime,
	}
	next := make([]entity.Reservation, 0, len(all)+1)
	next = append(next, all...)
	next = append(next, res)
	if err := kv.Save(ctx, tx, s.Key, next); err != nil {
		return entity.Reservation{}, err
	}
	return res, nil
}

// sortChronologically orders by instant; unparseable datetimes go last, in input order.
func (s *ReservationService) sortChronologically(list []entity.Reservation) []entity.Reservation {
	type keyed struct {
		at time.Time
		ok bool
	}
	keys := make(map[string]keyed, len(list))
	for _, r := range list {
		if _, seen := keys[r.Datetime]; !seen {
			t, ok := ParseDatetime(r.Datetime, s.Location)
			keys[r.Datetime] = keyed{at: t, ok: ok}
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := keys[list[i].Datetime], keys[list[j].Datetime]
		if a.ok != b.ok {
			return a.ok
		}
		return a.ok && a.at.Before(b.at)
	})
	return list
}

func filterByRental(all []entity.Reservation, rentalID string) []entity.Reservation {
	out := make([]entity.Reservation, 0)
	for _, r := range all {
		if r.RentalID == rentalID {
			out = append(out, r)
		}
	}
	return out
}

func hasConflict(all []entity.Reservation, rentalID, datetime string) bool {
	for _, r := range all {
		if r.RentalID == rentalID && r.Datetime == datetime {
			return true
		}
	}
	return false
}
