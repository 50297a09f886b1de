package container

import (
	"errors"

	"github.com/oksasatya/rentivu/internal/application"
	"github.com/oksasatya/rentivu/pkg/helpers"
)

// Services are the application services shared by the HTTP modules and the
// background session watcher.
type Services struct {
	Auth    *application.AuthService
	Ledger  *application.ReservationService
	Booking *application.BookingService
	Rentals *application.RentalService
	Watcher *application.SessionWatcher
}

// BuildServices wires the services from the registered singletons.
// Storage and catalog must be set first.
func BuildServices() (*Services, error) {
	if store == nil || rentalCat == nil {
		return nil, errors.New("container: storage and catalog must be set before building services")
	}
	c := GetConfig()
	log := GetLogger()

	hasher, err := helpers.NewPasswordHasher(c.PasswordHasher, c.BcryptCost)
	if err != nil {
		return nil, err
	}

	auth := application.NewAuthService(store, c.StoragePrefix, hasher, log)
	rentals := application.NewRentalService(rentalCat)
	ledger := application.NewReservationService(store, c.ReservationsKey, c.BookingLocation(), log)
	booking := application.NewBookingService(rentals, ledger, c.BookingLocation(), log)

	if rabbitPub != nil {
		auth.Events = rabbitPub
		booking.Events = rabbitPub
	}

	return &Services{
		Auth:    auth,
		Ledger:  ledger,
		Booking: booking,
		Rentals: rentals,
		Watcher: application.NewSessionWatcher(auth, log),
	}, nil
}
