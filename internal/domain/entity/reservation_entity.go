package entity

// Reservation is a viewing appointment for a listing.
// No two reservations share the same (RentalID, Datetime) pair.
type Reservation struct {
	ID       string `json:"id"`
	RentalID string `json:"rentalId"`
	UserName string `json:"userName"`
	Datetime string `json:"datetime"`
}
