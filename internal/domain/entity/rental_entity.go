package entity

type RentalType string

const (
	RentalApartment RentalType = "apartment"
	RentalHouse     RentalType = "house"
	RentalOffice    RentalType = "office"
)

type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Address string `json:"address"`
}

// Rental is a catalog listing. Price is the monthly rent in euros.
type Rental struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Location    Location   `json:"location"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Type        RentalType `json:"type"`
}
