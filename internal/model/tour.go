package model

import "time"

// Tour difficulty levels.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Tour mirrors the `tours` subtype table.
type Tour struct {
	ProductID      string     `json:"product_id"`
	DeparturePoint string     `json:"departure_point"`
	Itinerary      StringList `json:"itinerary"`
	Expenses       StringList `json:"expenses"`
	PackingList    StringList `json:"packing_list"`
	Highlight      string     `json:"highlight"`
	Included       string     `json:"included"`
	Duration       int        `json:"duration"`
	Lat            *float64   `json:"lat,omitempty"`
	Lng            *float64   `json:"lng,omitempty"`
	Difficulty     string     `json:"difficulty"`
}

// TourDate is a bookable departure of a tour.  PeopleBooked never
// exceeds MaxPeople.
type TourDate struct {
	ID           string    `json:"id"`
	TourID       string    `json:"tour_id"`
	Date         time.Time `json:"date"`
	MaxPeople    int       `json:"max_people"`
	PeopleBooked int       `json:"people_booked"`
}

// Available returns the remaining capacity of the date.
func (d TourDate) Available() int {
	if d.PeopleBooked >= d.MaxPeople {
		return 0
	}
	return d.MaxPeople - d.PeopleBooked
}

// TourDetail is the tour subtype payload returned with a product.
type TourDetail struct {
	Tour
	TourDates []TourDate `json:"tour_dates"`
}
