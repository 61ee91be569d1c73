package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCheckedIn ReservationStatus = "checked_in"
)

type Reservation struct {
	ID     int64             `gorm:"primaryKey"`
	Code   string            `gorm:"type:varchar(32);not null"`
	UserID int64             `gorm:"column:user_id;not null"`
	TripID int64             `gorm:"column:trip_id;not null"`
	Status ReservationStatus `gorm:"type:varchar(32);not null"`
}

func (Reservation) TableName() string { return "reservations" }

type Seat struct {
	ID        int64  `gorm:"primaryKey"`
	TripID    int64  `gorm:"column:trip_id;not null"`
	Number    string `gorm:"type:varchar(8);not null"`
	Available bool   `gorm:"not null"`
}

func (Seat) TableName() string { return "seats" }

type PassengerSeat struct {
	PassengerID int64           `gorm:"column:passenger_id;primaryKey"`
	SeatID      int64           `gorm:"column:seat_id;not null"`
	ExtraCharge decimal.Decimal `gorm:"column:extra_charge;type:numeric(12,2);not null"`
}

func (PassengerSeat) TableName() string { return "passenger_seats" }

// Itinerary is the reservation joined with its trip and owner.
type Itinerary struct {
	ReservationID   int64
	Code            string
	Status          ReservationStatus
	TripID          int64
	FlightNumber    string
	OriginCode      string
	OriginName      string
	DestinationCode string
	DestinationName string
	DepartureAt     time.Time
	ArrivalAt       time.Time
	CarrierName     *string
	OwnerEmail      string
	OwnerName       string
}

type PassengerSeatView struct {
	PassengerID int64
	FirstName   string
	LastName    string
	Document    string
	SeatNumber  *string
}

// SeatSelection is the seat chosen for one passenger.
type SeatSelection struct {
	Seat string `json:"seat"`
}
