package domain

import "context"

type Repository interface {
	FindReservation(ctx context.Context, id int64) (*Reservation, error)
	// MarkCheckedIn reports false when the reservation was already checked in.
	MarkCheckedIn(ctx context.Context, id int64) (bool, error)
	ListPassengerIDs(ctx context.Context, reservationID int64) ([]int64, error)
	FindSeat(ctx context.Context, tripID int64, number string) (*Seat, error)
	AssignSeat(ctx context.Context, assignment PassengerSeat) error
	MarkSeatUnavailable(ctx context.Context, seatID int64) error

	FindItinerary(ctx context.Context, reservationID int64) (*Itinerary, error)
	ListPassengerSeats(ctx context.Context, reservationID int64) ([]PassengerSeatView, error)
}
