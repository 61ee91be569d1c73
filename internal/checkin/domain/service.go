package domain

import "context"

type Service interface {
	ConfirmCheckIn(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error)
	BoardingPass(ctx context.Context, reservationID int64) (*BoardingPassDocument, error)
	SendBoardingPass(ctx context.Context, reservationID int64) (*SendResponse, error)
}

type ConfirmRequest struct {
	ReservationID int64
	// Passengers maps passenger id to the selected seat.
	Passengers map[string]SeatSelection
}

type ConfirmResponse struct {
	ReservationID   int64
	AssignedSeats   int
	BoardingPassURL string
}

type BoardingPassDocument struct {
	Filename string
	Content  []byte
}

type SendResponse struct {
	Email string
}
