package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	checkindomain "github.com/smallbiznis/airlink/internal/checkin/domain"
	"github.com/smallbiznis/airlink/internal/providers/pdf"
)

const displayTimeLayout = "2006-01-02 15:04"

type boardingPass struct {
	data       pdf.BoardingPassData
	ownerEmail string
}

func (s *Service) loadBoardingPass(ctx context.Context, reservationID int64) (*boardingPass, error) {
	if reservationID <= 0 {
		return nil, checkindomain.ErrInvalidReservation
	}

	itinerary, err := s.repo.FindItinerary(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("find itinerary: %w", err)
	}
	if itinerary == nil {
		return nil, checkindomain.ErrReservationNotFound
	}

	passengers, err := s.repo.ListPassengerSeats(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("list passengers: %w", err)
	}
	if len(passengers) == 0 {
		return nil, checkindomain.ErrNoPassengers
	}

	return &boardingPass{
		data:       s.boardingPassData(itinerary, passengers),
		ownerEmail: itinerary.OwnerEmail,
	}, nil
}

func (s *Service) boardingPassData(it *checkindomain.Itinerary, passengers []checkindomain.PassengerSeatView) pdf.BoardingPassData {
	storefront := s.storefront.Get()

	carrier := storefront.CarrierName
	if it.CarrierName != nil && strings.TrimSpace(*it.CarrierName) != "" {
		carrier = strings.TrimSpace(*it.CarrierName)
	}
	flight := strings.TrimSpace(it.FlightNumber)
	if flight == "" {
		flight = storefront.FlightPrefix + " " + strconv.FormatInt(it.TripID, 10)
	}

	items := make([]pdf.PassengerData, 0, len(passengers))
	for _, p := range passengers {
		seat := ""
		if p.SeatNumber != nil {
			seat = strings.TrimSpace(*p.SeatNumber)
		}
		items = append(items, pdf.PassengerData{
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Document:  p.Document,
			Seat:      seat,
		})
	}

	return pdf.BoardingPassData{
		CarrierName:     carrier,
		ReservationCode: it.Code,
		FlightNumber:    flight,
		Origin:          place(it.OriginCode, it.OriginName),
		Destination:     place(it.DestinationCode, it.DestinationName),
		Departure:       s.displayTime(it.DepartureAt),
		Arrival:         s.displayTime(it.ArrivalAt),
		Passengers:      items,
		Instructions:    append([]string(nil), storefront.Instructions...),
		GeneratedAt:     s.displayTime(s.clock.Now()),
	}
}

func (s *Service) render(ctx context.Context, pass *boardingPass) (*checkindomain.BoardingPassDocument, error) {
	reader, err := s.pdf.GenerateBoardingPass(ctx, pass.data)
	if err != nil {
		return nil, fmt.Errorf("render boarding pass: %w", err)
	}
	var content []byte
	if reader != nil {
		content, err = io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("read boarding pass: %w", err)
		}
	}
	return &checkindomain.BoardingPassDocument{
		Filename: "boarding-pass-" + pass.data.ReservationCode + ".pdf",
		Content:  content,
	}, nil
}

func (s *Service) displayTime(t time.Time) string {
	return t.In(s.location).Format(displayTimeLayout)
}

func place(code, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return code
	}
	return code + " - " + name
}
