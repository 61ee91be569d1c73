package pdf

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const (
	noSeatQR    = "No seat"
	noSeatLabel = "Not assigned"
)

type BoardingPassData struct {
	CarrierName     string
	ReservationCode string
	FlightNumber    string
	Origin          string
	Destination     string
	Departure       string
	Arrival         string
	Passengers      []PassengerData
	Instructions    []string
	GeneratedAt     string
}

type PassengerData struct {
	FirstName string
	LastName  string
	Document  string
	Seat      string
}

func (p PassengerData) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// SeatLabel is the seat shown on the pass.
func (p PassengerData) SeatLabel() string {
	if strings.TrimSpace(p.Seat) == "" {
		return noSeatLabel
	}
	return p.Seat
}

// QRPayload encodes reservation code, passenger name and seat separated by '|'.
func QRPayload(reservationCode string, p PassengerData) string {
	seat := strings.TrimSpace(p.Seat)
	if seat == "" {
		seat = noSeatQR
	}
	return reservationCode + "|" + p.FullName() + "|" + seat
}

var ErrNoPassengers = errors.New("boarding pass requires at least one passenger")

func (p *PDFProvider) GenerateBoardingPass(ctx context.Context, data BoardingPassData) (io.Reader, error) {
	if len(data.Passengers) == 0 {
		return nil, ErrNoPassengers
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, "BOARDING PASS", props.Text{
			Size:  22,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)
	m.AddRow(10,
		text.NewCol(12, data.CarrierName, props.Text{Size: 12, Align: align.Center}),
	)

	m.AddRow(10,
		text.NewCol(12, "FLIGHT INFORMATION", props.Text{Size: 10, Style: fontstyle.Bold, Top: 3}),
	)
	m.AddRow(28,
		col.New(6).Add(
			text.New("Reservation code: "+data.ReservationCode, props.Text{Size: 9}),
			text.New("Origin: "+data.Origin, props.Text{Size: 9, Top: 6}),
			text.New("Departure: "+data.Departure, props.Text{Size: 9, Top: 12}),
		),
		col.New(6).Add(
			text.New("Flight: "+data.FlightNumber, props.Text{Size: 9}),
			text.New("Destination: "+data.Destination, props.Text{Size: 9, Top: 6}),
			text.New("Arrival: "+data.Arrival, props.Text{Size: 9, Top: 12}),
		),
	)

	for _, passenger := range data.Passengers {
		m.AddRow(10,
			text.NewCol(12, "PASSENGER INFORMATION", props.Text{Size: 10, Style: fontstyle.Bold, Top: 3}),
		)
		m.AddRow(50,
			col.New(7).Add(
				text.New("Name: "+passenger.FullName(), props.Text{Size: 9}),
				text.New("Document: "+passenger.Document, props.Text{Size: 9, Top: 6}),
				text.New("Seat: "+passenger.SeatLabel(), props.Text{Size: 9, Top: 12}),
			),
			code.NewQrCol(5, QRPayload(data.ReservationCode, passenger), props.Rect{
				Center:  true,
				Percent: 90,
			}),
		)
	}

	for _, line := range data.Instructions {
		m.AddRow(6,
			text.NewCol(12, line, props.Text{Size: 8, Align: align.Center}),
		)
	}

	m.AddRow(12,
		col.New(12).Add(
			text.New("This is a valid electronic document.", props.Text{Size: 7, Align: align.Center, Top: 4}),
			text.New("Generated on "+data.GeneratedAt, props.Text{Size: 7, Align: align.Center, Top: 8}),
		),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
