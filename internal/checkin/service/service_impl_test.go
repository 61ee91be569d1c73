package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	checkindomain "github.com/smallbiznis/airlink/internal/checkin/domain"
	checkinrepo "github.com/smallbiznis/airlink/internal/checkin/repository"
	"github.com/smallbiznis/airlink/internal/clock"
	"github.com/smallbiznis/airlink/internal/config"
	"github.com/smallbiznis/airlink/internal/providers/email"
	"github.com/smallbiznis/airlink/internal/providers/pdf"
	"github.com/smallbiznis/airlink/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakePDF struct {
	calls []pdf.BoardingPassData
}

func (f *fakePDF) GenerateBoardingPass(ctx context.Context, data pdf.BoardingPassData) (io.Reader, error) {
	f.calls = append(f.calls, data)
	return bytes.NewReader([]byte("%PDF-fake")), nil
}

type sentTemplate struct {
	msg  email.Message
	name string
	data interface{}
}

type fakeEmail struct {
	sent []sentTemplate
	err  error
}

func (f *fakeEmail) Send(ctx context.Context, msg email.Message) error { return f.err }

func (f *fakeEmail) SendTemplate(ctx context.Context, msg email.Message, name string, data interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentTemplate{msg: msg, name: name, data: data})
	return nil
}

type fixture struct {
	db    *gorm.DB
	svc   *Service
	pdf   *fakePDF
	email *fakeEmail
}

func setupService(t *testing.T) fixture {
	t.Helper()

	db := testutil.OpenSQLite(t)
	fp := &fakePDF{}
	fe := &fakeEmail{}
	svc := NewService(serviceParams{
		Log:        zap.NewNop(),
		Repo:       checkinrepo.NewRepository(db),
		Clock:      clock.NewFakeClock(time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)),
		Cfg:        config.Config{Store: config.StoreConfig{Timezone: "UTC"}},
		Storefront: config.NewStaticStorefrontHolder(config.StorefrontConfig{CarrierName: "AirLink", FlightPrefix: "AL"}),
		PDF:        fp,
		Email:      fe,
	}).(*Service)

	return fixture{db: db, svc: svc, pdf: fp, email: fe}
}

// seedReservation creates reservation 100 on trip 10 with passengers 1 and 2
// and seats 12A and 12B.
func (f fixture) seedReservation(t *testing.T, ownerEmail string) {
	t.Helper()
	departure := time.Date(2026, 5, 20, 8, 30, 0, 0, time.UTC)
	stmts := []struct {
		sql  string
		args []interface{}
	}{
		{`INSERT INTO users (id, email, name) VALUES (?, ?, ?)`, []interface{}{1, ownerEmail, "Ana Rojas"}},
		{`INSERT INTO trips (id, flight_number, origin_code, origin_name, destination_code, destination_name, departure_at, arrival_at)
		  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, []interface{}{10, "", "SCL", "Santiago", "PMC", "Puerto Montt", departure, departure.Add(2 * time.Hour)}},
		{`INSERT INTO reservations (id, code, user_id, trip_id, status) VALUES (?, ?, ?, ?, ?)`, []interface{}{100, "ABC123", 1, 10, "confirmed"}},
		{`INSERT INTO passengers (id, reservation_id, first_name, last_name, document) VALUES (?, ?, ?, ?, ?)`, []interface{}{1, 100, "Ana", "Rojas", "11.111.111-1"}},
		{`INSERT INTO passengers (id, reservation_id, first_name, last_name, document) VALUES (?, ?, ?, ?, ?)`, []interface{}{2, 100, "Luis", "Rojas", "22.222.222-2"}},
		{`INSERT INTO seats (id, trip_id, number, available) VALUES (?, ?, ?, ?)`, []interface{}{1000, 10, "12A", true}},
		{`INSERT INTO seats (id, trip_id, number, available) VALUES (?, ?, ?, ?)`, []interface{}{1001, 10, "12B", true}},
	}
	for _, stmt := range stmts {
		require.NoError(t, f.db.Exec(stmt.sql, stmt.args...).Error)
	}
}

func (f fixture) status(t *testing.T, id int64) string {
	t.Helper()
	var status string
	require.NoError(t, f.db.Raw(`SELECT status FROM reservations WHERE id = ?`, id).Scan(&status).Error)
	return status
}

func TestConfirmCheckInAssignsSeats(t *testing.T) {
	f := setupService(t)
	f.seedReservation(t, "ana@example.com")

	resp, err := f.svc.ConfirmCheckIn(context.Background(), checkindomain.ConfirmRequest{
		ReservationID: 100,
		Passengers: map[string]checkindomain.SeatSelection{
			"1":  {Seat: "12a"},
			"2":  {Seat: "99Z"},
			"77": {Seat: "12B"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), resp.ReservationID)
	assert.Equal(t, 1, resp.AssignedSeats)
	assert.Equal(t, "/api/checkin/boarding-pass/100", resp.BoardingPassURL)
	assert.Equal(t, "checked_in", f.status(t, 100))

	var seatID int64
	require.NoError(t, f.db.Raw(`SELECT seat_id FROM passenger_seats WHERE passenger_id = 1`).Scan(&seatID).Error)
	assert.Equal(t, int64(1000), seatID)

	var available bool
	require.NoError(t, f.db.Raw(`SELECT available FROM seats WHERE id = 1000`).Scan(&available).Error)
	assert.False(t, available)

	var others int64
	require.NoError(t, f.db.Raw(`SELECT COUNT(*) FROM passenger_seats WHERE passenger_id <> 1`).Scan(&others).Error)
	assert.Zero(t, others)
}

func TestConfirmCheckInWithoutSeats(t *testing.T) {
	f := setupService(t)
	f.seedReservation(t, "ana@example.com")

	resp, err := f.svc.ConfirmCheckIn(context.Background(), checkindomain.ConfirmRequest{ReservationID: 100})
	require.NoError(t, err)
	assert.Zero(t, resp.AssignedSeats)
	assert.Equal(t, "checked_in", f.status(t, 100))
}

func TestConfirmCheckInRejectsRepeat(t *testing.T) {
	f := setupService(t)
	f.seedReservation(t, "ana@example.com")
	ctx := context.Background()

	_, err := f.svc.ConfirmCheckIn(ctx, checkindomain.ConfirmRequest{ReservationID: 100})
	require.NoError(t, err)

	_, err = f.svc.ConfirmCheckIn(ctx, checkindomain.ConfirmRequest{ReservationID: 100})
	assert.ErrorIs(t, err, checkindomain.ErrAlreadyCheckedIn)
}

func TestConfirmCheckInValidation(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	_, err := f.svc.ConfirmCheckIn(ctx, checkindomain.ConfirmRequest{})
	assert.ErrorIs(t, err, checkindomain.ErrInvalidReservation)

	_, err = f.svc.ConfirmCheckIn(ctx, checkindomain.ConfirmRequest{ReservationID: 404})
	assert.ErrorIs(t, err, checkindomain.ErrReservationNotFound)
}

func TestBoardingPassRendersItinerary(t *testing.T) {
	f := setupService(t)
	f.seedReservation(t, "ana@example.com")
	ctx := context.Background()

	_, err := f.svc.ConfirmCheckIn(ctx, checkindomain.ConfirmRequest{
		ReservationID: 100,
		Passengers:    map[string]checkindomain.SeatSelection{"1": {Seat: "12A"}},
	})
	require.NoError(t, err)

	doc, err := f.svc.BoardingPass(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "boarding-pass-ABC123.pdf", doc.Filename)
	assert.Equal(t, []byte("%PDF-fake"), doc.Content)

	require.Len(t, f.pdf.calls, 1)
	data := f.pdf.calls[0]
	assert.Equal(t, "AirLink", data.CarrierName)
	assert.Equal(t, "AL 10", data.FlightNumber)
	assert.Equal(t, "SCL - Santiago", data.Origin)
	assert.Equal(t, "PMC - Puerto Montt", data.Destination)
	assert.Equal(t, "2026-05-20 08:30", data.Departure)
	require.Len(t, data.Passengers, 2)
	assert.Equal(t, "12A", data.Passengers[0].Seat)
	assert.Equal(t, "", data.Passengers[1].Seat)
	assert.NotEmpty(t, data.Instructions)
}

func TestBoardingPassUnknownReservation(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.BoardingPass(context.Background(), 404)
	assert.ErrorIs(t, err, checkindomain.ErrReservationNotFound)
	assert.Empty(t, f.pdf.calls)
}

func TestSendBoardingPassEmailsOwner(t *testing.T) {
	f := setupService(t)
	f.seedReservation(t, "ana@example.com")

	resp, err := f.svc.SendBoardingPass(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", resp.Email)

	require.Len(t, f.email.sent, 1)
	sent := f.email.sent[0]
	assert.Equal(t, "boarding_pass", sent.name)
	assert.Equal(t, []string{"ana@example.com"}, sent.msg.To)
	assert.Equal(t, "Boarding pass - Reservation ABC123", sent.msg.Subject)
	require.Len(t, sent.msg.Attachments, 1)
	assert.Equal(t, "boarding-pass-ABC123.pdf", sent.msg.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", sent.msg.Attachments[0].ContentType)
}

func TestSendBoardingPassMissingEmail(t *testing.T) {
	f := setupService(t)
	f.seedReservation(t, "  ")

	_, err := f.svc.SendBoardingPass(context.Background(), 100)
	assert.ErrorIs(t, err, checkindomain.ErrMissingOwnerEmail)
	assert.Empty(t, f.email.sent)
}

func TestSendBoardingPassProviderFailure(t *testing.T) {
	f := setupService(t)
	f.seedReservation(t, "ana@example.com")
	f.email.err = errors.New("smtp down")

	_, err := f.svc.SendBoardingPass(context.Background(), 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, errSendFailed)
}

func TestEmailSubject(t *testing.T) {
	assert.Equal(t, "Pass ABC", emailSubject("Pass %s", "ABC"))
	assert.Equal(t, "Your pass", emailSubject("Your pass", "ABC"))
	assert.Equal(t, "Boarding pass - Reservation ABC", emailSubject("", "ABC"))
}
