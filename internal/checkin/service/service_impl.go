package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	checkindomain "github.com/smallbiznis/airlink/internal/checkin/domain"
	"github.com/smallbiznis/airlink/internal/clock"
	"github.com/smallbiznis/airlink/internal/config"
	"github.com/smallbiznis/airlink/internal/observability/logger"
	"github.com/smallbiznis/airlink/internal/observability/metrics"
	"github.com/smallbiznis/airlink/internal/providers/email"
	"github.com/smallbiznis/airlink/internal/providers/pdf"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type serviceParams struct {
	fx.In

	Log        *zap.Logger
	Repo       checkindomain.Repository
	Clock      clock.Clock
	Cfg        config.Config
	Storefront *config.StorefrontHolder
	PDF        pdf.Provider
	Email      email.Provider
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	repo       checkindomain.Repository
	clock      clock.Clock
	location   *time.Location
	storefront *config.StorefrontHolder
	pdf        pdf.Provider
	email      email.Provider
	metrics    *metrics.Metrics
}

func NewService(p serviceParams) checkindomain.Service {
	log := p.Log.Named("checkin.service")

	loc := time.UTC
	if name := strings.TrimSpace(p.Cfg.Store.Timezone); name != "" {
		if loaded, err := time.LoadLocation(name); err == nil {
			loc = loaded
		} else {
			log.Warn("unknown store timezone, using UTC", zap.String("timezone", name), zap.Error(err))
		}
	}

	return &Service{
		log:        log,
		repo:       p.Repo,
		clock:      p.Clock,
		location:   loc,
		storefront: p.Storefront,
		pdf:        p.PDF,
		email:      p.Email,
		metrics:    p.Metrics,
	}
}

func BoardingPassURL(reservationID int64) string {
	return fmt.Sprintf("/api/checkin/boarding-pass/%d", reservationID)
}

func (s *Service) ConfirmCheckIn(ctx context.Context, req checkindomain.ConfirmRequest) (*checkindomain.ConfirmResponse, error) {
	resp, err := s.confirmCheckIn(ctx, req)
	s.metrics.RecordCheckIn(ctx, reasonFor(err))
	return resp, err
}

func (s *Service) confirmCheckIn(ctx context.Context, req checkindomain.ConfirmRequest) (*checkindomain.ConfirmResponse, error) {
	if req.ReservationID <= 0 {
		return nil, checkindomain.ErrInvalidReservation
	}

	reservation, err := s.repo.FindReservation(ctx, req.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	if reservation == nil {
		return nil, checkindomain.ErrReservationNotFound
	}
	if reservation.Status == checkindomain.StatusCheckedIn {
		return nil, checkindomain.ErrAlreadyCheckedIn
	}

	updated, err := s.repo.MarkCheckedIn(ctx, reservation.ID)
	if err != nil {
		return nil, fmt.Errorf("mark checked in: %w", err)
	}
	if !updated {
		return nil, checkindomain.ErrAlreadyCheckedIn
	}

	assigned, err := s.assignSeats(ctx, reservation, req.Passengers)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.log).Info("check-in confirmed",
		zap.Int64("reservation_id", reservation.ID),
		zap.Int("seats_assigned", assigned),
	)

	return &checkindomain.ConfirmResponse{
		ReservationID:   reservation.ID,
		AssignedSeats:   assigned,
		BoardingPassURL: BoardingPassURL(reservation.ID),
	}, nil
}

// assignSeats resolves each requested seat on the reservation's trip.
// Unknown passengers and unresolved seats are skipped.
func (s *Service) assignSeats(ctx context.Context, reservation *checkindomain.Reservation, selections map[string]checkindomain.SeatSelection) (int, error) {
	if len(selections) == 0 {
		return 0, nil
	}

	ids, err := s.repo.ListPassengerIDs(ctx, reservation.ID)
	if err != nil {
		return 0, fmt.Errorf("list passengers: %w", err)
	}
	onReservation := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		onReservation[id] = struct{}{}
	}

	keys := make([]string, 0, len(selections))
	for key := range selections {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	log := logger.WithContext(ctx, s.log)
	assigned := 0
	for _, key := range keys {
		number := strings.ToUpper(strings.TrimSpace(selections[key].Seat))
		if number == "" {
			continue
		}
		passengerID, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			log.Debug("skipping malformed passenger id", zap.String("passenger", key))
			continue
		}
		if _, ok := onReservation[passengerID]; !ok {
			log.Debug("skipping passenger outside reservation", zap.Int64("passenger_id", passengerID))
			continue
		}

		seat, err := s.repo.FindSeat(ctx, reservation.TripID, number)
		if err != nil {
			return assigned, fmt.Errorf("find seat: %w", err)
		}
		if seat == nil {
			log.Debug("seat not found on trip", zap.String("seat", number), zap.Int64("trip_id", reservation.TripID))
			continue
		}

		if err := s.repo.AssignSeat(ctx, checkindomain.PassengerSeat{PassengerID: passengerID, SeatID: seat.ID}); err != nil {
			return assigned, fmt.Errorf("assign seat: %w", err)
		}
		if err := s.repo.MarkSeatUnavailable(ctx, seat.ID); err != nil {
			return assigned, fmt.Errorf("mark seat unavailable: %w", err)
		}
		assigned++
	}
	return assigned, nil
}

func (s *Service) BoardingPass(ctx context.Context, reservationID int64) (*checkindomain.BoardingPassDocument, error) {
	pass, err := s.loadBoardingPass(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, pass)
}

func (s *Service) SendBoardingPass(ctx context.Context, reservationID int64) (*checkindomain.SendResponse, error) {
	resp, err := s.sendBoardingPass(ctx, reservationID)
	switch {
	case err == nil:
		s.metrics.RecordBoardingPassEmail(ctx, "ok")
	case errors.Is(err, errSendFailed):
		s.metrics.RecordBoardingPassEmail(ctx, "send_failed")
	default:
		s.metrics.RecordBoardingPassEmail(ctx, reasonFor(err))
	}
	return resp, err
}

var errSendFailed = errors.New("boarding pass email failed")

func (s *Service) sendBoardingPass(ctx context.Context, reservationID int64) (*checkindomain.SendResponse, error) {
	pass, err := s.loadBoardingPass(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	to := strings.TrimSpace(pass.ownerEmail)
	if to == "" {
		return nil, checkindomain.ErrMissingOwnerEmail
	}

	doc, err := s.render(ctx, pass)
	if err != nil {
		return nil, err
	}

	storefront := s.storefront.Get()
	msg := email.Message{
		To:      []string{to},
		Subject: emailSubject(storefront.EmailSubject, pass.data.ReservationCode),
		Attachments: []email.Attachment{{
			Filename:    doc.Filename,
			ContentType: "application/pdf",
			Content:     doc.Content,
		}},
	}
	data := map[string]interface{}{
		"PassengerName":   pass.data.Passengers[0].FullName(),
		"CarrierName":     pass.data.CarrierName,
		"ReservationCode": pass.data.ReservationCode,
		"FlightNumber":    pass.data.FlightNumber,
		"Origin":          pass.data.Origin,
		"Destination":     pass.data.Destination,
		"Departure":       pass.data.Departure,
		"Passengers":      pass.data.Passengers,
		"Instructions":    pass.data.Instructions,
		"SupportEmail":    storefront.SupportEmail,
	}

	if err := s.email.SendTemplate(ctx, msg, "boarding_pass", data); err != nil {
		logger.WithContext(ctx, s.log).Error("boarding pass email failed",
			zap.Int64("reservation_id", reservationID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", errSendFailed, err)
	}

	logger.WithContext(ctx, s.log).Info("boarding pass emailed", zap.Int64("reservation_id", reservationID))
	return &checkindomain.SendResponse{Email: to}, nil
}

func emailSubject(template, code string) string {
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, code)
	}
	if template == "" {
		return "Boarding pass - Reservation " + code
	}
	return template
}

func reasonFor(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, checkindomain.ErrInvalidReservation):
		return "invalid_reservation"
	case errors.Is(err, checkindomain.ErrReservationNotFound):
		return "reservation_not_found"
	case errors.Is(err, checkindomain.ErrAlreadyCheckedIn):
		return "already_checked_in"
	case errors.Is(err, checkindomain.ErrNoPassengers):
		return "no_passengers"
	case errors.Is(err, checkindomain.ErrMissingOwnerEmail):
		return "missing_email"
	default:
		return "error"
	}
}
