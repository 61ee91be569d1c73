package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	checkindomain "github.com/smallbiznis/airlink/internal/checkin/domain"
	obscontext "github.com/smallbiznis/airlink/internal/observability/context"
)

type confirmCheckInRequest struct {
	ReservationID flexibleID                             `json:"reservationId"`
	Passengers    map[string]checkindomain.SeatSelection `json:"passengers"`
}

type sendBoardingPassRequest struct {
	ReservationID flexibleID `json:"reservationId"`
}

func (s *Server) ConfirmCheckIn(c *gin.Context) {
	var req confirmCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	c.Set(obscontext.ReservationIDKey, req.ReservationID.Int64())
	resp, err := s.checkinSvc.ConfirmCheckIn(c.Request.Context(), checkindomain.ConfirmRequest{
		ReservationID: req.ReservationID.Int64(),
		Passengers:    req.Passengers,
	})
	if err != nil {
		s.checkinFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":              true,
		"message":         "Check-in confirmed",
		"assignedSeats":   resp.AssignedSeats,
		"boardingPassUrl": resp.BoardingPassURL,
	})
}

func (s *Server) DownloadBoardingPass(c *gin.Context) {
	reservationID, err := parsePathID(c.Param("reservationId"))
	if err != nil {
		s.checkinFailure(c, checkindomain.ErrInvalidReservation)
		return
	}
	c.Set(obscontext.ReservationIDKey, reservationID)

	doc, err := s.checkinSvc.BoardingPass(c.Request.Context(), reservationID)
	if err != nil {
		s.checkinFailure(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.DataFromReader(http.StatusOK, int64(len(doc.Content)), "application/pdf", bytes.NewReader(doc.Content), nil)
}

func (s *Server) SendBoardingPass(c *gin.Context) {
	var req sendBoardingPassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	c.Set(obscontext.ReservationIDKey, req.ReservationID.Int64())
	resp, err := s.checkinSvc.SendBoardingPass(c.Request.Context(), req.ReservationID.Int64())
	if err != nil {
		s.checkinFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "Boarding pass sent",
		"email":   resp.Email,
	})
}

// checkinFailure answers domain rejections with {ok:false, reason, message}
// and hands everything else to the error middleware.
func (s *Server) checkinFailure(c *gin.Context, err error) {
	status, reason, message := 0, "", ""
	switch {
	case errors.Is(err, checkindomain.ErrInvalidReservation):
		status, reason, message = http.StatusBadRequest, "invalid_reservation", "reservationId is required"
	case errors.Is(err, checkindomain.ErrAlreadyCheckedIn):
		status, reason, message = http.StatusBadRequest, "already_checked_in", "This reservation is already checked in"
	case errors.Is(err, checkindomain.ErrReservationNotFound):
		status, reason, message = http.StatusNotFound, "reservation_not_found", "Reservation not found"
	case errors.Is(err, checkindomain.ErrNoPassengers):
		status, reason, message = http.StatusNotFound, "no_passengers", "Reservation has no passengers"
	case errors.Is(err, checkindomain.ErrMissingOwnerEmail):
		status, reason, message = http.StatusUnprocessableEntity, "missing_email", "Reservation owner has no email address"
	default:
		AbortWithError(c, err)
		return
	}

	c.Set(obscontext.DecisionReasonKey, reason)
	c.JSON(status, gin.H{
		"ok":      false,
		"reason":  reason,
		"message": message,
	})
}
