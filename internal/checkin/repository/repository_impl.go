package repository

import (
	"context"

	checkindomain "github.com/smallbiznis/airlink/internal/checkin/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) checkindomain.Repository {
	return &repository{db: db}
}

func (r *repository) FindReservation(ctx context.Context, id int64) (*checkindomain.Reservation, error) {
	var res checkindomain.Reservation
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, code, user_id, trip_id, status
		 FROM reservations
		 WHERE id = ?`,
		id,
	).Scan(&res).Error
	if err != nil {
		return nil, err
	}
	if res.ID == 0 {
		return nil, nil
	}
	return &res, nil
}

func (r *repository) MarkCheckedIn(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE reservations SET status = ? WHERE id = ? AND status <> ?`,
		string(checkindomain.StatusCheckedIn),
		id,
		string(checkindomain.StatusCheckedIn),
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListPassengerIDs(ctx context.Context, reservationID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Table("passengers").
		Where("reservation_id = ?", reservationID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *repository) FindSeat(ctx context.Context, tripID int64, number string) (*checkindomain.Seat, error) {
	var seat checkindomain.Seat
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, trip_id, number, available
		 FROM seats
		 WHERE trip_id = ? AND number = ?`,
		tripID,
		number,
	).Scan(&seat).Error
	if err != nil {
		return nil, err
	}
	if seat.ID == 0 {
		return nil, nil
	}
	return &seat, nil
}

func (r *repository) AssignSeat(ctx context.Context, assignment checkindomain.PassengerSeat) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "passenger_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"seat_id"}),
		}).
		Create(&assignment).Error
}

func (r *repository) MarkSeatUnavailable(ctx context.Context, seatID int64) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE seats SET available = ? WHERE id = ?`,
		false,
		seatID,
	).Error
}

func (r *repository) FindItinerary(ctx context.Context, reservationID int64) (*checkindomain.Itinerary, error) {
	var it checkindomain.Itinerary
	err := r.db.WithContext(ctx).Raw(
		`SELECT r.id AS reservation_id, r.code, r.status,
			t.id AS trip_id, t.flight_number, t.origin_code, t.origin_name,
			t.destination_code, t.destination_name, t.departure_at, t.arrival_at, t.carrier_name,
			u.email AS owner_email, u.name AS owner_name
		 FROM reservations r
		 JOIN trips t ON t.id = r.trip_id
		 JOIN users u ON u.id = r.user_id
		 WHERE r.id = ?`,
		reservationID,
	).Scan(&it).Error
	if err != nil {
		return nil, err
	}
	if it.ReservationID == 0 {
		return nil, nil
	}
	return &it, nil
}

func (r *repository) ListPassengerSeats(ctx context.Context, reservationID int64) ([]checkindomain.PassengerSeatView, error) {
	var items []checkindomain.PassengerSeatView
	err := r.db.WithContext(ctx).Raw(
		`SELECT p.id AS passenger_id, p.first_name, p.last_name, p.document, s.number AS seat_number
		 FROM passengers p
		 LEFT JOIN passenger_seats ps ON ps.passenger_id = p.id
		 LEFT JOIN seats s ON s.id = ps.seat_id
		 WHERE p.reservation_id = ?
		 ORDER BY p.id ASC`,
		reservationID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
