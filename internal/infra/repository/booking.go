package repository

import (
	"context"
	"time"

	"roomstay/internal/domain/booking"
	"roomstay/internal/infra"
	"roomstay/internal/infra/db"

	"github.com/google/uuid"
)

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(dbtx db.DBTX) *BookingRepository {
	return &BookingRepository{db: dbtx}
}

// LockRoom takes the per-room row lock that serializes conflict checks.
// Every transaction that reads reservations before writing one must call
// this first; it is what makes read-then-write exclusive per room without
// relying on serializable isolation.
func (r *BookingRepository) LockRoom(ctx context.Context, tx db.DBTX, roomID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM rooms WHERE id = $1 FOR UPDATE`, roomID).Scan(&id)
	if err != nil {
		if infra.IsNoRows(err) {
			return infra.WrapRepoErr("room not found", err, infra.KindNotFound)
		}
		return infra.WrapRepoErr("failed to lock room", err)
	}
	return nil
}

// Snapshots loads the availability inputs for one room: every reservation's
// range, status, age, and whether its payment landed.
func (r *BookingRepository) Snapshots(ctx context.Context, dbtx db.DBTX, roomID uuid.UUID) ([]booking.Snapshot, error) {
	rows, err := dbtx.Query(ctx, `
		SELECT res.id, res.check_in, res.check_out, res.status, res.created_at,
		       COALESCE(pay.status = 'success', false)
		FROM reservations res
		LEFT JOIN payments pay ON pay.order_id = res.order_id
		WHERE res.room_id = $1`, roomID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load reservation snapshots", err)
	}
	defer rows.Close()

	var snapshots []booking.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan snapshot row", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate snapshot rows", err)
	}
	return snapshots, nil
}

// SnapshotsByProperty loads snapshots for every room of a property in one
// round trip, keyed by room id. Feeds the free-room search.
func (r *BookingRepository) SnapshotsByProperty(ctx context.Context, propertyID uuid.UUID) (map[uuid.UUID][]booking.Snapshot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT res.room_id, res.id, res.check_in, res.check_out, res.status, res.created_at,
		       COALESCE(pay.status = 'success', false)
		FROM reservations res
		JOIN rooms rm ON rm.id = res.room_id
		LEFT JOIN payments pay ON pay.order_id = res.order_id
		WHERE rm.property_id = $1`, propertyID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load property snapshots", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]booking.Snapshot)
	for rows.Next() {
		var roomID uuid.UUID
		var (
			id                uuid.UUID
			checkIn, checkOut time.Time
			status            string
			createdAt         time.Time
			paymentSucceeded  bool
		)
		if err := rows.Scan(&roomID, &id, &checkIn, &checkOut, &status, &createdAt, &paymentSucceeded); err != nil {
			return nil, infra.WrapRepoErr("failed to scan property snapshot row", err)
		}
		result[roomID] = append(result[roomID], booking.Snapshot{
			ReservationID:    id,
			Stay:             booking.ReconstructStayRange(checkIn, checkOut),
			Status:           booking.Status(status),
			CreatedAt:        createdAt,
			PaymentSucceeded: paymentSucceeded,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate property snapshot rows", err)
	}
	return result, nil
}

// Create persists the order, the reservation, and its guests in one shot.
// Caller supplies the transaction; partial application must never commit.
func (r *BookingRepository) Create(ctx context.Context, tx db.DBTX, b *booking.Booking) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO orders (id, guest_id, total_amount, created_at)
		VALUES ($1, $2, $3, $4)`,
		b.OrderID(), b.GuestID(), b.TotalAmount(), b.CreatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create order", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO reservations (id, order_id, room_id, guest_id, check_in, check_out,
		                          status, guest_count, total_amount, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		b.ID(), b.OrderID(), b.RoomID(), b.GuestID(),
		b.Stay().CheckIn(), b.Stay().CheckOut(),
		b.Status().String(), b.GuestCount(), b.TotalAmount(), b.Note().String(), b.CreatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create reservation", err)
	}

	for _, g := range b.Guests() {
		_, err = tx.Exec(ctx, `
			INSERT INTO reservation_guests (id, reservation_id, name, email, phone, is_primary)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), b.ID(), g.Name(), g.Email(), g.Phone(), g.IsPrimary())
		if err != nil {
			return infra.WrapRepoErr("failed to create reservation guest", err)
		}
	}

	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	var (
		orderID, roomID, guestID uuid.UUID
		checkIn, checkOut        time.Time
		status, note             string
		guestCount               int
		total                    int64
		createdAt                time.Time
	)
	err := dbtx.QueryRow(ctx, `
		SELECT order_id, room_id, guest_id, check_in, check_out,
		       status, guest_count, total_amount, note, created_at
		FROM reservations WHERE id = $1`, id).Scan(
		&orderID, &roomID, &guestID, &checkIn, &checkOut,
		&status, &guestCount, &total, &note, &createdAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by ID", err)
	}

	guests, err := r.findGuests(ctx, dbtx, id)
	if err != nil {
		return nil, err
	}

	return booking.ReconstructBooking(
		id, orderID, roomID, guestID,
		booking.ReconstructStayRange(checkIn, checkOut),
		booking.Status(status), guestCount, guests, total,
		booking.NewNote(note), createdAt,
	), nil
}

// FindByOrderID resolves the reservation behind an order. Used when gateway
// webhooks arrive carrying only payment-side identifiers.
func (r *BookingRepository) FindByOrderID(ctx context.Context, dbtx db.DBTX, orderID uuid.UUID) (*booking.Booking, error) {
	var id uuid.UUID
	err := dbtx.QueryRow(ctx, `SELECT id FROM reservations WHERE order_id = $1`, orderID).Scan(&id)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found for order", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by order ID", err)
	}
	return r.FindByID(ctx, dbtx, id)
}

func (r *BookingRepository) findGuests(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) ([]booking.Guest, error) {
	rows, err := dbtx.Query(ctx, `
		SELECT name, email, phone, is_primary
		FROM reservation_guests
		WHERE reservation_id = $1
		ORDER BY is_primary DESC, name`, reservationID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load reservation guests", err)
	}
	defer rows.Close()

	var guests []booking.Guest
	for rows.Next() {
		var name, email, phone string
		var isPrimary bool
		if err := rows.Scan(&name, &email, &phone, &isPrimary); err != nil {
			return nil, infra.WrapRepoErr("failed to scan guest row", err)
		}
		g, err := booking.NewGuest(name, email, phone, isPrimary)
		if err != nil {
			return nil, infra.WrapRepoErr("invalid guest row", err)
		}
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate guest rows", err)
	}
	return guests, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, tx db.DBTX, id uuid.UUID, status booking.Status) error {
	tag, err := tx.Exec(ctx, `UPDATE reservations SET status = $1 WHERE id = $2`, status.String(), id)
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

// DeleteAbandonedDrafts removes DRAFT reservations older than the cutoff.
// Deleting the parent order cascades to the reservation, its guests, and any
// payment row.
func (r *BookingRepository) DeleteAbandonedDrafts(ctx context.Context, dbtx db.DBTX, before time.Time) (int64, error) {
	tag, err := dbtx.Exec(ctx, `
		DELETE FROM orders o
		USING reservations res
		WHERE res.order_id = o.id
		  AND res.status = 'draft'
		  AND res.created_at < $1`, before)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete abandoned drafts", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteAbandonedPending removes PENDING reservations older than the cutoff
// whose payment never succeeded (no payment row, or one stuck in
// pending/failed).
func (r *BookingRepository) DeleteAbandonedPending(ctx context.Context, dbtx db.DBTX, before time.Time) (int64, error) {
	tag, err := dbtx.Exec(ctx, `
		DELETE FROM orders o
		USING reservations res
		WHERE res.order_id = o.id
		  AND res.status = 'pending'
		  AND res.created_at < $1
		  AND NOT EXISTS (
		      SELECT 1 FROM payments pay
		      WHERE pay.order_id = o.id AND pay.status = 'success'
		  )`, before)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete abandoned pending reservations", err)
	}
	return tag.RowsAffected(), nil
}

func scanSnapshot(row rowScanner) (booking.Snapshot, error) {
	var (
		id                uuid.UUID
		checkIn, checkOut time.Time
		status            string
		createdAt         time.Time
		paymentSucceeded  bool
	)
	if err := row.Scan(&id, &checkIn, &checkOut, &status, &createdAt, &paymentSucceeded); err != nil {
		return booking.Snapshot{}, err
	}
	return booking.Snapshot{
		ReservationID:    id,
		Stay:             booking.ReconstructStayRange(checkIn, checkOut),
		Status:           booking.Status(status),
		CreatedAt:        createdAt,
		PaymentSucceeded: paymentSucceeded,
	}, nil
}
