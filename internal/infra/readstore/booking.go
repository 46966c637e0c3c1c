package readstore

import (
	"context"
	"time"

	"roomstay/internal/infra"
	"roomstay/internal/infra/db"
	"roomstay/internal/usecase/queries"

	"github.com/google/uuid"
)

// BookingReadStore serves the denormalized reservation views. It reads with
// plain joins against the pool; read paths never take the room lock.
type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: dbtx}
}

const listColumns = `
	res.id, res.room_id, rm.name, p.name, res.check_in, res.check_out,
	res.status, res.guest_count, res.total_amount, res.created_at
`

func (s *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	var (
		view     queries.ReservationView
		note     *string
		payState *string
		orderRef *string
		refund   *int64
		procAt   *time.Time
		payTotal *int64
	)
	err := s.db.QueryRow(ctx, `
		SELECT res.id, res.order_id, res.room_id, rm.name, p.name, p.vendor_id,
		       res.guest_id, res.check_in, res.check_out, res.status,
		       res.guest_count, res.total_amount, NULLIF(res.note, ''), res.created_at,
		       pay.status, pay.gateway_order_ref, pay.total_amount, pay.refund_amount, pay.processed_at
		FROM reservations res
		JOIN rooms rm ON rm.id = res.room_id
		JOIN properties p ON p.id = rm.property_id
		LEFT JOIN payments pay ON pay.order_id = res.order_id
		WHERE res.id = $1`, id).Scan(
		&view.ID, &view.OrderID, &view.RoomID, &view.RoomName, &view.PropertyName, &view.VendorID,
		&view.GuestID, &view.CheckIn, &view.CheckOut, &view.Status,
		&view.GuestCount, &view.TotalAmount, &note, &view.CreatedAt,
		&payState, &orderRef, &payTotal, &refund, &procAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation view not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load reservation view", err)
	}
	view.Note = note

	if payState != nil {
		pv := &queries.PaymentView{Status: *payState, TotalAmount: view.TotalAmount}
		if orderRef != nil {
			pv.GatewayOrderRef = *orderRef
		}
		if payTotal != nil {
			pv.TotalAmount = *payTotal
		}
		pv.RefundAmount = refund
		pv.ProcessedAt = procAt
		view.Payment = pv
	}

	guests, err := s.findGuests(ctx, id)
	if err != nil {
		return nil, err
	}
	view.Guests = guests

	return &view, nil
}

func (s *BookingReadStore) findGuests(ctx context.Context, reservationID uuid.UUID) ([]queries.GuestView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT name, email, phone, is_primary
		FROM reservation_guests
		WHERE reservation_id = $1
		ORDER BY is_primary DESC, name`, reservationID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load guest views", err)
	}
	defer rows.Close()

	var guests []queries.GuestView
	for rows.Next() {
		var g queries.GuestView
		if err := rows.Scan(&g.Name, &g.Email, &g.Phone, &g.IsPrimary); err != nil {
			return nil, infra.WrapRepoErr("failed to scan guest view row", err)
		}
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate guest view rows", err)
	}
	return guests, nil
}

func (s *BookingReadStore) ListByGuest(ctx context.Context, guestID uuid.UUID) ([]*queries.ReservationListItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+listColumns+`
		FROM reservations res
		JOIN rooms rm ON rm.id = res.room_id
		JOIN properties p ON p.id = rm.property_id
		WHERE res.guest_id = $1
		ORDER BY res.created_at DESC`, guestID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservations by guest", err)
	}
	return scanListItems(rows)
}

// ListByVendor hides abandoned checkouts from vendors: an unpaid PENDING
// reservation older than the cutoff is a guest who walked away and will be
// reaped shortly. Live checkouts and anything paid always show.
func (s *BookingReadStore) ListByVendor(ctx context.Context, vendorID uuid.UUID, pendingCutoff time.Time) ([]*queries.ReservationListItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+listColumns+`
		FROM reservations res
		JOIN rooms rm ON rm.id = res.room_id
		JOIN properties p ON p.id = rm.property_id
		LEFT JOIN payments pay ON pay.order_id = res.order_id
		WHERE p.vendor_id = $1
		  AND res.status <> 'draft'
		  AND (res.status <> 'pending'
		       OR COALESCE(pay.status, '') = 'success'
		       OR res.created_at >= $2)
		ORDER BY res.check_in`, vendorID, pendingCutoff)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservations by vendor", err)
	}
	return scanListItems(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

func scanListItems(rows pgxRows) ([]*queries.ReservationListItem, error) {
	defer rows.Close()

	var items []*queries.ReservationListItem
	for rows.Next() {
		var item queries.ReservationListItem
		err := rows.Scan(
			&item.ID, &item.RoomID, &item.RoomName, &item.PropertyName,
			&item.CheckIn, &item.CheckOut, &item.Status,
			&item.GuestCount, &item.TotalAmount, &item.CreatedAt)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation list row", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservation list rows", err)
	}
	return items, nil
}
