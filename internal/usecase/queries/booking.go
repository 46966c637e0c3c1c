package queries

import (
	"context"
	"time"

	"roomstay/internal/domain/booking"
	"roomstay/internal/domain/room"
	"roomstay/internal/domain/user"
	"roomstay/internal/infra"
	"roomstay/internal/pkg/clock"
	"roomstay/internal/pkg/errs"
	"roomstay/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrReservationNotFound = errs.New("reservation not found")
	ErrForbidden           = errs.New("viewer may not see this reservation")
)

// Read models (DTO for read side)
type GuestView struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IsPrimary bool   `json:"is_primary"`
}

type PaymentView struct {
	Status          string     `json:"status"`
	GatewayOrderRef string     `json:"gateway_order_ref,omitempty"`
	TotalAmount     int64      `json:"total_amount"`
	RefundAmount    *int64     `json:"refund_amount,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
}

type ReservationView struct {
	ID           uuid.UUID    `json:"id"`
	OrderID      uuid.UUID    `json:"order_id"`
	RoomID       uuid.UUID    `json:"room_id"`
	RoomName     string       `json:"room_name"`
	PropertyName string       `json:"property_name"`
	GuestID      uuid.UUID    `json:"guest_id"`
	CheckIn      time.Time    `json:"check_in"`
	CheckOut     time.Time    `json:"check_out"`
	Status       string       `json:"status"`
	GuestCount   int          `json:"guest_count"`
	TotalAmount  int64        `json:"total_amount"`
	Note         *string      `json:"note,omitempty"`
	Guests       []GuestView  `json:"guests,omitempty"`
	Payment      *PaymentView `json:"payment,omitempty"`
	VendorID     uuid.UUID    `json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
}

type ReservationListItem struct {
	ID           uuid.UUID `json:"id"`
	RoomID       uuid.UUID `json:"room_id"`
	RoomName     string    `json:"room_name"`
	PropertyName string    `json:"property_name"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	Status       string    `json:"status"`
	GuestCount   int       `json:"guest_count"`
	TotalAmount  int64     `json:"total_amount"`
	CreatedAt    time.Time `json:"created_at"`
}

type AvailableRoomItem struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	NightlyRate int64     `json:"nightly_rate"`
	Amenities   []string  `json:"amenities,omitempty"`
}

// BookingViewRepo is the read-store port.
type BookingViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	ListByGuest(ctx context.Context, guestID uuid.UUID) ([]*ReservationListItem, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, pendingCutoff time.Time) ([]*ReservationListItem, error)
}

type RoomLister interface {
	FindByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*room.Room, error)
}

type SnapshotsByPropertyLoader interface {
	SnapshotsByProperty(ctx context.Context, propertyID uuid.UUID) (map[uuid.UUID][]booking.Snapshot, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*ReservationView, error)
	ListForViewer(ctx context.Context, viewer shared.Viewer) ([]*ReservationListItem, error)
	AvailableRooms(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) ([]*AvailableRoomItem, error)
}

type bookingQueriesImpl struct {
	views               BookingViewRepo
	rooms               RoomLister
	snapshots           SnapshotsByPropertyLoader
	clock               clock.Clock
	vendorPendingFilter time.Duration
}

func NewBookingQueries(
	views BookingViewRepo,
	rooms RoomLister,
	snapshots SnapshotsByPropertyLoader,
	clk clock.Clock,
	vendorPendingFilter time.Duration,
) BookingQueries {
	return &bookingQueriesImpl{
		views:               views,
		rooms:               rooms,
		snapshots:           snapshots,
		clock:               clk,
		vendorPendingFilter: vendorPendingFilter,
	}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*ReservationView, error) {
	view, err := q.views.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	projected, ok := ProjectForViewer(view, viewer)
	if !ok {
		return nil, ErrForbidden
	}
	return projected, nil
}

func (q *bookingQueriesImpl) ListForViewer(ctx context.Context, viewer shared.Viewer) ([]*ReservationListItem, error) {
	if viewer.IsVendor() {
		cutoff := q.clock.Now().Add(-q.vendorPendingFilter)
		return q.views.ListByVendor(ctx, viewer.ID, cutoff)
	}
	return q.views.ListByGuest(ctx, viewer.ID)
}

// AvailableRooms computes a property's free rooms for a date range by
// running the blocking rule over each room's reservation snapshots.
func (q *bookingQueriesImpl) AvailableRooms(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) ([]*AvailableRoomItem, error) {
	now := q.clock.Now()
	requested, err := booking.NewStayRange(checkIn, checkOut, now)
	if err != nil {
		return nil, err
	}

	rooms, err := q.rooms.FindByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	snapshotsByRoom, err := q.snapshots.SnapshotsByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	var result []*AvailableRoomItem
	for _, rm := range rooms {
		if !rm.IsAvailable() {
			continue
		}
		if booking.AnyBlocking(snapshotsByRoom[rm.ID()], requested, now, nil) {
			continue
		}
		result = append(result, &AvailableRoomItem{
			ID:          rm.ID(),
			Name:        rm.Name(),
			Capacity:    rm.Capacity(),
			NightlyRate: rm.NightlyPriceFor(requested.CheckIn().Month()),
			Amenities:   rm.Amenities(),
		})
	}
	return result, nil
}

// ProjectForViewer shapes one reservation for the viewer's role. Pure
// function, deliberately outside the state machine: guests see their own
// reservation in full, the owning vendor sees it without guest contact
// details, admins see everything. The second return is false when the viewer
// may not see the reservation at all.
func ProjectForViewer(v *ReservationView, viewer shared.Viewer) (*ReservationView, bool) {
	switch viewer.Role {
	case user.RoleAdmin:
		return v, true
	case user.RoleVendor:
		if v.VendorID != viewer.ID {
			return nil, false
		}
		trimmed := *v
		trimmed.Guests = make([]GuestView, len(v.Guests))
		for i, g := range v.Guests {
			trimmed.Guests[i] = GuestView{Name: g.Name, IsPrimary: g.IsPrimary}
		}
		return &trimmed, true
	default:
		if v.GuestID != viewer.ID {
			return nil, false
		}
		return v, true
	}
}
