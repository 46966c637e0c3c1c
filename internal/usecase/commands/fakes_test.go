//go:build unit

package commands_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"roomstay/internal/domain/booking"
	"roomstay/internal/domain/payment"
	"roomstay/internal/domain/room"
	"roomstay/internal/domain/user"
	"roomstay/internal/infra"
	"roomstay/internal/infra/db"
	"roomstay/internal/infra/gateway"
	"roomstay/internal/pkg/clock"
	"roomstay/internal/pkg/config"
	"roomstay/internal/pkg/errs"
	"roomstay/internal/usecase/commands"
	"roomstay/internal/usecase/shared"

	"github.com/google/uuid"
)

// fakeStore backs the repository ports with maps. Its RunInTx takes one
// process-wide lock, which models what the per-room row lock gives the real
// implementation: transactions that read then write never interleave. It also
// models rollback: when the transaction function errors, every write it made
// is discarded, same as pgx.
type fakeStore struct {
	mu       sync.Mutex
	rooms    map[uuid.UUID]*room.Room
	bookings map[uuid.UUID]*booking.Booking
	payments map[uuid.UUID]*payment.Payment // keyed by order id
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:    make(map[uuid.UUID]*room.Room),
		bookings: make(map[uuid.UUID]*booking.Booking),
		payments: make(map[uuid.UUID]*payment.Payment),
	}
}

func (s *fakeStore) RunInTx(_ context.Context, fn func(tx db.DBTX) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookings := make(map[uuid.UUID]booking.Booking, len(s.bookings))
	for id, b := range s.bookings {
		bookings[id] = *b
	}
	payments := make(map[uuid.UUID]payment.Payment, len(s.payments))
	for id, p := range s.payments {
		payments[id] = *p
	}

	err := fn(nil)
	if err == nil {
		return nil
	}

	// Rollback: restore rows the transaction touched, drop ones it created,
	// and resurrect ones it deleted.
	for id, b := range s.bookings {
		if snap, ok := bookings[id]; ok {
			*b = snap
		} else {
			delete(s.bookings, id)
		}
	}
	for id, p := range s.payments {
		if snap, ok := payments[id]; ok {
			*p = snap
		} else {
			delete(s.payments, id)
		}
	}
	for id, snap := range bookings {
		if _, ok := s.bookings[id]; !ok {
			b := snap
			s.bookings[id] = &b
		}
	}
	for id, snap := range payments {
		if _, ok := s.payments[id]; !ok {
			p := snap
			s.payments[id] = &p
		}
	}
	return err
}

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindNotFound)
}

func (s *fakeStore) LockRoom(_ context.Context, _ db.DBTX, roomID uuid.UUID) error {
	if _, ok := s.rooms[roomID]; !ok {
		return notFound("room not found")
	}
	return nil
}

func (s *fakeStore) Snapshots(_ context.Context, _ db.DBTX, roomID uuid.UUID) ([]booking.Snapshot, error) {
	var snapshots []booking.Snapshot
	for _, b := range s.bookings {
		if b.RoomID() != roomID {
			continue
		}
		paid := false
		if p, ok := s.payments[b.OrderID()]; ok {
			paid = p.Succeeded()
		}
		snapshots = append(snapshots, booking.Snapshot{
			ReservationID:    b.ID(),
			Stay:             b.Stay(),
			Status:           b.Status(),
			CreatedAt:        b.CreatedAt(),
			PaymentSucceeded: paid,
		})
	}
	return snapshots, nil
}

func (s *fakeStore) Create(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	s.bookings[b.ID()] = b
	return nil
}

func (s *fakeStore) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, notFound("reservation not found")
	}
	return b, nil
}

func (s *fakeStore) FindByOrderID(_ context.Context, _ db.DBTX, orderID uuid.UUID) (*booking.Booking, error) {
	for _, b := range s.bookings {
		if b.OrderID() == orderID {
			return b, nil
		}
	}
	return nil, notFound("reservation not found for order")
}

func (s *fakeStore) UpdateStatus(_ context.Context, _ db.DBTX, id uuid.UUID, _ booking.Status) error {
	if _, ok := s.bookings[id]; !ok {
		return notFound("reservation not found")
	}
	return nil
}

func (s *fakeStore) DeleteAbandonedDrafts(_ context.Context, _ db.DBTX, before time.Time) (int64, error) {
	return s.deleteWhere(func(b *booking.Booking) bool {
		return b.Status() == booking.StatusDraft && b.CreatedAt().Before(before)
	}), nil
}

func (s *fakeStore) DeleteAbandonedPending(_ context.Context, _ db.DBTX, before time.Time) (int64, error) {
	return s.deleteWhere(func(b *booking.Booking) bool {
		if b.Status() != booking.StatusPending || !b.CreatedAt().Before(before) {
			return false
		}
		p, ok := s.payments[b.OrderID()]
		return !ok || !p.Succeeded()
	}), nil
}

func (s *fakeStore) deleteWhere(match func(*booking.Booking) bool) int64 {
	var removed int64
	for id, b := range s.bookings {
		if match(b) {
			delete(s.bookings, id)
			delete(s.payments, b.OrderID())
			removed++
		}
	}
	return removed
}

func (s *fakeStore) FindRoomByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*room.Room, error) {
	rm, ok := s.rooms[id]
	if !ok {
		return nil, notFound("room not found")
	}
	return rm, nil
}

func (s *fakeStore) FindPaymentByOrderID(_ context.Context, _ db.DBTX, orderID uuid.UUID) (*payment.Payment, error) {
	p, ok := s.payments[orderID]
	if !ok {
		return nil, notFound("payment not found")
	}
	return p, nil
}

func (s *fakeStore) FindPaymentByGatewayOrderRef(_ context.Context, _ db.DBTX, orderRef string) (*payment.Payment, error) {
	for _, p := range s.payments {
		if p.GatewayOrderRef() == orderRef {
			return p, nil
		}
	}
	return nil, notFound("payment not found for gateway order ref")
}

func (s *fakeStore) SavePayment(_ context.Context, _ db.DBTX, p *payment.Payment) error {
	s.payments[p.OrderID()] = p
	return nil
}

// roomRepo, paymentRepo adapt fakeStore's methods to the port names.
type roomRepo struct{ *fakeStore }

func (r roomRepo) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*room.Room, error) {
	return r.FindRoomByID(ctx, tx, id)
}

type paymentRepo struct{ *fakeStore }

func (r paymentRepo) FindByOrderID(ctx context.Context, tx db.DBTX, orderID uuid.UUID) (*payment.Payment, error) {
	return r.FindPaymentByOrderID(ctx, tx, orderID)
}

func (r paymentRepo) FindByGatewayOrderRef(ctx context.Context, tx db.DBTX, orderRef string) (*payment.Payment, error) {
	return r.FindPaymentByGatewayOrderRef(ctx, tx, orderRef)
}

func (r paymentRepo) Save(ctx context.Context, tx db.DBTX, p *payment.Payment) error {
	return r.SavePayment(ctx, tx, p)
}

type fakeGateway struct {
	mu         sync.Mutex
	orderSeq   int
	refunds    []gateway.RefundRequest
	failOrders bool
	failRefund bool
}

func (g *fakeGateway) CreateOrder(_ context.Context, _ gateway.OrderRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failOrders {
		return "", errs.New("gateway returned status 503")
	}
	g.orderSeq++
	return fmt.Sprintf("order_%d", g.orderSeq), nil
}

func (g *fakeGateway) Refund(_ context.Context, req gateway.RefundRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failRefund {
		return "", errs.New("gateway returned status 503")
	}
	g.refunds = append(g.refunds, req)
	return fmt.Sprintf("rfnd_%d", len(g.refunds)), nil
}

func (g *fakeGateway) refundCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.refunds)
}

type testEnv struct {
	store    *fakeStore
	gw       *fakeGateway
	clk      *clock.MockClock
	cfg      config.Config
	bookings commands.BookingCommands
	payments commands.PaymentCommands
	reaper   commands.ReaperCommands
}

func newTestEnv(t interface{ Fatalf(string, ...any) }) *testEnv {
	store := newFakeStore()
	gw := &fakeGateway{}
	clk := clock.NewMockClock(time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC))
	cfg := config.NewTestConfig()

	reaperCmds := commands.NewReaperCommands(store, store, clk)
	bookingCmds, err := commands.NewBookingCommands(store, store, roomRepo{store}, paymentRepo{store}, gw, reaperCmds, clk, cfg)
	if err != nil {
		t.Fatalf("failed to build booking commands: %v", err)
	}
	paymentCmds := commands.NewPaymentCommands(store, store, paymentRepo{store}, gw, clk, cfg)

	return &testEnv{
		store:    store,
		gw:       gw,
		clk:      clk,
		cfg:      cfg,
		bookings: bookingCmds,
		payments: paymentCmds,
		reaper:   reaperCmds,
	}
}

func (e *testEnv) addRoom(capacity int, basePrice int64) *room.Room {
	rm, err := room.NewRoom(uuid.New(), uuid.New(), uuid.New(), "Room 1", "Harbor Inn", capacity, basePrice, nil, nil, true, nil)
	if err != nil {
		panic(err)
	}
	e.store.rooms[rm.ID()] = rm
	return rm
}

func guestViewer() shared.Viewer {
	return shared.Viewer{ID: uuid.New(), Role: user.RoleGuest}
}

func adminViewer() shared.Viewer {
	return shared.Viewer{ID: uuid.New(), Role: user.RoleAdmin}
}

func createInput(roomID uuid.UUID, checkIn, checkOut time.Time) commands.CreateReservationInput {
	return commands.CreateReservationInput{
		RoomID:     roomID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestCount: 2,
		Guests: []commands.GuestInput{
			{Name: "Primary Guest", Email: "primary@example.com", IsPrimary: true},
			{Name: "Second Guest"},
		},
		Note: "",
	}
}

var _ shared.TxRunner = (*fakeStore)(nil)
var _ commands.BookingRepo = (*fakeStore)(nil)
var _ commands.RoomRepo = roomRepo{}
var _ commands.PaymentRepo = paymentRepo{}
var _ gateway.Client = (*fakeGateway)(nil)
