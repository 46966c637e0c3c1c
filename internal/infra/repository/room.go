package repository

import (
	"context"

	"roomstay/internal/domain/room"
	"roomstay/internal/infra"
	"roomstay/internal/infra/db"

	"github.com/google/uuid"
)

type RoomRepository struct {
	db db.DBTX
}

func NewRoomRepository(dbtx db.DBTX) *RoomRepository {
	return &RoomRepository{db: dbtx}
}

const roomColumns = `
	r.id, r.property_id, p.vendor_id, r.name, p.name,
	r.capacity, r.base_price, r.summer_price, r.winter_price,
	r.is_available, r.amenities
`

func (r *RoomRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*room.Room, error) {
	row := dbtx.QueryRow(ctx, `
		SELECT `+roomColumns+`
		FROM rooms r
		JOIN properties p ON p.id = r.property_id
		WHERE r.id = $1`, id)

	rm, err := scanRoom(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("room not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find room by ID", err)
	}
	return rm, nil
}

func (r *RoomRepository) FindByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*room.Room, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+roomColumns+`
		FROM rooms r
		JOIN properties p ON p.id = r.property_id
		WHERE r.property_id = $1
		ORDER BY r.name`, propertyID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list rooms by property", err)
	}
	defer rows.Close()

	var result []*room.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan room row", err)
		}
		result = append(result, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate room rows", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*room.Room, error) {
	var (
		id, propertyID, vendorID uuid.UUID
		name, propertyName       string
		capacity                 int
		basePrice                int64
		summerPrice, winterPrice *int64
		isAvailable              bool
		amenities                []string
	)

	err := row.Scan(
		&id, &propertyID, &vendorID, &name, &propertyName,
		&capacity, &basePrice, &summerPrice, &winterPrice,
		&isAvailable, &amenities,
	)
	if err != nil {
		return nil, err
	}

	return room.NewRoom(id, propertyID, vendorID, name, propertyName,
		capacity, basePrice, summerPrice, winterPrice, isAvailable, amenities)
}
