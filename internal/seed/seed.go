// Package seed loads the initial room catalog into an empty room store.
// The default catalog is embedded from rooms.yaml; operators can pass their
// own file to the seed command.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/pkordes/frontdesk/internal/domain"
)

//go:embed rooms.yaml
var defaultCatalog []byte

// Store is the part of the room store seeding needs.
type Store interface {
	CountRooms(ctx context.Context) (int, error)
	CreateRoom(ctx context.Context, room domain.Room) (uuid.UUID, error)
}

type catalogRoom struct {
	Number    string   `yaml:"number"`
	Type      string   `yaml:"type"`
	Capacity  int      `yaml:"capacity"`
	Beds      int      `yaml:"beds"`
	Price     string   `yaml:"price"`
	Amenities []string `yaml:"amenities"`
	Status    string   `yaml:"status"`
}

// DefaultCatalog returns the embedded room catalog.
func DefaultCatalog() ([]domain.Room, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a YAML catalog. Every room must have a unique number, a
// type, a positive capacity and bed count, and a non-negative price.
// An omitted status means available; occupied is rejected because
// occupancy only comes from reservations.
func Parse(data []byte) ([]domain.Room, error) {
	var doc struct {
		Rooms []catalogRoom `yaml:"rooms"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("seed.Parse: %w", err)
	}

	rooms := make([]domain.Room, 0, len(doc.Rooms))
	seen := make(map[string]bool, len(doc.Rooms))
	for i, c := range doc.Rooms {
		room, err := c.toDomain()
		if err != nil {
			return nil, fmt.Errorf("seed.Parse: room %d: %w", i+1, err)
		}
		if seen[room.Number] {
			return nil, fmt.Errorf("seed.Parse: %w: duplicate room number %s", domain.ErrValidation, room.Number)
		}
		seen[room.Number] = true
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (c catalogRoom) toDomain() (domain.Room, error) {
	price, err := decimal.NewFromString(c.Price)
	if err != nil {
		return domain.Room{}, fmt.Errorf("%w: invalid price %q", domain.ErrValidation, c.Price)
	}
	status := domain.RoomStatus(c.Status)
	if status == "" {
		status = domain.RoomAvailable
	}

	switch {
	case c.Number == "":
		return domain.Room{}, fmt.Errorf("%w: number is required", domain.ErrValidation)
	case c.Type == "":
		return domain.Room{}, fmt.Errorf("%w: type is required", domain.ErrValidation)
	case c.Capacity < 1 || c.Beds < 1:
		return domain.Room{}, fmt.Errorf("%w: capacity and beds must be at least 1", domain.ErrValidation)
	case price.IsNegative():
		return domain.Room{}, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	case !status.Valid() || status == domain.RoomOccupied:
		return domain.Room{}, fmt.Errorf("%w: status %q not allowed", domain.ErrValidation, c.Status)
	}

	amenities := c.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return domain.Room{
		Number:    c.Number,
		Type:      c.Type,
		Capacity:  c.Capacity,
		Beds:      c.Beds,
		Price:     price,
		Amenities: amenities,
		Status:    status,
	}, nil
}

// Seed inserts rooms when the store has none and returns how many were
// inserted. A store that already has rooms is left untouched, so running
// the seed twice is harmless.
func Seed(ctx context.Context, store Store, rooms []domain.Room, log *slog.Logger) (int, error) {
	n, err := store.CountRooms(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed.Seed: %w", err)
	}
	if n > 0 {
		log.InfoContext(ctx, "room store already populated; skipping seed", "rooms", n)
		return 0, nil
	}

	for i, r := range rooms {
		if _, err := store.CreateRoom(ctx, r); err != nil {
			return i, fmt.Errorf("seed.Seed: room %s: %w", r.Number, err)
		}
	}
	log.InfoContext(ctx, "seeded room catalog", "rooms", len(rooms))
	return len(rooms), nil
}
