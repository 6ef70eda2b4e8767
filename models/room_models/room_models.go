package room_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joy095/boardroom/logger"
)

var ErrRoomNotFound = errors.New("room not found")

// Room is a bookable boardroom. Inactive rooms keep their history but reject
// new reservations.
type Room struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRoom creates a new active Room instance.
func NewRoom(name string, capacity int) *Room {
	now := time.Now().UTC()
	return &Room{
		ID:        uuid.New(),
		Name:      name,
		Capacity:  capacity,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateRoom inserts a new room record.
func CreateRoom(ctx context.Context, db *pgxpool.Pool, room *Room) (*Room, error) {
	logger.InfoLogger.Infof("Attempting to create room %q (capacity %d)", room.Name, room.Capacity)

	query := `
		INSERT INTO rooms (id, name, capacity, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var returnedID uuid.UUID
	if err := db.QueryRow(ctx, query,
		room.ID, room.Name, room.Capacity, room.IsActive, room.CreatedAt, room.UpdatedAt,
	).Scan(&returnedID); err != nil {
		logger.ErrorLogger.Errorf("Failed to insert room %q: %v", room.Name, err)
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	logger.InfoLogger.Infof("Room %s (%q) created successfully", room.ID, room.Name)
	return room, nil
}

// GetRoomByID fetches a room by id.
func GetRoomByID(ctx context.Context, db *pgxpool.Pool, roomID uuid.UUID) (*Room, error) {
	room := &Room{}
	query := `SELECT id, name, capacity, is_active, created_at, updated_at FROM rooms WHERE id = $1`

	err := db.QueryRow(ctx, query, roomID).Scan(
		&room.ID,
		&room.Name,
		&room.Capacity,
		&room.IsActive,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("Room %s not found", roomID)
			return nil, ErrRoomNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch room %s: %v", roomID, err)
		return nil, fmt.Errorf("database error fetching room: %w", err)
	}

	return room, nil
}

// GetAllRooms lists every room, active first, then by name.
func GetAllRooms(ctx context.Context, db *pgxpool.Pool) ([]Room, error) {
	query := `
		SELECT id, name, capacity, is_active, created_at, updated_at
		FROM rooms
		ORDER BY is_active DESC, name ASC`

	rows, err := db.Query(ctx, query)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to query rooms: %v", err)
		return nil, fmt.Errorf("failed to fetch rooms: %w", err)
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		var room Room
		if err := rows.Scan(
			&room.ID, &room.Name, &room.Capacity, &room.IsActive, &room.CreatedAt, &room.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan room row: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during room iteration: %w", err)
	}

	logger.InfoLogger.Infof("Fetched %d rooms", len(rooms))
	return rooms, nil
}

// UpdateRoom updates a room's name, capacity and active flag. Deactivating a
// room does not touch its existing bookings.
func UpdateRoom(ctx context.Context, db *pgxpool.Pool, room *Room) (*Room, error) {
	logger.InfoLogger.Infof("Updating room %s (%q)", room.ID, room.Name)

	room.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE rooms
		SET name = $2, capacity = $3, is_active = $4, updated_at = $5
		WHERE id = $1
		RETURNING updated_at`

	var updatedAt time.Time
	err := db.QueryRow(ctx, query,
		room.ID, room.Name, room.Capacity, room.IsActive, room.UpdatedAt,
	).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		logger.ErrorLogger.Errorf("Failed to update room %s: %v", room.ID, err)
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	room.UpdatedAt = updatedAt
	logger.InfoLogger.Infof("Room %s updated successfully", room.ID)
	return room, nil
}
