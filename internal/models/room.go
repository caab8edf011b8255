package models

import "time"

// Room represents a teaching room. Type decides which session kind it hosts,
// there is no cross-type substitution.
type Room struct {
	ID        string      `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	Type      SessionType `db:"type" json:"type"`
	Capacity  int         `db:"capacity" json:"capacity"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// RoomFilter captures filtering options for listing rooms.
type RoomFilter struct {
	Type        *SessionType
	MinCapacity *int
	Search      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
