package repository

import "time"

// Cursor is a keyset-pagination position over (created_at, id)
// descending. A zero Cursor means "from the top".
type Cursor struct {
	ItemID    uint64
	CreatedAt time.Time
}

func (c Cursor) IsZero() bool {
	return c.ItemID == 0 || c.CreatedAt.IsZero()
}

const cursorCond = "(created_at < ? OR (created_at <= ? AND id < ?))"
