package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/yshino/fleamarket-backend/internal/repository"
)

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// parseCursor reads the item_id / created_at pagination pair. Both must
// be positive when present; created_at is epoch milliseconds.
func parseCursor(c echo.Context) (repository.Cursor, string) {
	var cursor repository.Cursor

	if raw := c.QueryParam("item_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id <= 0 {
			return cursor, "item_id param error"
		}
		cursor.ItemID = id
	}
	if raw := c.QueryParam("created_at"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms <= 0 {
			return cursor, "created_at param error"
		}
		cursor.CreatedAt = time.UnixMilli(ms)
	}
	return cursor, ""
}

// trimmedParam returns a path parameter with a fixed suffix (".json",
// ".png") stripped.
func trimmedParam(c echo.Context, name, suffix string) string {
	return strings.TrimSuffix(c.Param(name), suffix)
}
