package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/techsupport-scheduler/pkg/util"
)

// parseWindow reads the from/to RFC3339 query parameters, defaulting to
// [now, now+span).
func parseWindow(c *fiber.Ctx, now time.Time, span time.Duration) (time.Time, time.Time, error) {
	from := now
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.NewValidationError("from must be an RFC3339 timestamp", map[string]any{"from": raw})
		}
		from = parsed
	}
	to := from.Add(span)
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.NewValidationError("to must be an RFC3339 timestamp", map[string]any{"to": raw})
		}
		to = parsed
	}
	return from, to, nil
}

func parseOptionalInt(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(key+" must be an integer", map[string]any{key: raw})
	}
	return &value, nil
}
