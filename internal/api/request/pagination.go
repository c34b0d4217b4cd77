package request

import (
	"net/http"
	"strconv"
)

// ParseLimit reads the limit query parameter. Missing or invalid values
// yield def; values above max are clamped.
func ParseLimit(r *http.Request, def, max int) int {
	limit := def
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > max {
		limit = max
	}
	return limit
}
