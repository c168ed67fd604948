package http

import (
	"net/http"
	"strconv"
	"time"

	"sarpras/pkg/config"
	apperrors "sarpras/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	return config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset), nil
}

// ExtractTimeRange reads an RFC3339 [start, end) pair from the named query
// parameters. Both must be present.
func ExtractTimeRange(r *http.Request, startKey, endKey string) (time.Time, time.Time, error) {
	query := r.URL.Query()

	startStr, endStr := query.Get(startKey), query.Get(endKey)
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("both '" + startKey + "' and '" + endKey + "' query parameters are required")
	}

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("invalid " + startKey + " format, must be RFC3339")
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("invalid " + endKey + " format, must be RFC3339")
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, apperrors.InvalidInput(startKey + " must be before " + endKey)
	}

	return start, end, nil
}
