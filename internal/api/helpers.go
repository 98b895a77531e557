package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// parseStudentID parses the student ID from the path parameter.
func parseStudentID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("studentID"))
}

// parsePagination extracts limit and offset from query parameters with defaults.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return limit, offset
}
