package api

import (
	"errors"
	"net/http"

	"github.com/kamilpajak/wordfreq/internal/database"
)

const studentNotFound = "Student not found"

// handleCreateStudent adds a new student.
func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	s.metrics.studentsCreate.Inc()

	var in database.StudentInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.logger.Debug().Str("email", in.Email).Msg("Trying to add student")
	student, err := s.store.CreateStudent(r.Context(), in)
	if errors.Is(err, database.ErrInvalidStudent) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create student")
		writeError(w, http.StatusInternalServerError, "failed to create student")
		return
	}

	s.logger.Debug().Stringer("id", student.ID).Msg("Added student successfully")
	writeJSON(w, http.StatusCreated, student)
}

// handleListStudents returns a page of students.
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	students, err := s.store.ListStudents(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list students")
		writeError(w, http.StatusInternalServerError, "failed to list students")
		return
	}

	total, err := s.store.CountStudents(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count students")
		writeError(w, http.StatusInternalServerError, "failed to count students")
		return
	}

	if students == nil {
		students = []database.Student{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"students": students,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// handleGetStudent returns a single student.
func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	id, err := parseStudentID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid student ID")
		return
	}

	student, err := s.store.GetStudentByID(r.Context(), id)
	if err != nil {
		s.logger.Error().Err(err).Stringer("id", id).Msg("failed to get student")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if student == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": studentNotFound})
		return
	}

	writeJSON(w, http.StatusOK, student)
}

// handleUpdateStudent sets one field of a student.
func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	s.metrics.studentsUpdate.Inc()

	id, err := parseStudentID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid student ID")
		return
	}
	field, value := r.PathValue("field"), r.PathValue("value")

	student, err := s.store.UpdateStudentField(r.Context(), id, field, value)
	if errors.Is(err, database.ErrUnknownField) || errors.Is(err, database.ErrInvalidStudent) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Stringer("id", id).Str("field", field).Msg("failed to update student")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if student == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": studentNotFound})
		return
	}

	s.logger.Debug().Stringer("id", id).Str("field", field).Msg("Updated student")
	writeJSON(w, http.StatusOK, student)
}

// handleDeleteStudent removes a student.
func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := parseStudentID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid student ID")
		return
	}

	deleted, err := s.store.DeleteStudent(r.Context(), id)
	if err != nil {
		s.logger.Error().Err(err).Stringer("id", id).Msg("failed to delete student")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": studentNotFound})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
