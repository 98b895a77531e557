package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MaxGPA is the highest grade point average a student may hold.
const MaxGPA = 4.0

var (
	// ErrInvalidStudent is returned when a student document fails validation.
	ErrInvalidStudent = errors.New("invalid student")
	// ErrUnknownField is returned when an update names a field students do not have.
	ErrUnknownField = errors.New("unknown student field")
)

// Student is a stored student document.
type Student struct {
	ID        uuid.UUID `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Course    string    `json:"course"`
	GPA       float64   `json:"gpa"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentInput contains the fields supplied when creating a student.
// GPA is a pointer so a missing value can be told apart from 0.
type StudentInput struct {
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Course string   `json:"course"`
	GPA    *float64 `json:"gpa"`
}

// studentDoc is the JSONB shape of the doc column.
type studentDoc struct {
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Course string  `json:"course"`
	GPA    float64 `json:"gpa"`
}

// Validate checks that every required field is present and well formed.
func (in StudentInput) Validate() error {
	if err := validateText("name", in.Name); err != nil {
		return err
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if err := validateText("course", in.Course); err != nil {
		return err
	}
	if in.GPA == nil {
		return fmt.Errorf("%w: gpa is required", ErrInvalidStudent)
	}
	return validateGPA(*in.GPA)
}

func validateText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidStudent, field)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidStudent)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: email %q is not a valid address", ErrInvalidStudent, email)
	}
	return nil
}

func validateGPA(gpa float64) error {
	if math.IsNaN(gpa) || math.IsInf(gpa, 0) || gpa < 0 || gpa > MaxGPA {
		return fmt.Errorf("%w: gpa must be between 0 and %.1f", ErrInvalidStudent, MaxGPA)
	}
	return nil
}

// ParseFieldValue converts a raw path value into the typed value stored for field.
func ParseFieldValue(field, raw string) (any, error) {
	switch field {
	case "name", "course":
		if err := validateText(field, raw); err != nil {
			return nil, err
		}
		return raw, nil
	case "email":
		if err := validateEmail(raw); err != nil {
			return nil, err
		}
		return raw, nil
	case "gpa":
		gpa, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: gpa %q is not a number", ErrInvalidStudent, raw)
		}
		if err := validateGPA(gpa); err != nil {
			return nil, err
		}
		return gpa, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

const studentColumns = `id, doc, created_at, updated_at`

// scanStudent scans a row into a Student and decodes its document.
func scanStudent(row pgx.Row) (*Student, error) {
	var s Student
	var raw []byte
	err := row.Scan(&s.ID, &raw, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := decodeDoc(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func decodeDoc(raw []byte, s *Student) error {
	var doc studentDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode student %s: %w", s.ID, err)
	}
	s.Name, s.Email, s.Course, s.GPA = doc.Name, doc.Email, doc.Course, doc.GPA
	return nil
}

// CreateStudent validates and stores a new student document.
func (db *DB) CreateStudent(ctx context.Context, in StudentInput) (*Student, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	doc, err := json.Marshal(studentDoc{Name: in.Name, Email: in.Email, Course: in.Course, GPA: *in.GPA})
	if err != nil {
		return nil, err
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO students (id, doc)
		 VALUES ($1, $2)
		 RETURNING `+studentColumns,
		uuid.New(), doc,
	)
	return scanStudent(row)
}

// GetStudentByID retrieves a student by ID.
func (db *DB) GetStudentByID(ctx context.Context, id uuid.UUID) (*Student, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`,
		id,
	)
	return scanStudent(row)
}

// ListStudents returns students ordered by creation date descending.
func (db *DB) ListStudents(ctx context.Context, limit, offset int) ([]Student, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students
		 ORDER BY created_at DESC, id
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		var s Student
		var raw []byte
		if err := rows.Scan(&s.ID, &raw, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if err := decodeDoc(raw, &s); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// CountStudents returns the total number of stored students.
func (db *DB) CountStudents(ctx context.Context) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM students`).Scan(&count)
	return count, err
}

// UpdateStudentField sets a single document field and returns the student
// after the update, or nil if no student has the given ID.
func (db *DB) UpdateStudentField(ctx context.Context, id uuid.UUID, field, raw string) (*Student, error) {
	value, err := ParseFieldValue(field, raw)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	row := db.pool.QueryRow(ctx,
		`UPDATE students
		 SET doc = doc || jsonb_build_object($2::text, $3::jsonb), updated_at = now()
		 WHERE id = $1
		 RETURNING `+studentColumns,
		id, field, string(encoded),
	)
	return scanStudent(row)
}

// DeleteStudent removes a student and reports whether one existed.
func (db *DB) DeleteStudent(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM students WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
