// Package sqlite provides a SQLite-backed migration target store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/edusync/edusync/internal/platform/storage/sqlitemigrate"
	"github.com/edusync/edusync/internal/storage"
	"github.com/edusync/edusync/internal/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists migrated school data in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite migration store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreatePerson inserts one migrated golden identity record.
func (s *Store) CreatePerson(ctx context.Context, person storage.Person) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	goldenID := strings.TrimSpace(person.GoldenID)
	if goldenID == "" {
		return fmt.Errorf("golden id is required")
	}
	if strings.TrimSpace(person.LastName) == "" {
		return fmt.Errorf("last name is required")
	}
	createdAt := person.CreatedAt.UTC()
	updatedAt := person.UpdatedAt.UTC()
	if createdAt.IsZero() && updatedAt.IsZero() {
		createdAt = time.Now().UTC()
		updatedAt = createdAt
	} else {
		if createdAt.IsZero() {
			createdAt = updatedAt
		}
		if updatedAt.IsZero() {
			updatedAt = createdAt
		}
	}
	sourceIDs := person.SourceIDs
	if sourceIDs == nil {
		sourceIDs = map[string]string{}
	}
	encodedSourceIDs, err := json.Marshal(sourceIDs)
	if err != nil {
		return fmt.Errorf("encode source ids: %w", err)
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO persons (
		   golden_id,
		   primary_source,
		   first_name,
		   last_name,
		   date_of_birth,
		   email,
		   state_id,
		   confidence,
		   source_ids,
		   created_at,
		   updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		goldenID,
		strings.TrimSpace(person.PrimarySource),
		strings.TrimSpace(person.FirstName),
		strings.TrimSpace(person.LastName),
		strings.TrimSpace(person.DateOfBirth),
		strings.TrimSpace(person.Email),
		strings.TrimSpace(person.StateID),
		person.Confidence,
		string(encodedSourceIDs),
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		if isUniqueViolation(err, "persons.golden_id") {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create person: %w", err)
	}
	return nil
}

// Person returns one golden identity record by ID.
func (s *Store) Person(ctx context.Context, goldenID string) (storage.Person, error) {
	if err := ctx.Err(); err != nil {
		return storage.Person{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Person{}, fmt.Errorf("storage is not configured")
	}
	goldenID = strings.TrimSpace(goldenID)
	if goldenID == "" {
		return storage.Person{}, fmt.Errorf("golden id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT golden_id, primary_source, first_name, last_name,
		        date_of_birth, email, state_id, confidence, source_ids,
		        created_at, updated_at
		   FROM persons
		  WHERE golden_id = ?`,
		goldenID,
	)
	person, err := scanPerson(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Person{}, storage.ErrNotFound
		}
		return storage.Person{}, fmt.Errorf("get person: %w", err)
	}
	return person, nil
}

// ListPersons returns one page of golden identity records.
func (s *Store) ListPersons(ctx context.Context, pageSize int, pageToken string) (storage.PersonPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.PersonPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PersonPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		return storage.PersonPage{}, fmt.Errorf("page size must be greater than zero")
	}
	pageToken = strings.TrimSpace(pageToken)

	page := storage.PersonPage{
		Persons: make([]storage.Person, 0, pageSize),
	}

	var (
		rows *sql.Rows
		err  error
	)
	if pageToken == "" {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT golden_id, primary_source, first_name, last_name,
			        date_of_birth, email, state_id, confidence, source_ids,
			        created_at, updated_at
			   FROM persons
			  ORDER BY golden_id ASC
			  LIMIT ?`,
			pageSize+1,
		)
	} else {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT golden_id, primary_source, first_name, last_name,
			        date_of_birth, email, state_id, confidence, source_ids,
			        created_at, updated_at
			   FROM persons
			  WHERE golden_id > ?
			  ORDER BY golden_id ASC
			  LIMIT ?`,
			pageToken,
			pageSize+1,
		)
	}
	if err != nil {
		return storage.PersonPage{}, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		person, err := scanPerson(rows.Scan)
		if err != nil {
			return storage.PersonPage{}, fmt.Errorf("list persons: %w", err)
		}
		page.Persons = append(page.Persons, person)
	}
	if err := rows.Err(); err != nil {
		return storage.PersonPage{}, fmt.Errorf("list persons: %w", err)
	}
	if len(page.Persons) > pageSize {
		page.NextPageToken = page.Persons[pageSize-1].GoldenID
		page.Persons = page.Persons[:pageSize]
	}

	return page, nil
}

// CreateEnrollment inserts one migrated enrollment span.
func (s *Store) CreateEnrollment(ctx context.Context, enrollment storage.Enrollment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(enrollment.ID)
	studentID := strings.TrimSpace(enrollment.StudentID)
	if id == "" {
		return fmt.Errorf("enrollment id is required")
	}
	if studentID == "" {
		return fmt.Errorf("student id is required")
	}
	if enrollment.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	var endDate any
	if enrollment.EndDate != nil {
		endDate = toMillis(*enrollment.EndDate)
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO enrollments (
		   id,
		   student_id,
		   school_id,
		   school_name,
		   grade_level,
		   start_date,
		   end_date,
		   status,
		   exit_reason,
		   source_system
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		studentID,
		strings.TrimSpace(enrollment.SchoolID),
		strings.TrimSpace(enrollment.SchoolName),
		enrollment.GradeLevel,
		toMillis(enrollment.StartDate),
		endDate,
		strings.TrimSpace(enrollment.Status),
		strings.TrimSpace(enrollment.ExitReason),
		strings.TrimSpace(enrollment.SourceSystem),
	)
	if err != nil {
		if isUniqueViolation(err, "enrollments.id") {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Enrollments returns the enrollment spans stored for one student.
func (s *Store) Enrollments(ctx context.Context, studentID string) ([]storage.Enrollment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, fmt.Errorf("student id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, student_id, school_id, school_name, grade_level,
		        start_date, end_date, status, exit_reason, source_system
		   FROM enrollments
		  WHERE student_id = ?
		  ORDER BY start_date ASC, id ASC`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []storage.Enrollment
	for rows.Next() {
		var enrollment storage.Enrollment
		var startDate int64
		var endDate sql.NullInt64
		if err := rows.Scan(
			&enrollment.ID,
			&enrollment.StudentID,
			&enrollment.SchoolID,
			&enrollment.SchoolName,
			&enrollment.GradeLevel,
			&startDate,
			&endDate,
			&enrollment.Status,
			&enrollment.ExitReason,
			&enrollment.SourceSystem,
		); err != nil {
			return nil, fmt.Errorf("list enrollments: %w", err)
		}
		enrollment.StartDate = fromMillis(startDate)
		if endDate.Valid {
			end := fromMillis(endDate.Int64)
			enrollment.EndDate = &end
		}
		enrollments = append(enrollments, enrollment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// CreateGradeRecord inserts one migrated course grade.
func (s *Store) CreateGradeRecord(ctx context.Context, grade storage.GradeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(grade.ID)
	studentID := strings.TrimSpace(grade.StudentID)
	if id == "" {
		return fmt.Errorf("grade record id is required")
	}
	if studentID == "" {
		return fmt.Errorf("student id is required")
	}
	if strings.TrimSpace(grade.CourseCode) == "" {
		return fmt.Errorf("course code is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO grade_records (
		   id,
		   student_id,
		   course_code,
		   course_name,
		   term,
		   school_year,
		   letter_grade,
		   numeric_grade,
		   has_numeric_grade,
		   credits_attempted,
		   credits_earned,
		   grade_points,
		   status,
		   source_system
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		studentID,
		strings.TrimSpace(grade.CourseCode),
		strings.TrimSpace(grade.CourseName),
		strings.TrimSpace(grade.Term),
		strings.TrimSpace(grade.SchoolYear),
		strings.TrimSpace(grade.LetterGrade),
		grade.NumericGrade,
		boolToInt(grade.HasNumericGrade),
		grade.CreditsAttempted,
		grade.CreditsEarned,
		grade.GradePoints,
		strings.TrimSpace(grade.Status),
		strings.TrimSpace(grade.SourceSystem),
	)
	if err != nil {
		if isUniqueViolation(err, "grade_records.id") {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create grade record: %w", err)
	}
	return nil
}

// GradeRecords returns the course grades stored for one student.
func (s *Store) GradeRecords(ctx context.Context, studentID string) ([]storage.GradeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, fmt.Errorf("student id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, student_id, course_code, course_name, term, school_year,
		        letter_grade, numeric_grade, has_numeric_grade,
		        credits_attempted, credits_earned, grade_points,
		        status, source_system
		   FROM grade_records
		  WHERE student_id = ?
		  ORDER BY school_year ASC, term ASC, course_code ASC`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list grade records: %w", err)
	}
	defer rows.Close()

	var grades []storage.GradeRecord
	for rows.Next() {
		var grade storage.GradeRecord
		var hasNumeric int
		if err := rows.Scan(
			&grade.ID,
			&grade.StudentID,
			&grade.CourseCode,
			&grade.CourseName,
			&grade.Term,
			&grade.SchoolYear,
			&grade.LetterGrade,
			&grade.NumericGrade,
			&hasNumeric,
			&grade.CreditsAttempted,
			&grade.CreditsEarned,
			&grade.GradePoints,
			&grade.Status,
			&grade.SourceSystem,
		); err != nil {
			return nil, fmt.Errorf("list grade records: %w", err)
		}
		grade.HasNumericGrade = hasNumeric != 0
		grades = append(grades, grade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list grade records: %w", err)
	}
	return grades, nil
}

// CreateAttendanceEvent inserts one migrated attendance event.
func (s *Store) CreateAttendanceEvent(ctx context.Context, event storage.AttendanceEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(event.ID)
	studentID := strings.TrimSpace(event.StudentID)
	if id == "" {
		return fmt.Errorf("attendance event id is required")
	}
	if studentID == "" {
		return fmt.Errorf("student id is required")
	}
	if event.Date.IsZero() {
		return fmt.Errorf("event date is required")
	}
	if strings.TrimSpace(event.Status) == "" {
		return fmt.Errorf("status is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO attendance_events (
		   id,
		   student_id,
		   event_date,
		   status,
		   period,
		   teacher_name,
		   source_code,
		   source_system
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		studentID,
		toMillis(event.Date),
		strings.TrimSpace(event.Status),
		event.Period,
		strings.TrimSpace(event.TeacherName),
		strings.TrimSpace(event.SourceCode),
		strings.TrimSpace(event.SourceSystem),
	)
	if err != nil {
		if isUniqueViolation(err, "attendance_events.id") {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create attendance event: %w", err)
	}
	return nil
}

// AttendanceEvents returns the attendance events stored for one student.
func (s *Store) AttendanceEvents(ctx context.Context, studentID string) ([]storage.AttendanceEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, fmt.Errorf("student id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, student_id, event_date, status, period,
		        teacher_name, source_code, source_system
		   FROM attendance_events
		  WHERE student_id = ?
		  ORDER BY event_date ASC, id ASC`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attendance events: %w", err)
	}
	defer rows.Close()

	var events []storage.AttendanceEvent
	for rows.Next() {
		var event storage.AttendanceEvent
		var eventDate int64
		if err := rows.Scan(
			&event.ID,
			&event.StudentID,
			&eventDate,
			&event.Status,
			&event.Period,
			&event.TeacherName,
			&event.SourceCode,
			&event.SourceSystem,
		); err != nil {
			return nil, fmt.Errorf("list attendance events: %w", err)
		}
		event.Date = fromMillis(eventDate)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attendance events: %w", err)
	}
	return events, nil
}

// Counts returns per-table record counts for reconciliation.
func (s *Store) Counts(ctx context.Context) (storage.Counts, error) {
	if err := ctx.Err(); err != nil {
		return storage.Counts{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Counts{}, fmt.Errorf("storage is not configured")
	}

	var counts storage.Counts
	targets := []struct {
		table string
		dest  *int
	}{
		{"persons", &counts.Persons},
		{"enrollments", &counts.Enrollments},
		{"grade_records", &counts.Grades},
		{"attendance_events", &counts.Attendance},
	}
	for _, target := range targets {
		row := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+target.table)
		if err := row.Scan(target.dest); err != nil {
			return storage.Counts{}, fmt.Errorf("count %s: %w", target.table, err)
		}
	}
	return counts, nil
}

type scanFunc func(dest ...any) error

func scanPerson(scan scanFunc) (storage.Person, error) {
	var person storage.Person
	var encodedSourceIDs string
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&person.GoldenID,
		&person.PrimarySource,
		&person.FirstName,
		&person.LastName,
		&person.DateOfBirth,
		&person.Email,
		&person.StateID,
		&person.Confidence,
		&encodedSourceIDs,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.Person{}, err
	}
	person.SourceIDs = map[string]string{}
	if encodedSourceIDs != "" {
		if err := json.Unmarshal([]byte(encodedSourceIDs), &person.SourceIDs); err != nil {
			return storage.Person{}, fmt.Errorf("decode source ids: %w", err)
		}
	}
	person.CreatedAt = fromMillis(createdAt)
	person.UpdatedAt = fromMillis(updatedAt)
	return person, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, column)
}

var _ storage.MigrationStore = (*Store)(nil)
