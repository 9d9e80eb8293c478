package timetable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"studyplanner/internal/planner"
)

// Repository persists subjects, preferences, exclusions and sessions.
// Every query is scoped by owner (the user_id column).
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// newID returns a time-ordered id so ORDER BY id is insertion order.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// CreateSubject inserts a subject and returns it with its id.
func (r *Repository) CreateSubject(ctx context.Context, s planner.Subject) (planner.Subject, error) {
	if s.ID == "" {
		s.ID = newID()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subjects (id, user_id, name, exam_date)
		VALUES ($1, $2, $3, $4)
	`, s.ID, s.Owner, s.Name, s.ExamDate.Format(planner.DateLayout))
	if err != nil {
		return planner.Subject{}, err
	}
	return s, nil
}

// ListSubjects returns the owner's subjects in insertion order.
func (r *Repository) ListSubjects(ctx context.Context, owner string) ([]planner.Subject, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, exam_date
		FROM subjects
		WHERE user_id = $1
		ORDER BY id
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := []planner.Subject{}
	for rows.Next() {
		var (
			s    planner.Subject
			exam string
		)
		if err := rows.Scan(&s.ID, &s.Owner, &s.Name, &exam); err != nil {
			return nil, err
		}
		if s.ExamDate, err = planner.ParseDate(exam); err != nil {
			return nil, fmt.Errorf("subject %s: %w", s.ID, err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// SubjectIDByName finds the first subject with exactly this name.
func (r *Repository) SubjectIDByName(ctx context.Context, owner, name string) (string, bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM subjects
		WHERE user_id = $1 AND name = $2
		ORDER BY id
		LIMIT 1
	`, owner, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// SubjectExists reports whether id is a subject of owner.
func (r *Repository) SubjectExists(ctx context.Context, owner, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM subjects WHERE user_id = $1 AND id = $2`, owner, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// UpsertPreferences inserts the owner's preferences or overwrites them.
func (r *Repository) UpsertPreferences(ctx context.Context, p planner.StudyPreferences) (planner.StudyPreferences, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO study_preferences (user_id, study_days_per_week, hours_per_day, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			study_days_per_week = EXCLUDED.study_days_per_week,
			hours_per_day = EXCLUDED.hours_per_day,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			updated_at = CURRENT_TIMESTAMP
		RETURNING user_id, study_days_per_week, hours_per_day, start_time, end_time
	`, p.Owner, p.StudyDaysPerWeek, p.HoursPerDay, p.StartTime, p.EndTime)
	var out planner.StudyPreferences
	if err := row.Scan(&out.Owner, &out.StudyDaysPerWeek, &out.HoursPerDay, &out.StartTime, &out.EndTime); err != nil {
		return planner.StudyPreferences{}, err
	}
	return out, nil
}

// GetPreferences returns nil when the owner has none.
func (r *Repository) GetPreferences(ctx context.Context, owner string) (*planner.StudyPreferences, error) {
	var p planner.StudyPreferences
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, study_days_per_week, hours_per_day, start_time, end_time
		FROM study_preferences WHERE user_id = $1
	`, owner).Scan(&p.Owner, &p.StudyDaysPerWeek, &p.HoursPerDay, &p.StartTime, &p.EndTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateExclusion stores a blocked date.
func (r *Repository) CreateExclusion(ctx context.Context, e planner.Exclusion) (planner.Exclusion, error) {
	if e.ID == "" {
		e.ID = newID()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO exclusions (id, user_id, date, reason)
		VALUES ($1, $2, $3, $4)
	`, e.ID, e.Owner, e.Date.Format(planner.DateLayout), e.Reason)
	if err != nil {
		return planner.Exclusion{}, err
	}
	return e, nil
}

// ListExclusions returns the owner's exclusions ordered by date.
func (r *Repository) ListExclusions(ctx context.Context, owner string) ([]planner.Exclusion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, date, reason
		FROM exclusions
		WHERE user_id = $1
		ORDER BY date, id
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []planner.Exclusion{}
	for rows.Next() {
		var (
			e    planner.Exclusion
			date string
		)
		if err := rows.Scan(&e.ID, &e.Owner, &date, &e.Reason); err != nil {
			return nil, err
		}
		if e.Date, err = planner.ParseDate(date); err != nil {
			return nil, fmt.Errorf("exclusion %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertSession writes a session unless its natural key already exists.
// It reports whether a row was written.
func (r *Repository) InsertSession(ctx context.Context, s planner.StudySession) (bool, error) {
	if s.ID == "" {
		s.ID = newID()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO study_sessions (id, user_id, subject_id, session_date, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, subject_id, session_date, start_time, end_time) DO NOTHING
	`, s.ID, s.Owner, s.SubjectID, s.SessionDate, s.StartTime, s.EndTime)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SessionByKey loads a session by its natural key.
func (r *Repository) SessionByKey(ctx context.Context, s planner.StudySession) (planner.StudySession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, subject_id, session_date, start_time, end_time, completed
		FROM study_sessions
		WHERE user_id = $1 AND subject_id = $2 AND session_date = $3 AND start_time = $4 AND end_time = $5
	`, s.Owner, s.SubjectID, s.SessionDate, s.StartTime, s.EndTime)
	return scanSession(row)
}

// ListSessions returns the owner's sessions by date.
func (r *Repository) ListSessions(ctx context.Context, owner string) ([]planner.StudySession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, subject_id, session_date, start_time, end_time, completed
		FROM study_sessions
		WHERE user_id = $1
		ORDER BY session_date, start_time, id
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []planner.StudySession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListSessionsWithSubject joins each session with its subject name.
func (r *Repository) ListSessionsWithSubject(ctx context.Context, owner string) ([]planner.SessionWithSubject, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ss.id, ss.user_id, ss.subject_id, ss.session_date, ss.start_time, ss.end_time, ss.completed,
			COALESCE(s.name, '')
		FROM study_sessions ss
		LEFT JOIN subjects s ON ss.subject_id = s.id
		WHERE ss.user_id = $1
		ORDER BY ss.session_date, ss.start_time, ss.id
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []planner.SessionWithSubject{}
	for rows.Next() {
		var s planner.SessionWithSubject
		if err := rows.Scan(&s.ID, &s.Owner, &s.SubjectID, &s.SessionDate, &s.StartTime, &s.EndTime, &s.Completed, &s.SubjectName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SetSessionCompleted updates the flag of a session owned by owner.
// ok is false when no such session exists for that owner.
func (r *Repository) SetSessionCompleted(ctx context.Context, owner, id string, completed bool) (planner.StudySession, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE study_sessions SET completed = $1
		WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, subject_id, session_date, start_time, end_time, completed
	`, completed, id, owner)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return planner.StudySession{}, false, nil
	}
	if err != nil {
		return planner.StudySession{}, false, err
	}
	return s, true, nil
}

// ClearSessions deletes every session of owner.
func (r *Repository) ClearSessions(ctx context.Context, owner string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM study_sessions WHERE user_id = $1`, owner)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (planner.StudySession, error) {
	var s planner.StudySession
	err := row.Scan(&s.ID, &s.Owner, &s.SubjectID, &s.SessionDate, &s.StartTime, &s.EndTime, &s.Completed)
	return s, err
}
