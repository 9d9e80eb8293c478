package timetable

import (
	"context"
	"testing"

	"studyplanner/internal/planner"
	"studyplanner/internal/store"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := store.NewDB(context.Background(), store.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db.Client)
}

func TestSubjectIDByNamePicksFirstInserted(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	exam, _ := planner.ParseDate("2024-07-01")

	first, err := repo.CreateSubject(ctx, planner.Subject{Owner: "1", Name: "Math", ExamDate: exam})
	if err != nil {
		t.Fatalf("CreateSubject: %v", err)
	}
	if _, err := repo.CreateSubject(ctx, planner.Subject{Owner: "1", Name: "Math", ExamDate: exam}); err != nil {
		t.Fatalf("CreateSubject duplicate name: %v", err)
	}

	id, ok, err := repo.SubjectIDByName(ctx, "1", "Math")
	if err != nil || !ok {
		t.Fatalf("SubjectIDByName: ok=%v err=%v", ok, err)
	}
	if id != first.ID {
		t.Fatalf("id: got=%s want=%s", id, first.ID)
	}
	if _, ok, _ := repo.SubjectIDByName(ctx, "2", "Math"); ok {
		t.Fatalf("name lookup crossed owners")
	}
	if _, ok, _ := repo.SubjectIDByName(ctx, "1", "math"); ok {
		t.Fatalf("name lookup is not exact")
	}
}

func TestInsertSessionConflictIsNoop(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	exam, _ := planner.ParseDate("2024-07-01")
	subj, _ := repo.CreateSubject(ctx, planner.Subject{Owner: "1", Name: "Math", ExamDate: exam})

	s := planner.StudySession{Owner: "1", SubjectID: subj.ID, SessionDate: "2024-06-10", StartTime: "09:00:00", EndTime: "10:00:00"}
	if ok, err := repo.InsertSession(ctx, s); err != nil || !ok {
		t.Fatalf("first insert: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.InsertSession(ctx, s); err != nil || ok {
		t.Fatalf("second insert: ok=%v err=%v want no-op", ok, err)
	}
	got, err := repo.SessionByKey(ctx, s)
	if err != nil {
		t.Fatalf("SessionByKey: %v", err)
	}
	if got.ID == "" || got.Completed {
		t.Fatalf("session: got=%+v", got)
	}
}

func TestListSessionsWithSubjectOrdersByDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	exam, _ := planner.ParseDate("2024-07-01")
	subj, _ := repo.CreateSubject(ctx, planner.Subject{Owner: "1", Name: "Math", ExamDate: exam})

	for _, date := range []string{"2024-06-12", "2024-06-10", "2024-06-11"} {
		s := planner.StudySession{Owner: "1", SubjectID: subj.ID, SessionDate: date, StartTime: "09:00:00", EndTime: "10:00:00"}
		if _, err := repo.InsertSession(ctx, s); err != nil {
			t.Fatalf("InsertSession %s: %v", date, err)
		}
	}
	rows, err := repo.ListSessionsWithSubject(ctx, "1")
	if err != nil {
		t.Fatalf("ListSessionsWithSubject: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got=%d want=3", len(rows))
	}
	for i, want := range []string{"2024-06-10", "2024-06-11", "2024-06-12"} {
		if rows[i].SessionDate != want || rows[i].SubjectName != "Math" {
			t.Fatalf("row %d: got=%+v want date %s", i, rows[i], want)
		}
	}
}

func TestGetPreferencesAbsent(t *testing.T) {
	repo := newTestRepo(t)
	p, err := repo.GetPreferences(context.Background(), "1")
	if err != nil || p != nil {
		t.Fatalf("GetPreferences: got=%+v err=%v want nil,nil", p, err)
	}
}
