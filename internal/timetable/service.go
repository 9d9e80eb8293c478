package timetable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"studyplanner/internal/apperr"
	"studyplanner/internal/cache"
	"studyplanner/internal/calendar"
	"studyplanner/internal/logger"
	"studyplanner/internal/metrics"
	"studyplanner/internal/planner"
	"studyplanner/internal/queue"
)

var tracer = otel.Tracer("studyplanner/timetable")

// PlanStore holds the allocator inputs of an owner.
type PlanStore interface {
	CreateSubject(ctx context.Context, s planner.Subject) (planner.Subject, error)
	ListSubjects(ctx context.Context, owner string) ([]planner.Subject, error)
	SubjectIDByName(ctx context.Context, owner, name string) (string, bool, error)
	SubjectExists(ctx context.Context, owner, id string) (bool, error)
	UpsertPreferences(ctx context.Context, p planner.StudyPreferences) (planner.StudyPreferences, error)
	GetPreferences(ctx context.Context, owner string) (*planner.StudyPreferences, error)
	CreateExclusion(ctx context.Context, e planner.Exclusion) (planner.Exclusion, error)
	ListExclusions(ctx context.Context, owner string) ([]planner.Exclusion, error)
}

// SessionStore holds persisted sessions.
type SessionStore interface {
	InsertSession(ctx context.Context, s planner.StudySession) (bool, error)
	SessionByKey(ctx context.Context, s planner.StudySession) (planner.StudySession, error)
	ListSessions(ctx context.Context, owner string) ([]planner.StudySession, error)
	ListSessionsWithSubject(ctx context.Context, owner string) ([]planner.SessionWithSubject, error)
	SetSessionCompleted(ctx context.Context, owner, id string, completed bool) (planner.StudySession, bool, error)
	ClearSessions(ctx context.Context, owner string) (int64, error)
}

// SubjectInput is the body of a subject create.
type SubjectInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	ExamDate string `json:"exam_date" validate:"required,datetime=2006-01-02"`
}

// PreferencesInput is the body of a preferences upsert.
type PreferencesInput struct {
	StudyDaysPerWeek int     `json:"study_days_per_week" validate:"min=0,max=7"`
	HoursPerDay      float64 `json:"hours_per_day" validate:"min=0,max=24"`
	StartTime        string  `json:"start_time" validate:"required"`
	EndTime          string  `json:"end_time" validate:"required"`
}

// ExclusionInput is the body of an exclusion create.
type ExclusionInput struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Reason string `json:"reason" validate:"max=500"`
}

// SessionInput is the body of a manual session create.
type SessionInput struct {
	SubjectID   string `json:"subject_id" validate:"required"`
	SessionDate string `json:"session_date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
}

// SaveResult counts what happened to each slot of a save.
type SaveResult struct {
	Saved      int `json:"saved"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`
}

// Dashboard aggregates an owner's sessions.
type Dashboard struct {
	TotalSessions     int                          `json:"totalSessions"`
	CompletedSessions int                          `json:"completedSessions"`
	PendingSessions   int                          `json:"pendingSessions"`
	Sessions          []planner.SessionWithSubject `json:"sessions"`
}

// Options tunes a Service. Zero values pick defaults; a nil Cache or Queue
// disables that feature.
type Options struct {
	Cache        cache.Cache
	Queue        queue.Queue
	Logger       *logger.Logger
	Location     *time.Location
	Now          func() time.Time
	TimetableTTL time.Duration
	CalendarTTL  time.Duration
}

// Service drives the timetable lifecycle for an owner: generate, save,
// complete, clear and export.
type Service struct {
	plans        PlanStore
	sessions     SessionStore
	exporter     *calendar.Exporter
	cache        cache.Cache
	queue        queue.Queue
	log          *logger.Logger
	loc          *time.Location
	now          func() time.Time
	timetableTTL time.Duration
	calendarTTL  time.Duration
}

// NewService wires stores and the exporter.
func NewService(plans PlanStore, sessions SessionStore, exporter *calendar.Exporter, opts Options) *Service {
	s := &Service{
		plans:        plans,
		sessions:     sessions,
		exporter:     exporter,
		cache:        opts.Cache,
		queue:        opts.Queue,
		log:          opts.Logger,
		loc:          opts.Location,
		now:          opts.Now,
		timetableTTL: opts.TimetableTTL,
		calendarTTL:  opts.CalendarTTL,
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.timetableTTL <= 0 {
		s.timetableTTL = 10 * time.Minute
	}
	if s.calendarTTL <= 0 {
		s.calendarTTL = time.Hour
	}
	return s
}

// Today is the current civil date in the service location.
func (s *Service) Today() time.Time {
	return planner.Day(s.now().In(s.loc))
}

func requireOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return apperr.Unauthorized("owner required")
	}
	return nil
}

// CreateSubject validates and stores a subject.
func (s *Service) CreateSubject(ctx context.Context, owner string, in SubjectInput) (planner.Subject, error) {
	if err := requireOwner(owner); err != nil {
		return planner.Subject{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return planner.Subject{}, err
	}
	exam, err := planner.ParseDate(in.ExamDate)
	if err != nil {
		return planner.Subject{}, apperr.E(apperr.KindValidation, err.Error(), err)
	}
	subject, err := s.plans.CreateSubject(ctx, planner.Subject{Owner: owner, Name: in.Name, ExamDate: exam})
	if err != nil {
		return planner.Subject{}, apperr.Storage(err)
	}
	s.invalidate(ctx, timetableKind, owner)
	return subject, nil
}

func (s *Service) ListSubjects(ctx context.Context, owner string) ([]planner.Subject, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	subjects, err := s.plans.ListSubjects(ctx, owner)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return subjects, nil
}

// SavePreferences upserts the owner's availability window. Clock times are
// stored normalized and the window must be non-empty.
func (s *Service) SavePreferences(ctx context.Context, owner string, in PreferencesInput) (planner.StudyPreferences, error) {
	if err := requireOwner(owner); err != nil {
		return planner.StudyPreferences{}, err
	}
	if err := check(in); err != nil {
		return planner.StudyPreferences{}, err
	}
	prefs := planner.StudyPreferences{
		Owner:            owner,
		StudyDaysPerWeek: in.StudyDaysPerWeek,
		HoursPerDay:      in.HoursPerDay,
		StartTime:        in.StartTime,
		EndTime:          in.EndTime,
	}
	if _, err := planner.ResolvePreferences(&prefs); err != nil {
		return planner.StudyPreferences{}, err
	}
	prefs.StartTime, _ = planner.NormalizeClock(prefs.StartTime)
	prefs.EndTime, _ = planner.NormalizeClock(prefs.EndTime)

	saved, err := s.plans.UpsertPreferences(ctx, prefs)
	if err != nil {
		return planner.StudyPreferences{}, apperr.Storage(err)
	}
	s.invalidate(ctx, timetableKind, owner)
	return saved, nil
}

// GetPreferences returns NotFound when the owner has none.
func (s *Service) GetPreferences(ctx context.Context, owner string) (planner.StudyPreferences, error) {
	if err := requireOwner(owner); err != nil {
		return planner.StudyPreferences{}, err
	}
	prefs, err := s.plans.GetPreferences(ctx, owner)
	if err != nil {
		return planner.StudyPreferences{}, apperr.Storage(err)
	}
	if prefs == nil {
		return planner.StudyPreferences{}, apperr.E(apperr.KindNotFound, "Study preferences not found.", planner.ErrNoPreferences)
	}
	return *prefs, nil
}

func (s *Service) AddExclusion(ctx context.Context, owner string, in ExclusionInput) (planner.Exclusion, error) {
	if err := requireOwner(owner); err != nil {
		return planner.Exclusion{}, err
	}
	if err := check(in); err != nil {
		return planner.Exclusion{}, err
	}
	date, err := planner.ParseDate(in.Date)
	if err != nil {
		return planner.Exclusion{}, apperr.E(apperr.KindValidation, err.Error(), err)
	}
	ex, err := s.plans.CreateExclusion(ctx, planner.Exclusion{Owner: owner, Date: date, Reason: in.Reason})
	if err != nil {
		return planner.Exclusion{}, apperr.Storage(err)
	}
	s.invalidate(ctx, timetableKind, owner)
	return ex, nil
}

func (s *Service) ListExclusions(ctx context.Context, owner string) ([]planner.Exclusion, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	out, err := s.plans.ListExclusions(ctx, owner)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return out, nil
}

// Generate computes the preview timetable from today until the last exam.
// Results are cached per owner and day until an input changes.
func (s *Service) Generate(ctx context.Context, owner string) ([]planner.SessionSlot, error) {
	ctx, span := tracer.Start(ctx, "timetable.Generate")
	defer span.End()
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	today := s.Today()

	key := ""
	if gen, ok := s.generation(ctx, timetableKind, owner); ok {
		key = timetableKey(owner, gen, today)
		if raw, hit := s.cacheGet(ctx, key); hit {
			var slots []planner.SessionSlot
			if err := json.Unmarshal(raw, &slots); err == nil {
				metrics.TimetableCacheHits.Inc()
				span.SetAttributes(attribute.Bool("timetable.cached", true))
				return slots, nil
			}
		}
	}

	var (
		subjects   []planner.Subject
		prefs      *planner.StudyPreferences
		exclusions []planner.Exclusion
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		subjects, err = s.plans.ListSubjects(gctx, owner)
		return err
	})
	g.Go(func() error {
		var err error
		prefs, err = s.plans.GetPreferences(gctx, owner)
		return err
	})
	g.Go(func() error {
		var err error
		exclusions, err = s.plans.ListExclusions(gctx, owner)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, apperr.Storage(err)
	}

	resolved, err := planner.ResolvePreferences(prefs)
	if err != nil {
		return nil, err
	}
	slots, stats := planner.AllocateWithStats(subjects, resolved, planner.ExclusionsOf(exclusions), today)

	metrics.TimetablesGenerated.Inc()
	metrics.SlotsAllocated.Add(float64(len(slots)))
	if stats.NonPositiveSlots > 0 {
		metrics.NonPositiveSlots.Add(float64(stats.NonPositiveSlots))
		s.log.Warn("timetable has non-positive session durations",
			"owner", owner, "slots", stats.NonPositiveSlots, "window_hours", resolved.AvailableDuration)
	}
	span.SetAttributes(
		attribute.Int("timetable.subjects", len(subjects)),
		attribute.Int("timetable.slots", len(slots)),
		attribute.Int("timetable.days", stats.ScheduledDays),
	)

	if key != "" {
		if raw, err := json.Marshal(slots); err == nil {
			s.cacheSet(ctx, key, raw, s.timetableTTL)
		}
	}
	return slots, nil
}

type pendingSlot struct {
	subject string
	date    string
	start   string
	end     string
}

// Save persists slots. Every slot is validated before anything is written.
// Slots naming an unknown subject are skipped and duplicates are no-ops. A
// failing slot does not stop the rest; failures are reported together.
func (s *Service) Save(ctx context.Context, owner string, slots []planner.SessionSlot) (SaveResult, error) {
	ctx, span := tracer.Start(ctx, "timetable.Save")
	defer span.End()
	if err := requireOwner(owner); err != nil {
		return SaveResult{}, err
	}

	pending := make([]pendingSlot, 0, len(slots))
	for i, slot := range slots {
		p, err := normalizeSlot(slot)
		if err != nil {
			return SaveResult{}, apperr.E(apperr.KindValidation, fmt.Sprintf("session %d: %v", i, err), err)
		}
		pending = append(pending, p)
	}

	var (
		res  SaveResult
		errs []error
		ids  = make(map[string]string)
	)
	for _, p := range pending {
		id, seen := ids[p.subject]
		if !seen {
			found, ok, err := s.plans.SubjectIDByName(ctx, owner, p.subject)
			if err != nil {
				errs = append(errs, fmt.Errorf("subject %q: %w", p.subject, err))
				metrics.SessionsSaved.WithLabelValues("failed").Inc()
				continue
			}
			if ok {
				id = found
			}
			ids[p.subject] = id
		}
		if id == "" {
			res.Skipped++
			metrics.SessionsSaved.WithLabelValues("skipped").Inc()
			continue
		}
		inserted, err := s.sessions.InsertSession(ctx, planner.StudySession{
			Owner:       owner,
			SubjectID:   id,
			SessionDate: p.date,
			StartTime:   p.start,
			EndTime:     p.end,
		})
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("session %s %s-%s: %w", p.date, p.start, p.end, err))
			metrics.SessionsSaved.WithLabelValues("failed").Inc()
		case inserted:
			res.Saved++
			metrics.SessionsSaved.WithLabelValues("saved").Inc()
		default:
			res.Duplicates++
			metrics.SessionsSaved.WithLabelValues("duplicate").Inc()
		}
	}

	span.SetAttributes(
		attribute.Int("sessions.saved", res.Saved),
		attribute.Int("sessions.skipped", res.Skipped),
		attribute.Int("sessions.failed", len(errs)),
	)
	if res.Saved > 0 {
		s.invalidateCalendar(ctx, owner)
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		span.RecordError(err)
		return res, apperr.Storage(err)
	}
	return res, nil
}

func normalizeSlot(slot planner.SessionSlot) (pendingSlot, error) {
	date, err := planner.ParseDate(slot.Date)
	if err != nil {
		return pendingSlot{}, err
	}
	start, err := planner.NormalizeClock(slot.StartTime)
	if err != nil {
		return pendingSlot{}, fmt.Errorf("start_time: %w", err)
	}
	end, err := planner.NormalizeClock(slot.EndTime)
	if err != nil {
		return pendingSlot{}, fmt.Errorf("end_time: %w", err)
	}
	return pendingSlot{subject: slot.Subject, date: date.Format(planner.DateLayout), start: start, end: end}, nil
}

// CreateSession stores one session for a subject of the owner. Re-creating
// an existing session returns the stored row.
func (s *Service) CreateSession(ctx context.Context, owner string, in SessionInput) (planner.StudySession, error) {
	if err := requireOwner(owner); err != nil {
		return planner.StudySession{}, err
	}
	if err := check(in); err != nil {
		return planner.StudySession{}, err
	}
	p, err := normalizeSlot(planner.SessionSlot{Date: in.SessionDate, StartTime: in.StartTime, EndTime: in.EndTime})
	if err != nil {
		return planner.StudySession{}, apperr.E(apperr.KindValidation, err.Error(), err)
	}
	ok, err := s.plans.SubjectExists(ctx, owner, in.SubjectID)
	if err != nil {
		return planner.StudySession{}, apperr.Storage(err)
	}
	if !ok {
		return planner.StudySession{}, apperr.NotFound("Subject not found")
	}

	key := planner.StudySession{Owner: owner, SubjectID: in.SubjectID, SessionDate: p.date, StartTime: p.start, EndTime: p.end}
	inserted, err := s.sessions.InsertSession(ctx, key)
	if err != nil {
		return planner.StudySession{}, apperr.Storage(err)
	}
	session, err := s.sessions.SessionByKey(ctx, key)
	if err != nil {
		return planner.StudySession{}, apperr.Storage(err)
	}
	if inserted {
		s.invalidateCalendar(ctx, owner)
	}
	return session, nil
}

// List returns the owner's sessions ordered by date.
func (s *Service) List(ctx context.Context, owner string) ([]planner.StudySession, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	out, err := s.sessions.ListSessions(ctx, owner)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return out, nil
}

// SetCompleted toggles a session. Sessions of other owners are NotFound.
func (s *Service) SetCompleted(ctx context.Context, owner, id string, completed bool) (planner.StudySession, error) {
	if err := requireOwner(owner); err != nil {
		return planner.StudySession{}, err
	}
	if strings.TrimSpace(id) == "" {
		return planner.StudySession{}, apperr.Validation("session id required")
	}
	session, ok, err := s.sessions.SetSessionCompleted(ctx, owner, id, completed)
	if err != nil {
		return planner.StudySession{}, apperr.Storage(err)
	}
	if !ok {
		return planner.StudySession{}, apperr.NotFound("Session not found or unauthorized")
	}
	s.invalidateCalendar(ctx, owner)
	return session, nil
}

// ClearAll deletes every session of owner.
func (s *Service) ClearAll(ctx context.Context, owner string) (int64, error) {
	if err := requireOwner(owner); err != nil {
		return 0, err
	}
	n, err := s.sessions.ClearSessions(ctx, owner)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	s.invalidateCalendar(ctx, owner)
	return n, nil
}

// Dashboard counts completed and pending sessions.
func (s *Service) Dashboard(ctx context.Context, owner string) (Dashboard, error) {
	if err := requireOwner(owner); err != nil {
		return Dashboard{}, err
	}
	sessions, err := s.sessions.ListSessionsWithSubject(ctx, owner)
	if err != nil {
		return Dashboard{}, apperr.Storage(err)
	}
	d := Dashboard{TotalSessions: len(sessions), Sessions: sessions}
	for _, sess := range sessions {
		if sess.Completed {
			d.CompletedSessions++
		}
	}
	d.PendingSessions = d.TotalSessions - d.CompletedSessions
	return d, nil
}

// Export returns the owner's sessions as an iCalendar payload, from cache
// when the sessions have not changed since it was rendered.
func (s *Service) Export(ctx context.Context, owner string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "timetable.Export")
	defer span.End()
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	key := ""
	if gen, ok := s.generation(ctx, calendarKind, owner); ok {
		key = calendarKey(owner, gen)
		if raw, hit := s.cacheGet(ctx, key); hit {
			metrics.CalendarExports.WithLabelValues("cached").Inc()
			span.SetAttributes(attribute.Bool("calendar.cached", true))
			return raw, nil
		}
	}
	payload, err := s.render(ctx, owner)
	if err != nil {
		metrics.CalendarExports.WithLabelValues("failed").Inc()
		span.RecordError(err)
		return nil, err
	}
	metrics.CalendarExports.WithLabelValues("rendered").Inc()
	if key != "" {
		s.cacheSet(ctx, key, payload, s.calendarTTL)
	}
	return payload, nil
}

// RefreshCalendar renders the owner's calendar into the cache ahead of
// the next export. It does nothing without a cache.
func (s *Service) RefreshCalendar(ctx context.Context, owner string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	gen, ok := s.generation(ctx, calendarKind, owner)
	if !ok {
		return nil
	}
	payload, err := s.render(ctx, owner)
	if err != nil {
		return err
	}
	s.cacheSet(ctx, calendarKey(owner, gen), payload, s.calendarTTL)
	return nil
}

func (s *Service) render(ctx context.Context, owner string) ([]byte, error) {
	sessions, err := s.sessions.ListSessionsWithSubject(ctx, owner)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return s.exporter.Export(sessions)
}

func calendarKey(owner, gen string) string {
	return calendarKind + ":" + owner + ":" + gen
}

func timetableKey(owner, gen string, day time.Time) string {
	return timetableKind + ":" + owner + ":" + gen + ":" + day.Format(planner.DateLayout)
}
