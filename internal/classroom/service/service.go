// Package service orchestrates the classroom lifecycle and the join flow,
// keeping the denormalized indices in step with the registry.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ahmadsobohhh/UnityPlatform/internal/classroom/joincode"
	"github.com/ahmadsobohhh/UnityPlatform/internal/classroom/metrics"
	"github.com/ahmadsobohhh/UnityPlatform/internal/classroom/models"
	"github.com/ahmadsobohhh/UnityPlatform/internal/classroom/slots"
	"github.com/ahmadsobohhh/UnityPlatform/internal/docstore"
	id "github.com/ahmadsobohhh/UnityPlatform/pkg/domain"
	dErrors "github.com/ahmadsobohhh/UnityPlatform/pkg/domain-errors"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/platform/audit"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/platform/sentinel"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/requestcontext"
)

// PageSize is the fixed page size for teacher classroom listings.
const PageSize = 6

type ClassStore interface {
	CreateClass(ctx context.Context, class models.Classroom) error
	GetClass(ctx context.Context, classID id.ClassID) (models.Classroom, error)
	UpdateClassName(ctx context.Context, classID id.ClassID, name string, updatedAt docstore.Millis) error
	DeleteClass(ctx context.Context, classID id.ClassID) error
	FindByCode(ctx context.Context, code string) (models.Classroom, error)

	PutTeacherEntry(ctx context.Context, uid id.UserID, entry models.TeacherClassEntry) error
	UpdateTeacherEntryName(ctx context.Context, uid id.UserID, classID id.ClassID, name string) error
	DeleteTeacherEntry(ctx context.Context, uid id.UserID, classID id.ClassID) error
	ListTeacherEntries(ctx context.Context, uid id.UserID) ([]models.TeacherClassEntry, error)

	PutStudentEntry(ctx context.Context, uid id.UserID, entry models.StudentClassEntry) error
	ListStudentEntries(ctx context.Context, uid id.UserID) ([]models.StudentClassEntry, error)

	UpsertMember(ctx context.Context, classID id.ClassID, member models.Member) error
	ListMembers(ctx context.Context, classID id.ClassID) ([]models.Member, error)
}

type CodeGenerator interface {
	Generate(ctx context.Context) (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates classroom flows.
type Service struct {
	store          ClassStore
	codes          CodeGenerator
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(store ClassStore, codes CodeGenerator, opts ...Option) *Service {
	s := &Service{
		store:  store,
		codes:  codes,
		logger: slog.Default(),
		tracer: otel.Tracer("classroom"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create allocates a join code and writes the registry record and the
// teacher's listing entry as a pair.
func (s *Service) Create(ctx context.Context, ownerUID id.UserID, name string) (models.Classroom, error) {
	ctx, span := s.tracer.Start(ctx, "classroom.Create")
	defer span.End()
	start := time.Now()
	defer s.observeCreate(start)

	name = strings.TrimSpace(name)
	if name == "" {
		return models.Classroom{}, dErrors.New(dErrors.CodeBadRequest, "Missing Class Name")
	}

	code, err := s.codes.Generate(ctx)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, sentinel.ErrExhausted) {
			return models.Classroom{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not allocate a join code")
		}
		return models.Classroom{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "Network or permissions error.")
	}

	now := docstore.At(requestcontext.Now(ctx))
	class := models.Classroom{
		ID:        id.NewClassID(),
		Name:      name,
		Code:      code,
		OwnerUID:  ownerUID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	entry := models.TeacherClassEntry{
		ID:        class.ID,
		Name:      class.Name,
		Code:      class.Code,
		CreatedAt: class.CreatedAt,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.store.CreateClass(gctx, class)
	})
	g.Go(func() error {
		return s.store.PutTeacherEntry(gctx, ownerUID, entry)
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		// One half of the pair may have landed; no rollback.
		s.logger.ErrorContext(ctx, "classroom creation writes failed",
			"class_id", class.ID,
			"owner_uid", ownerUID,
			"error", err,
		)
		return models.Classroom{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to create class")
	}

	s.logAudit(ctx, audit.Event{
		Action:  audit.ActionClassCreated,
		UserID:  ownerUID,
		ClassID: class.ID,
	})
	if s.metrics != nil {
		s.metrics.ClassesCreated.Inc()
	}
	return class, nil
}

// Rename updates the registry name and the teacher's listing entry as a pair.
func (s *Service) Rename(ctx context.Context, ownerUID id.UserID, classID id.ClassID, newName string) (models.Classroom, error) {
	ctx, span := s.tracer.Start(ctx, "classroom.Rename")
	defer span.End()

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return models.Classroom{}, dErrors.New(dErrors.CodeBadRequest, "Missing Class Name")
	}

	class, err := s.ownedClass(ctx, ownerUID, classID)
	if err != nil {
		return models.Classroom{}, err
	}

	now := docstore.At(requestcontext.Now(ctx))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.store.UpdateClassName(gctx, classID, newName, now)
	})
	g.Go(func() error {
		return s.store.UpdateTeacherEntryName(gctx, ownerUID, classID, newName)
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "classroom rename writes failed",
			"class_id", classID,
			"error", err,
		)
		return models.Classroom{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to rename class")
	}

	s.logAudit(ctx, audit.Event{
		Action:  audit.ActionClassRenamed,
		UserID:  ownerUID,
		ClassID: classID,
	})
	if s.metrics != nil {
		s.metrics.ClassesRenamed.Inc()
	}

	class.Name = newName
	class.UpdatedAt = now
	return class, nil
}

// Delete removes the registry record and the teacher's listing entry as a
// pair. Member and student-index records are left in place; orphaned roster
// documents are tolerated by readers.
func (s *Service) Delete(ctx context.Context, ownerUID id.UserID, classID id.ClassID) error {
	ctx, span := s.tracer.Start(ctx, "classroom.Delete")
	defer span.End()

	if _, err := s.ownedClass(ctx, ownerUID, classID); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.store.DeleteClass(gctx, classID)
	})
	g.Go(func() error {
		return s.store.DeleteTeacherEntry(gctx, ownerUID, classID)
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "classroom delete writes failed",
			"class_id", classID,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to delete class")
	}

	s.logAudit(ctx, audit.Event{
		Action:  audit.ActionClassDeleted,
		UserID:  ownerUID,
		ClassID: classID,
	})
	if s.metrics != nil {
		s.metrics.ClassesDeleted.Inc()
	}
	return nil
}

// Page is one page of a teacher's classroom listing, newest first.
type Page struct {
	Classes   []models.TeacherClassEntry
	Page      int
	PageCount int
	Total     int
}

// ListTeacherClasses pages through the teacher's listing index. Pages are
// zero-based; out-of-range pages return an empty page rather than an error.
func (s *Service) ListTeacherClasses(ctx context.Context, uid id.UserID, page int) (Page, error) {
	entries, err := s.store.ListTeacherEntries(ctx, uid)
	if err != nil {
		return Page{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "Network or permissions error.")
	}

	total := len(entries)
	pageCount := (total + PageSize - 1) / PageSize
	if page < 0 {
		page = 0
	}

	startIdx := page * PageSize
	if startIdx > total {
		startIdx = total
	}
	endIdx := startIdx + PageSize
	if endIdx > total {
		endIdx = total
	}

	return Page{
		Classes:   entries[startIdx:endIdx],
		Page:      page,
		PageCount: pageCount,
		Total:     total,
	}, nil
}

// StudentView is a student's classroom list plus the derived slot view.
type StudentView struct {
	Classrooms []models.StudentClassEntry
	Slots      []slots.Slot
}

// ListStudentClassrooms loads the student's index, ordered by join time, and
// derives the slot view from it.
func (s *Service) ListStudentClassrooms(ctx context.Context, uid id.UserID) (StudentView, error) {
	entries, err := s.store.ListStudentEntries(ctx, uid)
	if err != nil {
		return StudentView{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "Network or permissions error.")
	}
	return StudentView{Classrooms: entries, Slots: slots.View(entries)}, nil
}

// JoinResult is the resolved classroom plus the student's refreshed view.
type JoinResult struct {
	Classroom models.Classroom
	View      StudentView
}

// Join resolves a join code and writes the student's index entry and the
// roster record as a pair. A repeat join refreshes joinedAt but never resets
// the member's game state.
func (s *Service) Join(ctx context.Context, uid id.UserID, rawCode string) (JoinResult, error) {
	ctx, span := s.tracer.Start(ctx, "classroom.Join")
	defer span.End()
	start := time.Now()
	defer s.observeJoin(start)

	code := joincode.Normalize(rawCode)
	if code == "" {
		s.incrementJoin("invalid_code")
		return JoinResult{}, dErrors.New(dErrors.CodeBadRequest, "Missing Class Code")
	}

	class, err := s.store.FindByCode(ctx, code)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, sentinel.ErrNotFound) {
			s.incrementJoin("invalid_code")
			return JoinResult{}, dErrors.New(dErrors.CodeNotFound, "Invalid Class Code")
		}
		s.incrementJoin("failure")
		return JoinResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "Network or permissions error.")
	}

	now := docstore.At(requestcontext.Now(ctx))
	entry := models.StudentClassEntry{
		ID:       class.ID,
		Name:     class.Name,
		Code:     class.Code,
		JoinedAt: now,
	}
	member := models.Member{
		UID:      uid,
		JoinedAt: now,
		Level:    models.InitialLevel,
		XP:       models.InitialXP,
		Gold:     models.InitialGold,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.store.PutStudentEntry(gctx, uid, entry)
	})
	g.Go(func() error {
		return s.store.UpsertMember(gctx, class.ID, member)
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "join writes failed",
			"class_id", class.ID,
			"uid", uid,
			"error", err,
		)
		s.incrementJoin("failure")
		return JoinResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "Failed to join class")
	}

	s.logAudit(ctx, audit.Event{
		Action:  audit.ActionClassJoined,
		UserID:  uid,
		ClassID: class.ID,
	})
	s.incrementJoin("success")

	// Refresh so the caller sees the next empty slot advance. The join itself
	// already succeeded, so a failed refresh only costs the view.
	view, err := s.ListStudentClassrooms(ctx, uid)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to refresh classroom list after join",
			"uid", uid,
			"error", err,
		)
		view = StudentView{}
	}

	return JoinResult{Classroom: class, View: view}, nil
}

// Roster returns the classroom's member list for its owner.
func (s *Service) Roster(ctx context.Context, ownerUID id.UserID, classID id.ClassID) ([]models.Member, error) {
	if _, err := s.ownedClass(ctx, ownerUID, classID); err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, classID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "Network or permissions error.")
	}
	return members, nil
}

// ownedClass loads a class and verifies the caller owns it. A class owned by
// someone else reads as not found so probing ids leaks nothing.
func (s *Service) ownedClass(ctx context.Context, ownerUID id.UserID, classID id.ClassID) (models.Classroom, error) {
	class, err := s.store.GetClass(ctx, classID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Classroom{}, dErrors.New(dErrors.CodeNotFound, "class not found")
		}
		return models.Classroom{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "Network or permissions error.")
	}
	if class.OwnerUID != ownerUID {
		return models.Classroom{}, dErrors.New(dErrors.CodeNotFound, "class not found")
	}
	return class, nil
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, string(event.Action),
		"event", event.Action,
		"user_id", event.UserID,
		"class_id", event.ClassID,
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, event)
}

func (s *Service) incrementJoin(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementJoin(outcome)
	}
}

func (s *Service) observeCreate(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveCreate(start)
	}
}

func (s *Service) observeJoin(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveJoin(start)
	}
}
