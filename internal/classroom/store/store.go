// Package store persists classroom documents: the authoritative registry plus
// the denormalized teacher and student indices and the per-classroom roster.
package store

import (
	"context"
	"errors"

	"github.com/ahmadsobohhh/UnityPlatform/internal/classroom/models"
	"github.com/ahmadsobohhh/UnityPlatform/internal/docstore"
	id "github.com/ahmadsobohhh/UnityPlatform/pkg/domain"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/platform/sentinel"
)

// RegistryCollection holds the authoritative classroom records.
const RegistryCollection = "classes"

func teacherIndexCollection(uid id.UserID) string {
	return "users/" + string(uid) + "/classes"
}

func studentIndexCollection(uid id.UserID) string {
	return "users/" + string(uid) + "/classrooms"
}

func membersCollection(classID id.ClassID) string {
	return "classes/" + string(classID) + "/members"
}

// Store wraps the document store with the classroom collection layout.
type Store struct {
	docs docstore.Store
}

func New(docs docstore.Store) *Store {
	return &Store{docs: docs}
}

// CreateClass writes a new registry record. Fails with sentinel.ErrConflict
// if the id is already taken.
func (s *Store) CreateClass(ctx context.Context, class models.Classroom) error {
	return s.docs.Create(ctx, RegistryCollection, string(class.ID), class)
}

// GetClass loads a registry record.
func (s *Store) GetClass(ctx context.Context, classID id.ClassID) (models.Classroom, error) {
	var class models.Classroom
	if err := s.docs.Get(ctx, RegistryCollection, string(classID), &class); err != nil {
		return models.Classroom{}, err
	}
	return class, nil
}

// UpdateClassName patches name and updatedAt on the registry record.
func (s *Store) UpdateClassName(ctx context.Context, classID id.ClassID, name string, updatedAt docstore.Millis) error {
	return s.docs.Merge(ctx, RegistryCollection, string(classID), map[string]any{
		"name":      name,
		"updatedAt": updatedAt,
	})
}

// DeleteClass removes the registry record. Deleting an absent class is a
// no-op.
func (s *Store) DeleteClass(ctx context.Context, classID id.ClassID) error {
	return s.docs.Delete(ctx, RegistryCollection, string(classID))
}

// FindByCode resolves a join code to its classroom via an equality query
// limited to one result. Zero matches report sentinel.ErrNotFound.
func (s *Store) FindByCode(ctx context.Context, code string) (models.Classroom, error) {
	var matches []models.Classroom
	err := s.docs.Query(ctx, RegistryCollection, docstore.Query{
		Field:  "code",
		Equals: code,
		Limit:  1,
	}, &matches)
	if err != nil {
		return models.Classroom{}, err
	}
	if len(matches) == 0 {
		return models.Classroom{}, sentinel.ErrNotFound
	}
	return matches[0], nil
}

// CodeInUse reports whether any classroom already carries the code. Satisfies
// the join-code generator's Checker contract.
func (s *Store) CodeInUse(ctx context.Context, code string) (bool, error) {
	_, err := s.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PutTeacherEntry writes the teacher's listing entry for a class.
func (s *Store) PutTeacherEntry(ctx context.Context, uid id.UserID, entry models.TeacherClassEntry) error {
	return s.docs.Set(ctx, teacherIndexCollection(uid), string(entry.ID), entry)
}

// UpdateTeacherEntryName patches the name on a teacher's listing entry.
func (s *Store) UpdateTeacherEntryName(ctx context.Context, uid id.UserID, classID id.ClassID, name string) error {
	return s.docs.Merge(ctx, teacherIndexCollection(uid), string(classID), map[string]any{
		"name": name,
	})
}

// DeleteTeacherEntry removes a teacher's listing entry.
func (s *Store) DeleteTeacherEntry(ctx context.Context, uid id.UserID, classID id.ClassID) error {
	return s.docs.Delete(ctx, teacherIndexCollection(uid), string(classID))
}

// ListTeacherEntries returns all of a teacher's classes, newest first.
func (s *Store) ListTeacherEntries(ctx context.Context, uid id.UserID) ([]models.TeacherClassEntry, error) {
	var entries []models.TeacherClassEntry
	err := s.docs.Query(ctx, teacherIndexCollection(uid), docstore.Query{
		OrderBy: "createdAt",
		Desc:    true,
	}, &entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// PutStudentEntry writes the student's membership entry. Keyed by classId, so
// a repeat join overwrites rather than duplicates.
func (s *Store) PutStudentEntry(ctx context.Context, uid id.UserID, entry models.StudentClassEntry) error {
	return s.docs.Set(ctx, studentIndexCollection(uid), string(entry.ID), entry)
}

// ListStudentEntries returns the student's classrooms ordered by joinedAt
// ascending. The ordering defines the slot ordinals.
func (s *Store) ListStudentEntries(ctx context.Context, uid id.UserID) ([]models.StudentClassEntry, error) {
	var entries []models.StudentClassEntry
	err := s.docs.Query(ctx, studentIndexCollection(uid), docstore.Query{
		OrderBy: "joinedAt",
	}, &entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// UpsertMember seeds a roster record on first join and only refreshes uid and
// joinedAt on a repeat join, so gameplay's level/xp/gold are never reset.
func (s *Store) UpsertMember(ctx context.Context, classID id.ClassID, member models.Member) error {
	err := s.docs.Create(ctx, membersCollection(classID), string(member.UID), member)
	if errors.Is(err, sentinel.ErrConflict) {
		return s.docs.Merge(ctx, membersCollection(classID), string(member.UID), map[string]any{
			"uid":      member.UID,
			"joinedAt": member.JoinedAt,
		})
	}
	return err
}

// ListMembers returns the classroom roster ordered by joinedAt ascending.
func (s *Store) ListMembers(ctx context.Context, classID id.ClassID) ([]models.Member, error) {
	var members []models.Member
	err := s.docs.Query(ctx, membersCollection(classID), docstore.Query{
		OrderBy: "joinedAt",
	}, &members)
	if err != nil {
		return nil, err
	}
	return members, nil
}
