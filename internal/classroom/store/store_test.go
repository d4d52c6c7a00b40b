package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ahmadsobohhh/UnityPlatform/internal/classroom/models"
	"github.com/ahmadsobohhh/UnityPlatform/internal/classroom/store"
	"github.com/ahmadsobohhh/UnityPlatform/internal/docstore"
	"github.com/ahmadsobohhh/UnityPlatform/internal/docstore/memory"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/platform/sentinel"
)

type ClassroomStoreSuite struct {
	suite.Suite
	docs  *memory.Store
	store *store.Store
}

func TestClassroomStoreSuite(t *testing.T) {
	suite.Run(t, new(ClassroomStoreSuite))
}

func (s *ClassroomStoreSuite) SetupTest() {
	s.docs = memory.New()
	s.store = store.New(s.docs)
}

func at(sec int64) docstore.Millis {
	return docstore.At(time.Unix(sec, 0))
}

func (s *ClassroomStoreSuite) TestCreateAndGetClass() {
	ctx := context.Background()
	class := models.Classroom{ID: "c1", Name: "Math", Code: "ABC234", OwnerUID: "t1", CreatedAt: at(100), UpdatedAt: at(100)}

	s.Require().NoError(s.store.CreateClass(ctx, class))

	got, err := s.store.GetClass(ctx, "c1")
	s.Require().NoError(err)
	s.Equal(class, got)

	s.ErrorIs(s.store.CreateClass(ctx, class), sentinel.ErrConflict)
}

func (s *ClassroomStoreSuite) TestUpdateClassName() {
	ctx := context.Background()
	s.Require().NoError(s.store.CreateClass(ctx, models.Classroom{
		ID: "c1", Name: "Math", Code: "ABC234", OwnerUID: "t1", CreatedAt: at(100), UpdatedAt: at(100),
	}))

	s.Require().NoError(s.store.UpdateClassName(ctx, "c1", "Advanced Math", at(200)))

	got, err := s.store.GetClass(ctx, "c1")
	s.Require().NoError(err)
	s.Equal("Advanced Math", got.Name)
	s.Equal("ABC234", got.Code)
	s.Equal(at(200), got.UpdatedAt)
}

func (s *ClassroomStoreSuite) TestFindByCode() {
	ctx := context.Background()
	s.Require().NoError(s.store.CreateClass(ctx, models.Classroom{ID: "c1", Code: "AAA222"}))
	s.Require().NoError(s.store.CreateClass(ctx, models.Classroom{ID: "c2", Code: "BBB333"}))

	got, err := s.store.FindByCode(ctx, "BBB333")
	s.Require().NoError(err)
	s.Equal("c2", string(got.ID))

	_, err = s.store.FindByCode(ctx, "ZZZ999")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ClassroomStoreSuite) TestCodeInUse() {
	ctx := context.Background()
	s.Require().NoError(s.store.CreateClass(ctx, models.Classroom{ID: "c1", Code: "AAA222"}))

	inUse, err := s.store.CodeInUse(ctx, "AAA222")
	s.Require().NoError(err)
	s.True(inUse)

	inUse, err = s.store.CodeInUse(ctx, "ZZZ999")
	s.Require().NoError(err)
	s.False(inUse)
}

func (s *ClassroomStoreSuite) TestTeacherEntriesNewestFirst() {
	ctx := context.Background()
	s.Require().NoError(s.store.PutTeacherEntry(ctx, "t1", models.TeacherClassEntry{ID: "c1", Name: "Old", CreatedAt: at(100)}))
	s.Require().NoError(s.store.PutTeacherEntry(ctx, "t1", models.TeacherClassEntry{ID: "c2", Name: "New", CreatedAt: at(300)}))
	s.Require().NoError(s.store.PutTeacherEntry(ctx, "t1", models.TeacherClassEntry{ID: "c3", Name: "Mid", CreatedAt: at(200)}))

	entries, err := s.store.ListTeacherEntries(ctx, "t1")
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("c2", string(entries[0].ID))
	s.Equal("c3", string(entries[1].ID))
	s.Equal("c1", string(entries[2].ID))
}

func (s *ClassroomStoreSuite) TestTeacherEntriesAreScopedByUID() {
	ctx := context.Background()
	s.Require().NoError(s.store.PutTeacherEntry(ctx, "t1", models.TeacherClassEntry{ID: "c1", CreatedAt: at(100)}))

	entries, err := s.store.ListTeacherEntries(ctx, "t2")
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *ClassroomStoreSuite) TestDeleteTeacherEntry() {
	ctx := context.Background()
	s.Require().NoError(s.store.PutTeacherEntry(ctx, "t1", models.TeacherClassEntry{ID: "c1", CreatedAt: at(100)}))
	s.Require().NoError(s.store.DeleteTeacherEntry(ctx, "t1", "c1"))

	entries, err := s.store.ListTeacherEntries(ctx, "t1")
	s.Require().NoError(err)
	s.Empty(entries)

	// Idempotent.
	s.Require().NoError(s.store.DeleteTeacherEntry(ctx, "t1", "c1"))
}

func (s *ClassroomStoreSuite) TestStudentEntriesOrderedByJoinedAt() {
	ctx := context.Background()
	s.Require().NoError(s.store.PutStudentEntry(ctx, "u1", models.StudentClassEntry{ID: "c2", JoinedAt: at(200)}))
	s.Require().NoError(s.store.PutStudentEntry(ctx, "u1", models.StudentClassEntry{ID: "c1", JoinedAt: at(100)}))

	entries, err := s.store.ListStudentEntries(ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("c1", string(entries[0].ID))
	s.Equal("c2", string(entries[1].ID))
}

func (s *ClassroomStoreSuite) TestRepeatStudentEntryOverwrites() {
	ctx := context.Background()
	s.Require().NoError(s.store.PutStudentEntry(ctx, "u1", models.StudentClassEntry{ID: "c1", Name: "Math", JoinedAt: at(100)}))
	s.Require().NoError(s.store.PutStudentEntry(ctx, "u1", models.StudentClassEntry{ID: "c1", Name: "Math", JoinedAt: at(500)}))

	entries, err := s.store.ListStudentEntries(ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(at(500), entries[0].JoinedAt)
}

func (s *ClassroomStoreSuite) TestUpsertMemberSeedsOnce() {
	ctx := context.Background()

	first := models.Member{UID: "u1", JoinedAt: at(100), Level: models.InitialLevel, XP: models.InitialXP, Gold: models.InitialGold}
	s.Require().NoError(s.store.UpsertMember(ctx, "c1", first))

	members, err := s.store.ListMembers(ctx, "c1")
	s.Require().NoError(err)
	s.Require().Len(members, 1)
	s.Equal(1, members[0].Level)

	// Gameplay advances the member; a rejoin must not reset it.
	s.Require().NoError(s.docs.Merge(ctx, "classes/c1/members", "u1",
		map[string]any{"level": 7, "xp": 420, "gold": 99}))

	rejoin := models.Member{UID: "u1", JoinedAt: at(900), Level: models.InitialLevel, XP: models.InitialXP, Gold: models.InitialGold}
	s.Require().NoError(s.store.UpsertMember(ctx, "c1", rejoin))

	members, err = s.store.ListMembers(ctx, "c1")
	s.Require().NoError(err)
	s.Require().Len(members, 1)
	s.Equal(7, members[0].Level)
	s.Equal(420, members[0].XP)
	s.Equal(99, members[0].Gold)
	s.Equal(at(900), members[0].JoinedAt)
}
