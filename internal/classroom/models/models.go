package models

import (
	"github.com/ahmadsobohhh/UnityPlatform/internal/docstore"
	id "github.com/ahmadsobohhh/UnityPlatform/pkg/domain"
)

// Classroom is the authoritative record at classes/{classId}. The join code
// is globally unique across all classrooms, not just one owner's.
type Classroom struct {
	ID        id.ClassID      `json:"id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	OwnerUID  id.UserID       `json:"ownerUid"`
	CreatedAt docstore.Millis `json:"createdAt"`
	UpdatedAt docstore.Millis `json:"updatedAt"`
}

// TeacherClassEntry is the denormalized listing document at
// users/{uid}/classes/{classId}. Teachers list from here, never by scanning
// the registry.
type TeacherClassEntry struct {
	ID        id.ClassID      `json:"id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	CreatedAt docstore.Millis `json:"createdAt"`
}

// StudentClassEntry is the membership document at
// users/{uid}/classrooms/{classId}. Ordered by joinedAt; the ordering defines
// the student's slot ordinal.
type StudentClassEntry struct {
	ID       id.ClassID      `json:"id"`
	Name     string          `json:"name"`
	Code     string          `json:"code"`
	JoinedAt docstore.Millis `json:"joinedAt"`
}

// Member is the roster document at classes/{classId}/members/{uid}, carrying
// the per-classroom game state. Level, xp and gold belong to gameplay; the
// join flow seeds them once and must never reset them afterwards.
type Member struct {
	UID      id.UserID       `json:"uid"`
	JoinedAt docstore.Millis `json:"joinedAt"`
	Level    int             `json:"level"`
	XP       int             `json:"xp"`
	Gold     int             `json:"gold"`
}

// Seed values for a first-time member.
const (
	InitialLevel = 1
	InitialXP    = 0
	InitialGold  = 0
)
