package models

import (
	id "github.com/ahmadsobohhh/UnityPlatform/pkg/domain"
)

// Role determines which surface a user lands on after login. It is stored as
// a free-form string; anything that is not RoleTeacher routes to the student
// surface (unrecognized values deliberately included).
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// UserProfile is the per-account document at users/{uid}. Username keeps the
// display casing the user typed; the normalized form lives only in the
// directory key.
type UserProfile struct {
	UID       id.UserID `json:"uid"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
}

// UsernameEntry is the directory document at usernames/{normalizedKey}. It
// exists so login by username can resolve an email without scanning profiles,
// and so the key space doubles as the uniqueness domain.
//
// Entries are never deleted: the key choice is permanent for an account's
// primary username.
type UsernameEntry struct {
	UID   id.UserID `json:"uid"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// SyntheticEmailDomain hosts the deterministic addresses minted for students,
// who never enter an email but still authenticate by one. Collisions are
// structurally impossible because the local part is the unique username key.
const SyntheticEmailDomain = "students.example"

// SyntheticEmail builds the login email for a student from their normalized
// username key.
func SyntheticEmail(normalizedKey string) string {
	return normalizedKey + "@" + SyntheticEmailDomain
}
