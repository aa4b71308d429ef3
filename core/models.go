package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gender is the fixed profile gender enum.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// ParseGender maps free-form provider/input values onto the enum.
// Anything unrecognized becomes GenderOther.
func ParseGender(value string) Gender {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "MALE":
		return GenderMale
	case "FEMALE":
		return GenderFemale
	default:
		return GenderOther
	}
}

// User is an account record. PasswordHash is never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile describes the human behind an account, one-to-one with User.
// Created lazily on first write.
type Profile struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Gender    Gender    `json:"gender"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AgeFromBirthday derives a whole-year age at the reference time.
// Returns 0 when the birth date is incomplete.
func AgeFromBirthday(year, month, day int, now time.Time) int {
	if year == 0 || month == 0 || day == 0 {
		return 0
	}

	birth := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	age := now.Year() - birth.Year()

	hadBirthday := now.Month() > birth.Month() ||
		(now.Month() == birth.Month() && now.Day() >= birth.Day())
	if !hadBirthday {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
