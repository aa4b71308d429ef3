package core_test

import (
	"testing"
	"time"

	"tastebook/core"

	"github.com/stretchr/testify/assert"
)

func TestParseGender(t *testing.T) {
	assert.Equal(t, core.GenderMale, core.ParseGender("male"))
	assert.Equal(t, core.GenderMale, core.ParseGender(" MALE "))
	assert.Equal(t, core.GenderFemale, core.ParseGender("Female"))
	assert.Equal(t, core.GenderOther, core.ParseGender("other"))
	assert.Equal(t, core.GenderOther, core.ParseGender("unspecified"))
	assert.Equal(t, core.GenderOther, core.ParseGender(""))
}

func TestAgeFromBirthday(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	// Birthday already happened this year
	assert.Equal(t, 36, core.AgeFromBirthday(1990, 6, 15, now))

	// Birthday still ahead this year
	assert.Equal(t, 35, core.AgeFromBirthday(1990, 12, 1, now))

	// Birthday today
	assert.Equal(t, 36, core.AgeFromBirthday(1990, 8, 28, now))

	// Incomplete dates yield 0
	assert.Equal(t, 0, core.AgeFromBirthday(0, 6, 15, now))
	assert.Equal(t, 0, core.AgeFromBirthday(1990, 0, 15, now))
	assert.Equal(t, 0, core.AgeFromBirthday(1990, 6, 0, now))
}
