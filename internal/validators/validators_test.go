package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ana@clinic.test", NormalizeEmail("  Ana@Clinic.TEST "))
}

func TestIsDate(t *testing.T) {
	assert.True(t, IsDate("2026-06-01"))
	assert.False(t, IsDate("2026-6-1"))
	assert.False(t, IsDate("2026-02-30"))
	assert.False(t, IsDate("01/06/2026"))
}

func TestIsClock(t *testing.T) {
	assert.True(t, IsClock("09:00"))
	assert.True(t, IsClock("23:59"))
	assert.False(t, IsClock("9:00"))
	assert.False(t, IsClock("24:00"))
}

func TestParseBirthday(t *testing.T) {
	got, ok := ParseBirthday("")
	assert.True(t, ok)
	assert.Nil(t, got)

	got, ok = ParseBirthday("1990-04-12")
	assert.True(t, ok)
	if assert.NotNil(t, got) {
		assert.Equal(t, 1990, got.Year())
	}

	_, ok = ParseBirthday("12/04/1990")
	assert.False(t, ok)
}
