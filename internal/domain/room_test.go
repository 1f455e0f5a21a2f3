package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, RoomCode("AB23CD"), NormalizeCode("  ab23cd\n"))
	assert.Equal(t, RoomCode(""), NormalizeCode("   "))
}

func TestRoomCodeValid(t *testing.T) {
	assert.True(t, RoomCode("AB23CD").Valid())
	assert.False(t, RoomCode("AB23C").Valid())
	assert.False(t, RoomCode("AB23C0").Valid(), "0 is not in the alphabet")
	assert.False(t, RoomCode("ab23cd").Valid())
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleHost, ParseRole("host"))
	assert.Equal(t, RoleGuest, ParseRole("HOST"))
	assert.Equal(t, RoleGuest, ParseRole(""))
	assert.Equal(t, RoleGuest, ParseRole("admin"))
}

func TestNormalizeDisplayName(t *testing.T) {
	assert.Nil(t, NormalizeDisplayName("   "))
	name := NormalizeDisplayName("  Sam ")
	if assert.NotNil(t, name) {
		assert.Equal(t, "Sam", *name)
	}
}
