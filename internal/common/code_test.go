package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSyncCode(t *testing.T) {
	assert.True(t, ValidSyncCode("abc-123"))
	assert.True(t, ValidSyncCode("x"))
	assert.False(t, ValidSyncCode(""))
	assert.False(t, ValidSyncCode("UPPER"))
	assert.False(t, ValidSyncCode("a_b"))
	assert.False(t, ValidSyncCode("has space"))
}
