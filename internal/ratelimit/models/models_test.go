package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCaseKey(t *testing.T) {
	assert.Equal(t, "dsar:case:abc", CaseKey("abc"))
	assert.Equal(t, "dsar:case:abc_def", CaseKey("abc:def"))
}

func TestLimitValid(t *testing.T) {
	assert.True(t, Limit{MaxRequests: 1, Window: time.Second}.Valid())
	assert.False(t, Limit{MaxRequests: 0, Window: time.Second}.Valid())
	assert.False(t, Limit{MaxRequests: 1}.Valid())
}
