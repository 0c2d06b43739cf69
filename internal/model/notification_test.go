package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDueToExpire(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, (&Notification{}).DueToExpire(now), "nil ExpiresAt never expires")
	assert.False(t, (&Notification{ExpiresAt: &future}).DueToExpire(now))
	assert.True(t, (&Notification{ExpiresAt: &past}).DueToExpire(now))
	assert.False(t, (&Notification{ExpiresAt: &past, Expired: true}).DueToExpire(now),
		"already-flagged entries are not reported again")
}
