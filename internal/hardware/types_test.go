package hardware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatsSnapshotUptime(t *testing.T) {
	var s Stats
	t0 := time.Unix(1700000000, 0)

	assert.Zero(t, s.Snapshot(t0).Uptime)

	s.start(t0)
	s.BytesRead.Add(3)
	s.Calls.Add(2)

	snap := s.Snapshot(t0.Add(90 * time.Second))
	assert.Equal(t, 90*time.Second, snap.Uptime)
	assert.Equal(t, uint64(3), snap.BytesRead)
	assert.Equal(t, uint64(2), snap.Calls)
	assert.Zero(t, snap.Matches)
}
