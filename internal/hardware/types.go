package hardware

import (
	"sync/atomic"
	"time"
)

// Stats 读取统计
type Stats struct {
	BytesRead    atomic.Uint64
	ChunksRead   atomic.Uint64
	EmptyReads   atomic.Uint64
	Matches      atomic.Uint64 // 地址模式命中
	Calls        atomic.Uint64 // 呼叫模式中校验通过的字节
	ParityErrors atomic.Uint64
	startedAt    atomic.Int64
}

// StatsSnapshot 统计快照
type StatsSnapshot struct {
	BytesRead    uint64
	ChunksRead   uint64
	EmptyReads   uint64
	Matches      uint64
	Calls        uint64
	ParityErrors uint64
	Uptime       time.Duration
}

func (s *Stats) start(now time.Time) {
	s.startedAt.Store(now.UnixNano())
}

// Snapshot 获取统计快照，Uptime按传入时间计算
func (s *Stats) Snapshot(now time.Time) StatsSnapshot {
	snap := StatsSnapshot{
		BytesRead:    s.BytesRead.Load(),
		ChunksRead:   s.ChunksRead.Load(),
		EmptyReads:   s.EmptyReads.Load(),
		Matches:      s.Matches.Load(),
		Calls:        s.Calls.Load(),
		ParityErrors: s.ParityErrors.Load(),
	}
	if started := s.startedAt.Load(); started != 0 {
		snap.Uptime = now.Sub(time.Unix(0, started))
	}
	return snap
}
