package relay

import "time"

// JoinLimiter bounds how often a single connection may attempt a join.
// Confined to the hub goroutine like the registry.
type JoinLimiter struct {
	history  map[Conn][]time.Time
	limit    int
	interval time.Duration
	now      func() time.Time
}

func NewJoinLimiter(limit int, interval time.Duration) *JoinLimiter {
	return &JoinLimiter{
		history:  make(map[Conn][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

func (l *JoinLimiter) Allow(c Conn) bool {
	now := l.now()
	windowStart := now.Add(-l.interval)

	attempts := l.history[c]
	fresh := attempts[:0]
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= l.limit {
		l.history[c] = fresh
		return false
	}

	l.history[c] = append(fresh, now)
	return true
}

// Forget drops the history for a closed connection.
func (l *JoinLimiter) Forget(c Conn) {
	delete(l.history, c)
}
