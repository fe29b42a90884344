package session

import (
	"sync"

	"github.com/radarhq/compass"
)

// userStream multicasts the current identity to any number of
// subscribers. It replays the latest published value to new subscribers,
// so a guard that attaches after initialization still sees the restored
// user immediately.
type userStream struct {
	mu      sync.Mutex
	latest  *compass.User
	primed  bool
	subs    map[int]chan *compass.User
	nextSub int
}

func newUserStream() *userStream {
	return &userStream{subs: map[int]chan *compass.User{}}
}

// Subscribe returns a channel of identity updates plus a cancel func.
// The latest value, if any has been published, is delivered first. The
// channel is buffered; a subscriber that stops draining only loses
// intermediate values, never the most recent one.
func (s *userStream) Subscribe() (<-chan *compass.User, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++

	ch := make(chan *compass.User, 8)
	if s.primed {
		ch <- s.latest
	}
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (s *userStream) publish(u *compass.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = u
	s.primed = true

	for _, ch := range s.subs {
		select {
		case ch <- u:
		default:
			// Slow subscriber: drop its oldest value so the
			// latest always lands.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- u:
			default:
			}
		}
	}
}
