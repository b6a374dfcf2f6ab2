package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/simaogato/tusec-backend/internal/domain"
)

// Update carries one refresh. Exactly one of Tick and Users is set.
type Update struct {
	Tick  *domain.TickEvent
	Users []domain.User
}

// Subscription receives updates until Close is called
type Subscription struct {
	C <-chan Update

	ch   chan Update
	hub  *Broadcaster
	once sync.Once
}

// Close detaches the subscription and closes C
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}

// Broadcaster fans refreshes out to in-process subscribers.
// A subscriber whose buffer is full misses the update instead of stalling the tick.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	last   *domain.TickEvent
	users  []domain.User
	logger *zap.Logger
}

var _ domain.Presenter = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster instance
func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		subs:   make(map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscribe registers a new subscriber with the given buffer size.
// The latest known prices and users are queued first so a late subscriber starts with a full picture.
func (b *Broadcaster) Subscribe(buffer int) *Subscription {
	if buffer < 2 {
		buffer = 2
	}
	ch := make(chan Update, buffer)
	s := &Subscription{C: ch, ch: ch, hub: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.last != nil {
		ev := *b.last
		ch <- Update{Tick: &ev}
	}
	if b.users != nil {
		ch <- Update{Users: b.users}
	}
	b.subs[s] = struct{}{}
	return s
}

// Subscribers returns the number of attached subscribers
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// RefreshPrices sends the tick to every subscriber
func (b *Broadcaster) RefreshPrices(_ context.Context, event domain.TickEvent) {
	b.mu.Lock()
	b.last = &event
	b.mu.Unlock()

	ev := event
	b.publish(Update{Tick: &ev})
}

// RefreshUsers sends the user table to every subscriber
func (b *Broadcaster) RefreshUsers(_ context.Context, users []domain.User) {
	b.mu.Lock()
	b.users = users
	b.mu.Unlock()

	b.publish(Update{Users: users})
}

func (b *Broadcaster) publish(u Update) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for s := range b.subs {
		select {
		case s.ch <- u:
		default:
			b.logger.Warn("Dropping update for slow subscriber", zap.Bool("tick", u.Tick != nil))
		}
	}
}

func (b *Broadcaster) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.ch)
	}
}
