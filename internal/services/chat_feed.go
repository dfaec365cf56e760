package services

import (
	"sync"

	"github.com/ixnv/anon-fl-api/internal/models"
)

const feedBuffer = 16

// ChatFeed fans sent messages out to in-process subscribers, one set per
// order. Slow subscribers drop messages instead of blocking Send.
type ChatFeed struct {
	mu   sync.Mutex
	subs map[string]map[chan models.OrderChatMessage]struct{}
}

func NewChatFeed() *ChatFeed {
	return &ChatFeed{subs: make(map[string]map[chan models.OrderChatMessage]struct{})}
}

func (f *ChatFeed) Subscribe(orderID string) chan models.OrderChatMessage {
	ch := make(chan models.OrderChatMessage, feedBuffer)
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.subs[orderID]
	if !ok {
		set = make(map[chan models.OrderChatMessage]struct{})
		f.subs[orderID] = set
	}
	set[ch] = struct{}{}
	return ch
}

func (f *ChatFeed) Unsubscribe(orderID string, ch chan models.OrderChatMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.subs[orderID]
	if !ok {
		return
	}
	if _, ok := set[ch]; !ok {
		return
	}
	delete(set, ch)
	close(ch)
	if len(set) == 0 {
		delete(f.subs, orderID)
	}
}

func (f *ChatFeed) Publish(orderID string, msg models.OrderChatMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs[orderID] {
		select {
		case ch <- msg:
		default:
		}
	}
}
