package app

import (
	"sync"

	"qquiz-service/internal/domain"
)

const feedBuffer = 8

// ResultFeed fans newly recorded results out to per-quiz subscribers.
type ResultFeed struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.Result]struct{}
}

func NewResultFeed() *ResultFeed {
	return &ResultFeed{subscribers: make(map[string]map[chan domain.Result]struct{})}
}

// Subscribe returns a channel receiving results recorded for quizID.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *ResultFeed) Subscribe(quizID string) (<-chan domain.Result, func()) {
	ch := make(chan domain.Result, feedBuffer)

	f.mu.Lock()
	subs, ok := f.subscribers[quizID]
	if !ok {
		subs = make(map[chan domain.Result]struct{})
		f.subscribers[quizID] = subs
	}
	subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subscribers[quizID]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(f.subscribers, quizID)
		}
	}
	return ch, cancel
}

// Publish delivers result to every subscriber of its quiz without blocking.
func (f *ResultFeed) Publish(result domain.Result) {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[result.QuizID] {
		select {
		case ch <- result:
		default:
			// slow subscriber: drop its oldest pending result
			select {
			case <-ch:
			default:
			}
			ch <- result
		}
	}
}

// Subscribers reports how many subscribers quizID has.
func (f *ResultFeed) Subscribers(quizID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers[quizID])
}
