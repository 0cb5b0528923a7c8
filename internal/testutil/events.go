package testutil

import (
	"context"
	"sync"
)

type Event struct {
	Topic string
	Key   string
	Body  map[string]any
}

// Publisher records events in memory instead of sending them to a broker.
type Publisher struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (p *Publisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	body, _ := event.(map[string]any)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, Event{Topic: topic, Key: key, Body: body})
	return p.Err
}

func (p *Publisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

// Types returns the "type" field of every recorded event on topic, in order.
func (p *Publisher) Types(topic string) []string {
	var out []string
	for _, e := range p.Events() {
		if e.Topic == topic {
			t, _ := e.Body["type"].(string)
			out = append(out, t)
		}
	}
	return out
}
