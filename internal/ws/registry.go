package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// writeTimeout bounds each individual send during a broadcast so one stalled
// connection cannot hold up delivery to the others indefinitely.
const writeTimeout = 10 * time.Second

// Registry tracks which open connections are interested in which topic and
// delivers payloads to all interested connections, pruning any connection
// whose send fails.
//
// A topic is a chat stream ID, or a singleton name such as "logs". The topic
// key is removed as soon as its connection set becomes empty, so the map never
// accumulates dangling empty sets.
//
// All mutations of the topic map are serialized by one mutex. The expensive
// part of a broadcast (the actual socket writes) happens outside the lock, so
// subscribe and unsubscribe from other connections never wait on network I/O.
type Registry struct {
	mu     sync.Mutex
	topics map[string]map[Conn]struct{}
}

// NewRegistry creates an empty registry. One instance is created at server
// startup and torn down at shutdown via CloseAll.
func NewRegistry() *Registry {
	return &Registry{
		topics: make(map[string]map[Conn]struct{}),
	}
}

// Subscribe adds conn to the topic's connection set, creating the set if the
// topic is new. Subscribing the same connection twice is a no-op.
func (r *Registry) Subscribe(topic string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.topics[topic]
	if !ok {
		set = make(map[Conn]struct{})
		r.topics[topic] = set
	}
	set[conn] = struct{}{}
}

// Unsubscribe removes conn from the topic's set. It is a no-op if the topic or
// the connection is absent. When the set empties, the topic entry is deleted.
func (r *Registry) Unsubscribe(topic string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.topics[topic]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(r.topics, topic)
	}
}

// Broadcast delivers payload to every connection subscribed to topic.
// Delivery is best-effort and at-most-once per connection: a connection whose
// send fails is pruned from the topic, and the failure never aborts delivery
// to the remaining connections or propagates to the caller.
func (r *Registry) Broadcast(ctx context.Context, topic string, payload any) {
	r.mu.Lock()
	set, ok := r.topics[topic]
	if !ok {
		r.mu.Unlock()
		return
	}
	snapshot := make([]Conn, 0, len(set))
	for conn := range set {
		snapshot = append(snapshot, conn)
	}
	r.mu.Unlock()

	var dead []Conn
	for _, conn := range snapshot {
		sendCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := conn.WriteJSON(sendCtx, payload)
		cancel()
		if err != nil {
			slog.Debug("Broadcast send failed, pruning connection", "topic", topic, "error", err)
			dead = append(dead, conn)
		}
	}

	if len(dead) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok = r.topics[topic]
	if !ok {
		return
	}
	for _, conn := range dead {
		delete(set, conn)
	}
	if len(set) == 0 {
		delete(r.topics, topic)
	}
}

// CloseAll clears the registry and attempts a graceful close frame on every
// connection that was registered. Individual close errors are swallowed; this
// runs during server shutdown where there is nothing left to do about them.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	seen := make(map[Conn]struct{})
	for _, set := range r.topics {
		for conn := range set {
			seen[conn] = struct{}{}
		}
	}
	r.topics = make(map[string]map[Conn]struct{})
	r.mu.Unlock()

	for conn := range seen {
		if err := conn.Close(websocket.StatusGoingAway, "server shutting down"); err != nil {
			slog.Debug("Close during shutdown failed", "error", err)
		}
	}
	slog.Info("All WebSocket connections closed", "count", len(seen))
}

// Topics returns the topics that currently have at least one subscriber.
func (r *Registry) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.topics))
	for topic := range r.topics {
		names = append(names, topic)
	}
	return names
}

// Len reports the number of connections subscribed to topic.
func (r *Registry) Len(topic string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.topics[topic])
}
