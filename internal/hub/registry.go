package hub

import (
	"hash/fnv"
	"sync"
)

const registryShardCount = 32

// Registry maps a user id to its single live session. One session per user:
// register is last-writer-wins and a superseded session simply stops
// receiving targeted pushes while its transport winds down on its own.
// All operations are safe under unbounded concurrent invocation.
type Registry struct {
	shards [registryShardCount]*registryShard
}

type registryShard struct {
	sync.RWMutex
	sessions map[string]*Client
}

func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = &registryShard{sessions: make(map[string]*Client)}
	}
	return r
}

func hashKey(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32()
}

func (r *Registry) shardFor(userID string) *registryShard {
	return r.shards[hashKey(userID)%registryShardCount]
}

// Register installs or replaces the mapping for the client's user. It
// returns the superseded session, or nil if the user had none.
func (r *Registry) Register(c *Client) *Client {
	sh := r.shardFor(c.userID)
	sh.Lock()
	defer sh.Unlock()

	prev := sh.sessions[c.userID]
	if prev == c {
		return nil
	}
	sh.sessions[c.userID] = c
	return prev
}

// Unregister removes the mapping only while it still points at the given
// transport, so a stale disconnect can never evict a fresh reconnect.
// Returns true when the mapping was removed.
func (r *Registry) Unregister(userID, transportID string) bool {
	sh := r.shardFor(userID)
	sh.Lock()
	defer sh.Unlock()

	current, ok := sh.sessions[userID]
	if !ok || current.transportID != transportID {
		return false
	}
	delete(sh.sessions, userID)
	return true
}

// Lookup returns the user's live session, if any.
func (r *Registry) Lookup(userID string) (*Client, bool) {
	sh := r.shardFor(userID)
	sh.RLock()
	defer sh.RUnlock()

	c, ok := sh.sessions[userID]
	return c, ok
}

// Online reports whether the user has a live session.
func (r *Registry) Online(userID string) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// Snapshot returns all live sessions at some instant.
func (r *Registry) Snapshot() []*Client {
	var out []*Client
	for _, sh := range r.shards {
		sh.RLock()
		for _, c := range sh.sessions {
			out = append(out, c)
		}
		sh.RUnlock()
	}
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	n := 0
	for _, sh := range r.shards {
		sh.RLock()
		n += len(sh.sessions)
		sh.RUnlock()
	}
	return n
}
