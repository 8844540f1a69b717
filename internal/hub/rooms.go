package hub

import "sync"

const roomShardCount = 64

// Rooms tracks which live sessions are currently viewing each conversation.
// Membership is explicit (conversation:join / conversation:leave) and scopes
// the ephemeral typing notices: they relay only inside the room.
type Rooms struct {
	shards [roomShardCount]*roomBucket
}

type roomBucket struct {
	sync.RWMutex
	// conversation id -> transport id -> session
	rooms map[string]map[string]*Client
}

func NewRooms() *Rooms {
	r := &Rooms{}
	for i := range r.shards {
		r.shards[i] = &roomBucket{rooms: make(map[string]map[string]*Client)}
	}
	return r
}

func (r *Rooms) bucketFor(conversationID string) *roomBucket {
	return r.shards[hashKey(conversationID)%roomShardCount]
}

func (r *Rooms) Join(conversationID string, c *Client) {
	b := r.bucketFor(conversationID)
	b.Lock()
	room, ok := b.rooms[conversationID]
	if !ok {
		room = make(map[string]*Client)
		b.rooms[conversationID] = room
	}
	room[c.transportID] = c
	b.Unlock()

	c.trackRoom(conversationID)
}

func (r *Rooms) Leave(conversationID string, c *Client) {
	b := r.bucketFor(conversationID)
	b.Lock()
	if room, ok := b.rooms[conversationID]; ok {
		delete(room, c.transportID)
		if len(room) == 0 {
			delete(b.rooms, conversationID)
		}
	}
	b.Unlock()

	c.untrackRoom(conversationID)
}

// LeaveAll removes the session from every room it joined. Called on
// disconnect so empty rooms never linger.
func (r *Rooms) LeaveAll(c *Client) {
	for _, conversationID := range c.joinedRooms() {
		r.Leave(conversationID, c)
	}
}

// Members collects the sessions currently in the room while holding the
// read lock, so pushes happen without it.
func (r *Rooms) Members(conversationID string) []*Client {
	b := r.bucketFor(conversationID)
	b.RLock()
	defer b.RUnlock()

	room, ok := b.rooms[conversationID]
	if !ok {
		return nil
	}
	members := make([]*Client, 0, len(room))
	for _, c := range room {
		members = append(members, c)
	}
	return members
}

// Count returns the number of non-empty rooms.
func (r *Rooms) Count() int {
	n := 0
	for _, b := range r.shards {
		b.RLock()
		n += len(b.rooms)
		b.RUnlock()
	}
	return n
}
