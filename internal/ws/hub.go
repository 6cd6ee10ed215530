package ws

import (
	"sync"

	"github.com/mijwad7/elevateHub/internal/logger"
)

// Hub is the group membership registry: named broadcast groups with
// join/leave/fan-out. Groups exist only while they have members; joining an
// unknown name creates it, leaving the last member removes it.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Client]struct{}
	// reverse index so a dying connection can be pulled out of every group
	membership map[*Client]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		groups:     make(map[string]map[*Client]struct{}),
		membership: make(map[*Client]map[string]struct{}),
	}
}

func (h *Hub) Join(group string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		members = make(map[*Client]struct{})
		h.groups[group] = members
	}
	members[c] = struct{}{}

	joined, ok := h.membership[c]
	if !ok {
		joined = make(map[string]struct{})
		h.membership[c] = joined
	}
	joined[group] = struct{}{}
}

func (h *Hub) Leave(group string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(group, c)
}

// RemoveClient detaches the connection from every group it joined.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for group := range h.membership[c] {
		h.leaveLocked(group, c)
	}
}

func (h *Hub) leaveLocked(group string, c *Client) {
	if members, ok := h.groups[group]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	if joined, ok := h.membership[c]; ok {
		delete(joined, group)
		if len(joined) == 0 {
			delete(h.membership, c)
		}
	}
}

// GroupSize reports the current member count; absent groups are size zero.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// Broadcast fans a frame out to every group member except the excluded one.
// Members whose send queue is full are dropped: delivery to one slow consumer
// must never stall the room.
func (h *Hub) Broadcast(group string, payload []byte, except *Client) {
	h.mu.RLock()
	var slow []*Client
	for c := range h.groups[group] {
		if c == except {
			continue
		}
		if c.Enqueue(payload) {
			broadcastFrames.WithLabelValues(c.channel).Inc()
		} else {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		slowClientDrops.Inc()
		logger.Warn("dropping slow ws client", "user_id", c.UserID, "group", group)
		h.RemoveClient(c)
		c.Close(CloseInternalError, "send queue overflow")
	}
}

// Push implements the pusher surface used by services: broadcast without an
// exclusion.
func (h *Hub) Push(group string, payload []byte) {
	h.Broadcast(group, payload, nil)
}

// CloseGroup disbands a group, closing every member connection with the given
// code. The group name is free for reuse immediately.
func (h *Hub) CloseGroup(group string, code int, reason string) {
	h.mu.Lock()
	members := h.groups[group]
	delete(h.groups, group)
	for c := range members {
		if joined, ok := h.membership[c]; ok {
			delete(joined, group)
			if len(joined) == 0 {
				delete(h.membership, c)
			}
		}
	}
	h.mu.Unlock()

	for c := range members {
		c.Close(code, reason)
	}
}
