package ws

import "sync"

// Channels carrying contract activity. Loan-request transitions go out on
// ChannelLoans; deal transitions and the expiry sweep's notices on
// ChannelDeals.
const (
	ChannelLoans = "loans"
	ChannelDeals = "deals"
)

func knownChannel(channel string) bool {
	return channel == ChannelLoans || channel == ChannelDeals
}

// Hub fans applied-transition payloads out to subscribed clients.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: map[string]map[*Client]struct{}{}}
}

// Subscribe registers the client on one of the contract channels. Unknown
// channel names are ignored.
func (h *Hub) Subscribe(channel string, client *Client) {
	if !knownChannel(channel) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[channel]; !ok {
		h.subscribers[channel] = map[*Client]struct{}{}
	}
	h.subscribers[channel][client] = struct{}{}
	client.addChannel(channel)
}

func (h *Hub) UnsubscribeAll(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, channel := range client.listChannels() {
		if subs, ok := h.subscribers[channel]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscribers, channel)
			}
		}
	}
}

func (h *Hub) Publish(channel string, payload []byte) {
	h.mu.RLock()
	subs := make([]*Client, 0, len(h.subscribers[channel]))
	for c := range h.subscribers[channel] {
		subs = append(subs, c)
	}
	h.mu.RUnlock()

	// Delivery happens outside the hub lock; a client that disconnected in
	// the meantime drops the payload in send.
	for _, c := range subs {
		c.send(payload)
	}
}
