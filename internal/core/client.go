package core

// eventBufferSize bounds the per-client outbound queue. Broadcast drops
// events for clients whose queue is full.
const eventBufferSize = 32

// Client is a connected peer as seen by the core layer.
type Client struct {
	ID     string
	Events chan Event
}

// NewClient constructs a client with an initialized event channel.
func NewClient(id string) *Client {
	return &Client{
		ID:     id,
		Events: make(chan Event, eventBufferSize),
	}
}
