package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/chatrelay-server/internal/store"
)

// Inbound is one decoded frame from a connection, queued for admission.
type Inbound struct {
	Client  *Client
	Session string
	Text    string
}

// Hub owns the set of connected clients and runs every admission decision on
// its single Run goroutine. That serialization, plus the Moderation mutex,
// guarantees no two decisions interleave their reads and writes of the shared
// moderation state.
type Hub struct {
	log      *zerolog.Logger
	resolver Resolver
	mod      *Moderation
	messages store.MessageStore

	register   chan *Client
	unregister chan *Client
	inbound    chan Inbound

	clients map[*Client]struct{}
}

// NewHub constructs a hub. Run must be started before clients are registered.
func NewHub(resolver Resolver, mod *Moderation, messages store.MessageStore, logger *zerolog.Logger) *Hub {
	return &Hub{
		log:        logger,
		resolver:   resolver,
		mod:        mod,
		messages:   messages,
		register:   make(chan *Client, 8),
		unregister: make(chan *Client, 8),
		inbound:    make(chan Inbound, 64),
		clients:    make(map[*Client]struct{}),
	}
}

// RegisterClient adds a connection to the broadcast set.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient removes a connection; its Events channel is closed by the
// hub loop.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Submit queues one inbound frame for admission.
func (h *Hub) Submit(in Inbound) {
	h.inbound <- in
}

// Run processes registrations and inbound frames until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case in := <-h.inbound:
			h.drainControl()
			h.handleInbound(ctx, in)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.clients[c] = struct{}{}
	h.log.Debug().Str("client_id", c.ID).Msg("client registered")
}

func (h *Hub) removeClient(c *Client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Events)
		h.log.Debug().Str("client_id", c.ID).Msg("client unregistered")
	}
}

// drainControl applies queued lifecycle changes before an admission decision
// so a connection that completed its handshake first also sees the resulting
// broadcast.
func (h *Hub) drainControl() {
	for {
		select {
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		default:
			return
		}
	}
}

// handleInbound runs the per-message admission pipeline: resolve the session,
// route admin command text to the dispatcher, otherwise gate through
// moderation and on admission broadcast then persist.
func (h *Hub) handleInbound(ctx context.Context, in Inbound) {
	// Frames missing either field are dropped without a reply.
	if in.Session == "" || in.Text == "" {
		return
	}

	id, ok := h.resolver.Resolve(ctx, in.Session)
	if !ok {
		h.log.Debug().Str("client_id", in.Client.ID).Msg("unknown session, message dropped")
		return
	}

	if id.Admin && IsCommand(in.Text) {
		h.dispatch(ctx, in.Client, id.Name, in.Text)
		return
	}

	switch h.mod.Admit(id.Name, id.Admin, time.Now()) {
	case VerdictAdmit:
		h.broadcast(Event{From: id.Name, Text: in.Text})
		h.persist(ctx, id.Name, in.Text)
	case VerdictRateLimited:
		h.sendTo(in.Client, autoResponse(NoticeRateLimited))
	case VerdictLocked:
		h.sendTo(in.Client, autoResponse(NoticeLocked))
	case VerdictMuted:
		h.sendTo(in.Client, autoResponse(NoticeMuted))
	}
}

// broadcast delivers an event to every open connection, at most once each.
// Slow consumers are skipped, never retried or queued.
func (h *Hub) broadcast(event Event) {
	for client := range h.clients {
		select {
		case client.Events <- event:
		default:
			// Drop if slow consumer.
		}
	}
}

// sendTo delivers a sender-only notice. The client may have unregistered
// between submit and decision; in that case the notice is dropped.
func (h *Hub) sendTo(c *Client, event Event) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.Events <- event:
	default:
	}
}

// persist appends to the durable log, fire-and-forget: a failure is logged
// and never rolls back the already-delivered broadcast.
func (h *Hub) persist(ctx context.Context, from, body string) {
	if err := h.messages.AppendMessage(ctx, from, body); err != nil {
		h.log.Error().Err(err).Str("user", from).Msg("persist message failed")
	}
}
