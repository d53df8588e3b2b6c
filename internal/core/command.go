package core

import (
	"context"
	"strings"
)

const commandPrefix = "/"

const helpText = "Available commands: /lock /unlock /mute <user> /unmute <user> /panic /clear /help"

// IsCommand reports whether text should be routed to the command dispatcher.
// Only admin-issued text is ever dispatched; the same text from a regular
// user falls through to normal message handling.
func IsCommand(text string) bool {
	return strings.HasPrefix(text, commandPrefix)
}

// splitCommand splits a command line into command and argument on the first
// whitespace. The argument may be empty.
func splitCommand(line string) (string, string) {
	cmd, arg, _ := strings.Cut(line, " ")
	return cmd, strings.TrimSpace(arg)
}

// dispatch executes an admin command. Unrecognized commands are silently
// ignored; /mute and /unmute without an argument are no-ops.
func (h *Hub) dispatch(ctx context.Context, c *Client, issuer, line string) {
	cmd, arg := splitCommand(line)

	switch cmd {
	case "/lock", "/unlock":
		if h.mod.ToggleLock() {
			h.announce(ctx, "Chat locked by an admin")
		} else {
			h.announce(ctx, "Chat unlocked by an admin")
		}

	case "/mute":
		if arg == "" {
			return
		}
		h.mod.Mute(arg)
		h.announce(ctx, arg+" muted by "+issuer)

	case "/unmute":
		if arg == "" {
			return
		}
		h.mod.Unmute(arg)
		h.announce(ctx, arg+" unmuted by "+issuer)

	case "/panic":
		h.broadcast(PanicEvent())
		h.persist(ctx, SenderServer, "Panic triggered by "+issuer)

	case "/clear":
		h.broadcast(ClearEvent())
		if err := h.messages.HideAllMessages(ctx); err != nil {
			h.log.Error().Err(err).Msg("hide messages failed")
		}
		h.announce(ctx, "Chat history cleared by "+issuer)

	case "/help":
		h.sendTo(c, autoResponse(helpText))

	default:
		h.log.Debug().Str("command", cmd).Str("issuer", issuer).Msg("unknown command ignored")
	}
}

// announce broadcasts a moderation notice to everyone and persists it.
func (h *Hub) announce(ctx context.Context, text string) {
	h.broadcast(Event{From: SenderServer, Text: text})
	h.persist(ctx, SenderServer, text)
}
