package core

// Well-known sender names. SenderAuto marks sender-only policy notices,
// SenderServer marks persisted moderation announcements.
const (
	SenderAuto   = "Auto Response"
	SenderServer = "Server"
	SenderClear  = "CLEAR"
	SenderPanic  = "PANIC"
)

// Policy rejection notices sent back to the offending sender only.
const (
	NoticeRateLimited = "You are sending messages too quickly. Please wait."
	NoticeLocked      = "Chat is locked. Only admins can send messages."
	NoticeMuted       = "You are muted and cannot send messages."
)

// Event is delivered to clients. From carries the sender name or one of the
// sentinel values, Text the message body.
type Event struct {
	From string
	Text string
}

// ClearEvent tells clients to wipe their local history.
func ClearEvent() Event {
	return Event{From: SenderClear, Text: SenderClear}
}

// PanicEvent tells clients the panic signal was raised.
func PanicEvent() Event {
	return Event{From: SenderPanic, Text: SenderPanic}
}

func autoResponse(text string) Event {
	return Event{From: SenderAuto, Text: text}
}
