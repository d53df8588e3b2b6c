package proto

// Inbound is the envelope for frames coming from the client. Each frame is a
// single JSON object; frames missing either field are dropped.
type Inbound struct {
	Session string `json:"session"`
	Text    string `json:"text"`
}

// ChatEvent is the uniform outbound shape for chat messages, auto responses
// and control signals. Sentinel values of UsrFrom ("CLEAR", "PANIC") signal
// client-side special handling instead of display text.
type ChatEvent struct {
	UsrFrom string `json:"usr_from"`
	Message string `json:"message"`
}
