package schema

///////////////////////////////////////////////////////////////////////////////
// SSE EVENT NAMES

const (
	EventSession = "session" // Establishes or confirms the session identifier
	EventToken   = "token"   // Incremental fragment of the assistant reply
	EventDone    = "done"    // Final complete response
	EventError   = "error"   // Error during processing
	EventMessage = "message" // Default name for frames without an event line
)

///////////////////////////////////////////////////////////////////////////////
// SSE EVENT PAYLOADS

// StreamSession is the payload of a session event
type StreamSession struct {
	SessionID string `json:"session_id"`
}

// StreamToken is the payload of a token event
type StreamToken struct {
	Delta string `json:"delta"`
}

// StreamDone is the payload of a done event
type StreamDone struct {
	Response string `json:"response"`
}

// StreamError is the payload of an error event
type StreamError struct {
	Detail string `json:"detail"`
}
