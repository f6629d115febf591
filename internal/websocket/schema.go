package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer      Action = "answer"
	ActionBookmark    Action = "bookmark"
	ActionNavigate    Action = "navigate"
	ActionSubmit      Action = "submit"
	ActionPing        Action = "ping"
	ActionFullscreen  Action = "fullscreen"
	ActionVisibility  Action = "visibility"
	ActionFrame       Action = "frame"
	ActionCameraError Action = "camera_error"
)

// RequestPayload is the single client message shape. Which fields are
// meaningful depends on Action.
type RequestPayload struct {
	Action Action `json:"action"`

	// answer / bookmark / navigate
	Index  *int `json:"index,omitempty"`
	Option *int `json:"option,omitempty"`

	// fullscreen / visibility
	Active *bool `json:"active,omitempty"`

	// frame: base64 RGBA pixel data
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Pixels string `json:"pixels,omitempty"`

	// camera_error
	Reason string `json:"reason,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState             Event = "state"
	EventQuestions         Event = "questions"
	EventFinalized         Event = "finalized"
	EventError             Event = "error"
	EventPong              Event = "pong"
	EventCameraRequest     Event = "camera_request"
	EventCameraRelease     Event = "camera_release"
	EventFullscreenRequest Event = "fullscreen_request"
	EventFullscreenExit    Event = "fullscreen_exit"
	EventSuppression       Event = "suppression"
)

// StateResponse pushes the attempt snapshot. Sent once per second and
// after every accepted client action.
type StateResponse struct {
	Event     Event       `json:"event"`
	State     interface{} `json:"state"`
	Suspended bool        `json:"suspended"`
}

// QuestionsResponse delivers the redacted question set once on connect.
type QuestionsResponse struct {
	Event     Event       `json:"event"`
	Questions interface{} `json:"questions"`
}

// FinalizedResponse is the last message before the server closes the
// stream.
type FinalizedResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// CameraRequestEvent asks the client to start capture at the given
// resolution and begin streaming frames.
type CameraRequestEvent struct {
	Event  Event `json:"event"`
	Width  int   `json:"width"`
	Height int   `json:"height"`
}

// ControlEvent covers the bodyless control pushes: camera_release,
// fullscreen_request, fullscreen_exit.
type ControlEvent struct {
	Event Event `json:"event"`
}

// SuppressionEvent toggles context-menu/clipboard suppression on the
// client.
type SuppressionEvent struct {
	Event   Event `json:"event"`
	Enabled bool  `json:"enabled"`
}
