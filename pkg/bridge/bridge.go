// Package bridge validates and dispatches cross-context requests against
// the enhancement session: the settings popup (or any other authorized
// client) toggles the overlay and queries its state through here. The
// sender check is a local authorization guard between our own contexts,
// not a network security boundary.
package bridge

import (
	"github.com/fieldnote/obsmap/pkg/logging"
)

// Protocol actions.
const (
	// ActionToggle requests the overlay be enabled or disabled.
	ActionToggle = "toggleFullMapHeight"

	// ActionGetState requests the mirrored enabled flag.
	ActionGetState = "getState"
)

// Error strings surfaced to callers.
const (
	errUnknownAction = "Unknown action"
	errInvalidSender = "Invalid sender"
)

// Request is one cross-context message.
type Request struct {
	Action  string `json:"action"`
	Enabled bool   `json:"enabled"`
}

// Response is the reply to a Request. Toggle replies carry Success (and
// Error on failure); getState replies carry FullMapHeight.
type Response struct {
	Success       *bool  `json:"success,omitempty"`
	Error         string `json:"error,omitempty"`
	FullMapHeight *bool  `json:"fullMapHeight,omitempty"`
}

func successResponse() Response {
	ok := true
	return Response{Success: &ok}
}

func errorResponse(message string) Response {
	ok := false
	return Response{Success: &ok, Error: message}
}

func stateResponse(enabled bool) Response {
	return Response{FullMapHeight: &enabled}
}

// Engine is the session surface the bridge dispatches into.
type Engine interface {
	// Toggle enables or disables the overlay. A missing anchor is success
	// ("nothing to toggle yet"); only genuine failures return an error.
	Toggle(enabled bool) error

	// Enabled reports the mirrored preference, regardless of whether
	// styles are currently applied.
	Enabled() bool
}

// Bridge dispatches validated requests to the engine.
type Bridge struct {
	identity string
	engine   Engine
	logger   *logging.Logger
}

// New creates a bridge that only accepts requests from the given sender
// identity.
func New(identity string, engine Engine, logger *logging.Logger) *Bridge {
	return &Bridge{
		identity: identity,
		engine:   engine,
		logger:   logger,
	}
}

// Identity returns the sender identity this bridge accepts.
func (b *Bridge) Identity() string {
	return b.identity
}

// Handle validates the sender and dispatches one request. It never panics
// and always produces a well-formed response; a rejected sender causes no
// state change.
func (b *Bridge) Handle(sender string, req Request) Response {
	if sender != b.identity {
		b.logger.Warnf("rejected request from sender %q", sender)
		return errorResponse(errInvalidSender)
	}

	switch req.Action {
	case ActionToggle:
		if err := b.engine.Toggle(req.Enabled); err != nil {
			b.logger.Errorf("toggle(%v) failed: %v", req.Enabled, err)
			return errorResponse(err.Error())
		}
		return successResponse()

	case ActionGetState:
		return stateResponse(b.engine.Enabled())

	default:
		b.logger.Debugf("unknown action %q", req.Action)
		return errorResponse(errUnknownAction)
	}
}
