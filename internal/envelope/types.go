package envelope

// ErrorType is the machine-readable error identifier carried in a failure
// envelope. Server types outside the table below pass through unchanged.
type ErrorType string

// Recognized error types.
const (
	// TypeAuthenticationInvalid is the only type with a local side effect:
	// the session credential is cleared.
	TypeAuthenticationInvalid ErrorType = "AUTHENTICATION_INVALID"

	// TypeConnection classifies calls that got no response. Never sent by
	// the server.
	TypeConnection ErrorType = "CONNECTION"

	// TypeUnknown is synthesized when a response body is not a valid
	// envelope.
	TypeUnknown ErrorType = "UNKNOWN"

	TypeNameNotUnique   ErrorType = "NAME_NOT_UNIQUE"
	TypeMealUUIDInvalid ErrorType = "MEAL_UUID_INVALID"
)

// Action is what the client does locally when it sees an error type.
type Action int

const (
	// ActionSurfaceOnly hands the type to the notification boundary and
	// does nothing else.
	ActionSurfaceOnly Action = iota

	// ActionInvalidateSession clears the session credential, then surfaces
	// the type like any other.
	ActionInvalidateSession
)

func (a Action) String() string {
	switch a {
	case ActionInvalidateSession:
		return "invalidate-session"
	default:
		return "surface-only"
	}
}

// actions maps error types to local actions. Types not listed are
// surface-only.
var actions = map[ErrorType]Action{
	TypeAuthenticationInvalid: ActionInvalidateSession,
	TypeConnection:            ActionSurfaceOnly,
	TypeUnknown:               ActionSurfaceOnly,
	TypeNameNotUnique:         ActionSurfaceOnly,
	TypeMealUUIDInvalid:       ActionSurfaceOnly,
}

// ActionFor returns the local action for t.
func ActionFor(t ErrorType) Action {
	return actions[t]
}

// Known reports whether t is one of the recognized error types.
func Known(t ErrorType) bool {
	_, ok := actions[t]
	return ok
}

// KnownTypes returns every recognized error type, in no particular order.
func KnownTypes() []ErrorType {
	types := make([]ErrorType, 0, len(actions))
	for t := range actions {
		types = append(types, t)
	}

	return types
}
