package session

// state is one of the two session states. The set is closed: active and
// anonymous are the only implementations.
type state interface {
	credential() string
}

// active holds a non-empty credential.
type active struct {
	token string
}

func (s active) credential() string { return s.token }

// anonymous holds nothing. Validating it never touches the network.
type anonymous struct{}

func (anonymous) credential() string { return "" }

// stateFor maps a credential value to its state. Total over all strings.
func stateFor(token string) state {
	if token == "" {
		return anonymous{}
	}

	return active{token: token}
}
