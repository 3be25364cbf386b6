// Package retry runs actions until they succeed or a Strategy gives up.
package retry

// Action is a unit of work that may be attempted more than once.
type Action func() error

// Retrier runs actions with a fixed set of strategies.
type Retrier interface {
	Retry(action Action) (uint, error)
}

type strategyRetrier []Strategy

// NewRetrier binds strategies to a Retrier. With no strategies the action is
// attempted until it succeeds.
func NewRetrier(strategies ...Strategy) Retrier {
	return strategyRetrier(strategies)
}

func (s strategyRetrier) Retry(action Action) (uint, error) {
	return Retry(action, s...)
}

// Retry attempts action until it returns nil or a strategy declines another
// attempt. It returns the number of attempts made and the last error.
//
// Strategies are consulted in order and the first refusal stops the loop, so
// strategies that sleep belong at the end.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	var attempts uint
	for {
		attempts++

		err := action()
		if err == nil || !allow(strategies, attempts, err) {
			return attempts, err
		}
	}
}

func allow(strategies []Strategy, attempts uint, err error) bool {
	for _, s := range strategies {
		if !s(attempts, err) {
			return false
		}
	}
	return true
}
