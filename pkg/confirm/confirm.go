// Package confirm asks the user a yes/no question before a destructive
// action.
//
// A Confirmer delivers its answer through a callback, so the same gate code
// works with a synchronous prompt (Blocking) and with an in-page dialog that
// answers on a later click (Modal).
package confirm

// Prompt is the question put to the user.
type Prompt struct {
	Title   string
	Message string
}

// Confirmer requests a decision. resolve is called at most once, with true
// for accept. It may be called before Request returns.
type Confirmer interface {
	Request(p Prompt, resolve func(accepted bool))
}

// Blocking adapts a synchronous prompt function to Confirmer.
type Blocking func(Prompt) bool

// Request implements Confirmer. The decision is delivered before Request
// returns.
func (b Blocking) Request(p Prompt, resolve func(bool)) {
	resolve(b(p))
}

// Always returns a Confirmer that gives the same answer every time.
func Always(accept bool) Blocking {
	return func(Prompt) bool { return accept }
}
