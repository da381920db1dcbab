package server

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/vango-dev/todoui/pkg/confirm"
)

// remoteConfirmer asks the client to confirm and resolves when the answer
// comes back. It is used only on the session loop.
type remoteConfirmer struct {
	send    func(ServerMessage)
	pending map[string]func(bool)
}

func newRemoteConfirmer(send func(ServerMessage)) *remoteConfirmer {
	return &remoteConfirmer{
		send:    send,
		pending: make(map[string]func(bool)),
	}
}

// Request implements confirm.Confirmer.
func (c *remoteConfirmer) Request(p confirm.Prompt, resolve func(bool)) {
	id := uuid.NewString()
	c.pending[id] = resolve
	c.send(ServerMessage{
		Type:    MsgConfirm,
		ID:      id,
		Title:   p.Title,
		Message: p.Message,
	})
}

func (c *remoteConfirmer) answer(id string, accepted bool) error {
	resolve, ok := c.pending[id]
	if !ok {
		return fmt.Errorf("%w: unknown confirmation %q", ErrBadMessage, id)
	}
	delete(c.pending, id)
	resolve(accepted)
	return nil
}
