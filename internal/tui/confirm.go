package tui

import "context"

type confirmRequest struct {
	prompt string
	answer chan bool
}

// confirmer turns ui confirmation prompts into messages for the program
// and blocks until the user answers with y or n.
type confirmer struct {
	requests chan confirmRequest
}

func newConfirmer() *confirmer {
	return &confirmer{requests: make(chan confirmRequest)}
}

func (c *confirmer) Confirm(ctx context.Context, prompt string) bool {
	req := confirmRequest{prompt: prompt, answer: make(chan bool, 1)}
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return false
	}
	select {
	case ok := <-req.answer:
		return ok
	case <-ctx.Done():
		return false
	}
}
