package reveal

import "sync"

// Policy is cross-draw state that lives for the whole process.
type Policy struct {
	mu                   sync.Mutex
	firstClawDrawPending bool
}

// NewPolicy returns a fresh session: the first claw draw will not fumble.
func NewPolicy() *Policy {
	return &Policy{firstClawDrawPending: true}
}

func (p *Policy) FirstClawDrawPending() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.firstClawDrawPending
}

// TakeFirstClawGuarantee reports whether the guarantee was still pending and
// clears it.
func (p *Policy) TakeFirstClawGuarantee() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	pending := p.firstClawDrawPending
	p.firstClawDrawPending = false
	return pending
}

// Reset starts a new session.
func (p *Policy) Reset() {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.firstClawDrawPending = true
	p.mu.Unlock()
}
