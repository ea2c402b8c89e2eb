package reveal

import "sync/atomic"

// Token is a cooperative cancellation flag shared between a driver and the
// machine it runs. A nil *Token is never cancelled.
type Token struct {
	cancelled atomic.Bool
}

func NewToken() *Token { return &Token{} }

// Cancel flags the token. It reports whether this call made the change.
func (t *Token) Cancel() bool {
	if t == nil {
		return false
	}
	return t.cancelled.CompareAndSwap(false, true)
}

func (t *Token) Cancelled() bool {
	return t != nil && t.cancelled.Load()
}
