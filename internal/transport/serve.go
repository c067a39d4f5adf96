package transport

import (
	"github.com/artn/hgfsd/internal/dispatch"
	"github.com/artn/hgfsd/internal/session"
)

// Serve drains t until it returns ErrClosed, dispatching each packet
// against the session registered for its ref (creating one on first use)
// and writing the reply back through t. It runs synchronously in the
// caller's goroutine; callers that want concurrency run multiple Serve
// loops over the same Transport, relying on Session's own locks for
// per-session safety (spec.md §5).
func Serve(t Transport, d *dispatch.Dispatcher, sessions *session.Manager) error {
	for {
		packet, ref, err := t.Receive()
		if err != nil {
			if err == ErrClosed {
				return nil
			}
			return err
		}

		sess := sessions.Get(ref)
		if sess == nil {
			sess = sessions.CreateWithID(ref)
		}

		reply := d.Dispatch(sess, packet)
		if err := t.Send(ref, reply); err != nil {
			return err
		}
	}
}
