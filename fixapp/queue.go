package fixapp

import (
	"context"

	"github.com/ShabbirHasan1/hotfix/message"
)

// queueDepth matches the session engine's actor queue depth (spec.md §5);
// the adapter's queue is a separate buffer, not the same channel, so a slow
// Application.OnMessageToApp call never backs up the session-core's own
// inbound channel beyond this bound.
const queueDepth = 10

// QueueAdapter wraps an Application so that delivering inbound messages to
// it happens on its own goroutine, decoupling application latency from
// session-core latency (spec.md §4.11: "the adapter's own queue decouples
// application latency from session latency — a slow application must not
// stall heartbeat emission"). When the queue is full, Dispatch blocks —
// this is deliberate backpressure, not message loss: a session that cannot
// keep its application fed should stall rather than silently drop
// messages.
type QueueAdapter struct {
	app   Application
	queue chan *message.Message
	errs  chan error
	done  chan struct{}
}

// NewQueueAdapter starts the adapter's delivery goroutine. Cancel ctx to
// stop it.
func NewQueueAdapter(ctx context.Context, app Application) *QueueAdapter {
	a := &QueueAdapter{
		app:   app,
		queue: make(chan *message.Message, queueDepth),
		errs:  make(chan error, queueDepth),
		done:  make(chan struct{}),
	}
	go a.run(ctx)
	return a
}

func (a *QueueAdapter) run(ctx context.Context) {
	defer close(a.done)
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-a.queue:
			if err := a.app.OnMessageToApp(msg); err != nil {
				select {
				case a.errs <- err:
				default:
				}
			}
		}
	}
}

// Dispatch enqueues msg for delivery, blocking if the queue is full.
func (a *QueueAdapter) Dispatch(ctx context.Context, msg *message.Message) error {
	select {
	case a.queue <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Errs surfaces errors returned by the wrapped Application's callback.
func (a *QueueAdapter) Errs() <-chan error { return a.errs }

// Done is closed once the adapter's goroutine has exited.
func (a *QueueAdapter) Done() <-chan struct{} { return a.done }

// OnMessageToApp satisfies Application by enqueueing, using
// context.Background so a caller that only has the narrower interface
// still gets the non-blocking-to-session-core behavior; callers needing
// cancellation should use Dispatch directly instead.
func (a *QueueAdapter) OnMessageToApp(msg *message.Message) error {
	return a.Dispatch(context.Background(), msg)
}

// OnMessageFromApp and OnLogout pass straight through — the bounded queue
// only needs to decouple inbound delivery (spec.md §4.11 scopes it to "a
// slow application consuming inbound messages"); an outbound pre-encode
// hook runs on the caller's own Send, not on the session-core's goroutine.
func (a *QueueAdapter) OnMessageFromApp(msg *message.Message) error {
	return a.app.OnMessageFromApp(msg)
}
func (a *QueueAdapter) OnLogout(reason string) { a.app.OnLogout(reason) }
