package fixapp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ShabbirHasan1/hotfix/dictionary"
	"github.com/ShabbirHasan1/hotfix/message"
)

type recordingApp struct {
	received chan *message.Message
	err      error
}

func (a *recordingApp) OnMessageFromApp(msg *message.Message) error {
	a.received <- msg
	return a.err
}
func (a *recordingApp) OnMessageToApp(msg *message.Message) error { return nil }
func (a *recordingApp) OnLogout(reason string)                   {}

func TestQueueAdapterDispatchesToApp(t *testing.T) {
	app := &recordingApp{received: make(chan *message.Message, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	adapter := NewQueueAdapter(ctx, app)
	msg := message.New("FIX.4.4", dictionary.MsgTypeNewOrderSingle)

	if err := adapter.Dispatch(ctx, msg); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	select {
	case got := <-app.received:
		if got != msg {
			t.Fatal("app received a different message than dispatched")
		}
	case <-time.After(time.Second):
		t.Fatal("app never received the dispatched message")
	}
}

func TestQueueAdapterSurfacesAppErrors(t *testing.T) {
	app := &recordingApp{received: make(chan *message.Message, 1), err: errors.New("boom")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	adapter := NewQueueAdapter(ctx, app)
	msg := message.New("FIX.4.4", dictionary.MsgTypeNewOrderSingle)
	if err := adapter.Dispatch(ctx, msg); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	<-app.received

	select {
	case err := <-adapter.Errs():
		if err == nil || err.Error() != "boom" {
			t.Fatalf("Errs() = %v, want boom", err)
		}
	case <-time.After(time.Second):
		t.Fatal("adapter never surfaced the app's error")
	}
}

func TestQueueAdapterStopsOnContextCancel(t *testing.T) {
	app := &recordingApp{received: make(chan *message.Message, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	adapter := NewQueueAdapter(ctx, app)
	cancel()

	select {
	case <-adapter.Done():
	case <-time.After(time.Second):
		t.Fatal("adapter did not close Done() after ctx cancellation")
	}
}

func TestNopApplicationDiscardsEverything(t *testing.T) {
	var app NopApplication
	msg := message.New("FIX.4.4", dictionary.MsgTypeNewOrderSingle)
	if err := app.OnMessageFromApp(msg); err != nil {
		t.Fatalf("OnMessageFromApp: %v", err)
	}
	if err := app.OnMessageToApp(msg); err != nil {
		t.Fatalf("OnMessageToApp: %v", err)
	}
	app.OnLogout("done")
}
