// Package fixapp defines the narrow boundary between the session engine
// and the code that actually trades (spec.md §4.11): an Application
// interface plus a bounded-queue adapter that decouples a slow application
// callback from the session-core's latency budget.
package fixapp

import (
	"github.com/ShabbirHasan1/hotfix/message"
)

// Application is implemented by the user of this module. OnMessageFromApp
// is the pre-encode hook run on a user-originated outbound message just
// before the session assigns it a sequence number and sends it;
// OnMessageToApp delivers a parsed, non-administrative inbound message;
// OnLogout notifies the application that the session has ended.
type Application interface {
	OnMessageFromApp(msg *message.Message) error
	OnMessageToApp(msg *message.Message) error
	OnLogout(reason string)
}

// NopApplication discards every inbound application message. Useful as a
// placeholder while wiring a new session, or in tests that only exercise
// session-level behavior.
type NopApplication struct{}

func (NopApplication) OnMessageFromApp(msg *message.Message) error { return nil }
func (NopApplication) OnMessageToApp(msg *message.Message) error   { return nil }
func (NopApplication) OnLogout(reason string)                      {}
