// Package events defines the payload types published on the event bus.
//
// Each payload is a plain value struct; its Go type is its channel key, so
// there are no topic strings to keep in sync. Payloads are grouped by the
// part of the system that publishes them:
//
//   - Runtime events: lifecycle phases, configuration reloads
//   - Player events: currencies, stats, experience, level
//   - Quest events: quest start and completion
//   - Message events: announcements, global chat, script output
//
// # Usage
//
//	event.Publish(ctx, bus, events.GoldChanged{Current: 120, Delta: 20})
//
// Handlers must treat payloads as read-only.
package events
