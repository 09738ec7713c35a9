package events

import "time"

// QuestStarted is published when the player sets out on a quest.
// Suspendable subscribers may animate the departure before the quest clock
// starts.
type QuestStarted struct {
	QuestID  string
	Name     string
	Stamina  int
	Duration time.Duration
}

// QuestComplete is published when a quest finishes.
type QuestComplete struct {
	QuestID  string
	Success  bool
	GoldGain int
	ExpGain  int
	Message  string
}
