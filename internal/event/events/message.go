package events

// AnnouncementMessage is a message shown prominently to the player.
type AnnouncementMessage struct {
	Message string
}

// GlobalMessage is a message for the shared message log.
type GlobalMessage struct {
	Message string
}

// ScriptMessage is published by scripted components.
type ScriptMessage struct {
	// Component is the name of the publishing script.
	Component string

	// Topic is a free-form label chosen by the script.
	Topic string

	// Text is the message body.
	Text string
}
