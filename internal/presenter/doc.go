// Package presenter draws an IdleGear session to a terminal with tcell.
//
// A View subscribes to the player, quest and message events on a session's
// bus and keeps a copy of everything it needs to draw. Announcements are
// revealed character by character through a Typewriter; text between two
// TagDelimiter runes is a tag, and the #beep# tag rings the terminal bell.
//
// The view also subscribes to QuestStarted as a suspendable event, so the
// quest clock starts only after the departure line has been typed out or
// skipped with space.
//
//	screen, err := presenter.Screen()
//	if err != nil {
//		return err
//	}
//	defer screen.Fini()
//	view := presenter.New(screen, presenter.DefaultOptions())
//	catalog.Add(presenter.Type(view))
package presenter
