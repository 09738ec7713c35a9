// Package idlegear contains the game components of a session.
//
// Wallet holds currencies, Stats holds the player's vitals and experience,
// Quests sends the player on quests in the background and Announcer turns
// game events into messages for the player. The components only talk
// through the event bus and component lookups, so any of them can be
// disabled or replaced by a script extending it.
package idlegear
