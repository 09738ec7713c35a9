// Package config loads IdleGear settings.
//
// Settings come from three layers, lowest priority first:
//
//  1. Built-in defaults (Default)
//  2. A TOML file, by default idlegear.toml
//  3. IDLEGEAR_* environment variables
//
// Environment variables map to keys by section: IDLEGEAR_LOG_LEVEL sets
// log.level, IDLEGEAR_IDENTITY_USER_ID sets identity.user_id.
//
// Example file:
//
//	[log]
//	level = "debug"
//
//	[runtime]
//	tick = "100ms"
//	disabled = ["idlegear.Announcer"]
//
//	[scripts]
//	enabled = true
//	dir = "scripts"
//
// A Watcher reports changes to the file so the host can reload it.
package config
