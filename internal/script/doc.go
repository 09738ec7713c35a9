// Package script implements components in Lua.
//
// Every *.lua file in the scripts directory becomes one component type. A
// script defines any of the hook functions as globals:
//
//	function initialize()
//	    log("info", "warming up")
//	    coroutine.yield()          -- resume on the next step
//	    publish("status", "ready")
//	end
//
//	function start_session()
//	    while not cancelled() do
//	        coroutine.yield()
//	    end
//	end
//
// Missing hooks finish immediately. An optional manifest next to the script
// (quests.lua, quests.toml) sets the type name, priority and parents:
//
//	name = "lua.Quests"
//	extends = ["idlegear.Quests"]
//	priority = 20
//
// Scripts run with the base, table, string, math and coroutine libraries
// only.
package script
