package script

import (
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/biruisred/IdleGear/internal/event"
	"github.com/biruisred/IdleGear/internal/event/events"
	"github.com/biruisred/IdleGear/internal/logging"
)

// install registers the Go functions visible to scripts:
//
//	publish(topic, text)  publishes an events.ScriptMessage
//	log(level, text)      writes to the component logger
//	print(...)            log("info", ...)
//	cancelled()           reports whether the session is being destroyed
func (c *Component) install() {
	c.state.Register("publish", c.luaPublish)
	c.state.Register("log", c.luaLog)
	c.state.Register("print", c.luaPrint)
	c.state.Register("cancelled", c.luaCancelled)
}

func (c *Component) luaPublish(L *lua.LState) int {
	topic := L.CheckString(1)
	text := L.OptString(2, "")
	if c.env == nil {
		L.RaiseError("publish: no active session")
		return 0
	}
	msg := events.ScriptMessage{Component: c.Name(), Topic: topic, Text: text}
	if err := event.Publish(c.ctx, c.env.Bus(), msg); err != nil {
		L.RaiseError("publish %s: %v", topic, err)
	}
	return 0
}

func (c *Component) luaLog(L *lua.LState) int {
	level := logging.ParseLevel(L.CheckString(1))
	c.Log().Log(level, L.CheckString(2))
	return 0
}

func (c *Component) luaPrint(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	c.Log().Info("%s", strings.Join(parts, "\t"))
	return 0
}

func (c *Component) luaCancelled(L *lua.LState) int {
	L.Push(lua.LBool(c.env != nil && c.env.Cancelled()))
	return 1
}
