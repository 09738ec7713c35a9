package presenter

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/biruisred/IdleGear/internal/component"
	"github.com/biruisred/IdleGear/internal/task"
)

// Screen opens and initializes the terminal screen.
func Screen() (tcell.Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("new screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	s.HideCursor()
	return s, nil
}

// Component connects a View to the session's bus.
type Component struct {
	component.Base

	view *View
}

// Type returns the descriptor for a component driving v.
func Type(v *View) *component.Type {
	t := component.Define[Component]()
	t.New = func() component.Component {
		return &Component{view: v}
	}
	return t
}

// View returns the attached view.
func (c *Component) View() *View { return c.view }

// Priority attaches the view before game components publish their
// initial state.
func (c *Component) Priority() int { return -100 }

// Initialize attaches the view.
func (c *Component) Initialize(env *component.Env) task.Task {
	return task.Func(func(context.Context) error {
		if c.view == nil {
			return nil
		}
		return c.view.Attach(env.Bus())
	})
}

// Destroy detaches the view.
func (c *Component) Destroy(*component.Env) {
	if c.view != nil {
		c.view.Detach()
	}
}
