package idlegear

import (
	"context"
	"fmt"
	"time"

	"github.com/biruisred/IdleGear/internal/component"
	"github.com/biruisred/IdleGear/internal/event"
	"github.com/biruisred/IdleGear/internal/event/events"
	"github.com/biruisred/IdleGear/internal/task"
)

// Quest is one entry of the quest board.
type Quest struct {
	ID       string
	Name     string
	Stamina  int
	Duration time.Duration
	Gold     int
	Exp      int
}

// DefaultQuests is the built-in quest board.
var DefaultQuests = []Quest{
	{ID: "forest", Name: "Forest Patrol", Stamina: 2, Duration: 3 * time.Second, Gold: 15, Exp: 10},
	{ID: "mine", Name: "Abandoned Mine", Stamina: 3, Duration: 5 * time.Second, Gold: 30, Exp: 20},
	{ID: "ruins", Name: "Sunken Ruins", Stamina: 5, Duration: 8 * time.Second, Gold: 60, Exp: 45},
}

// Quests sends the player on the board's quests one after another while a
// session is active. Each quest waits for enough stamina, announces its
// departure, lets suspendable QuestStarted subscribers finish, runs for its
// duration and pays out through QuestComplete.
type Quests struct {
	component.Base

	board []Quest

	stats     *Stats
	running   bool
	gen       int
	handle    task.Handle
	active    *Quest
	next      int
	completed int
}

// Priority runs Quests after Stats.
func (q *Quests) Priority() int { return 30 }

// Initialize resets the board position.
func (q *Quests) Initialize(env *component.Env) task.Task {
	return task.Func(func(context.Context) error {
		q.next, q.completed, q.active = 0, 0, nil
		return nil
	})
}

// StartSession starts questing in the background.
func (q *Quests) StartSession(env *component.Env) task.Task {
	return task.Func(func(context.Context) error {
		if len(q.board) == 0 {
			q.Log().Warn("no quests on the board")
			return nil
		}
		if q.running {
			return nil
		}
		q.stats, _ = component.Get[*Stats](env)
		q.running = true
		q.gen++
		h, err := env.Start(q.loop(env, q.gen))
		q.handle = h
		return err
	})
}

// EndSession stops questing. A quest in progress is abandoned without
// reward.
func (q *Quests) EndSession(env *component.Env) task.Task {
	return task.Func(func(context.Context) error {
		q.running = false
		if q.handle != 0 {
			env.Cancel(q.handle)
			q.handle = 0
		}
		if q.active != nil {
			q.Log().Info("quest %s abandoned", q.active.ID)
			q.active = nil
		}
		return nil
	})
}

// Active returns the quest in progress.
func (q *Quests) Active() (Quest, bool) {
	if q.active == nil {
		return Quest{}, false
	}
	return *q.active, true
}

// Completed returns the number of quests finished this session.
func (q *Quests) Completed() int { return q.completed }

func (q *Quests) loop(env *component.Env, gen int) task.Task {
	quests := task.Chain(func(int) (task.Task, bool) {
		quest := q.board[q.next%len(q.board)]
		q.next++
		return q.run(env, quest), true
	})
	return task.Guard(quests, func() bool {
		return q.running && q.gen == gen && !env.Cancelled()
	})
}

func (q *Quests) run(env *component.Env, quest Quest) task.Task {
	started := events.QuestStarted{
		QuestID:  quest.ID,
		Name:     quest.Name,
		Stamina:  quest.Stamina,
		Duration: quest.Duration,
	}
	return task.Sequence(
		q.rest(quest),
		task.Func(func(ctx context.Context) error {
			q.active = &quest
			q.Log().Debug("quest %s started", quest.ID)
			return event.Publish(ctx, env.Bus(), started)
		}),
		event.PublishSuspendable(env.Bus(), started),
		task.Sleep(quest.Duration),
		task.Func(func(ctx context.Context) error {
			q.active = nil
			q.completed++
			return event.Publish(ctx, env.Bus(), events.QuestComplete{
				QuestID:  quest.ID,
				Success:  true,
				GoldGain: quest.Gold,
				ExpGain:  quest.Exp,
				Message:  fmt.Sprintf("%s complete: +%d gold, +%d exp", quest.Name, quest.Gold, quest.Exp),
			})
		}),
	)
}

// rest waits until the player has the stamina quest needs.
func (q *Quests) rest(quest Quest) task.Task {
	return task.Go(func(_ context.Context, yield task.Yield) error {
		if q.stats == nil || q.stats.Stamina() >= quest.Stamina {
			return nil
		}
		q.Log().Debug("resting before %s", quest.ID)
		for q.stats.Stamina() < quest.Stamina {
			if !yield() {
				return nil
			}
		}
		return nil
	})
}
