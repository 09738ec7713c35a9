package presenter

import (
	"context"
	"strings"
	"time"

	"github.com/biruisred/IdleGear/internal/task"
)

// TagDelimiter encloses special tags in typed text. A tag such as #beep# is
// reported through OnTag and never printed. An unmatched delimiter is
// printed as is.
const TagDelimiter = '#'

// Typewriter is a task that reveals text one character at a time, waiting
// Speed between characters. It is driven by step deltas, so it advances
// with the host clock.
type Typewriter struct {
	// OnOutput receives the visible text after every character.
	OnOutput func(partial string)
	// OnTag receives each special tag, without delimiters, when reached.
	OnTag func(tag string)
	// OnComplete receives the full visible text once.
	OnComplete func(full string)

	speed  time.Duration
	pieces []piece
	next   int
	out    strings.Builder
	wait   time.Duration
	done   bool
}

type piece struct {
	r   rune
	tag string
}

// NewTypewriter returns a typewriter for text. A speed of zero reveals the whole
// text on the first step.
func NewTypewriter(text string, speed time.Duration) *Typewriter {
	return &Typewriter{speed: speed, pieces: split(text)}
}

// split separates text into runes and tags.
func split(text string) []piece {
	var pieces []piece
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] == TagDelimiter {
			if end := indexRune(runes[i+1:], TagDelimiter); end > 0 {
				pieces = append(pieces, piece{tag: string(runes[i+1 : i+1+end])})
				i += end + 1
				continue
			}
		}
		pieces = append(pieces, piece{r: runes[i]})
	}
	return pieces
}

func indexRune(rs []rune, r rune) int {
	for i, c := range rs {
		if c == r {
			return i
		}
	}
	return -1
}

// Step reveals the characters due after the step's delta.
func (t *Typewriter) Step(ctx context.Context) (bool, error) {
	if t.done {
		return true, nil
	}
	t.wait -= task.Delta(ctx)
	for t.next < len(t.pieces) {
		if t.wait > 0 {
			return false, nil
		}
		p := t.pieces[t.next]
		t.next++
		if p.tag != "" {
			if t.OnTag != nil {
				t.OnTag(p.tag)
			}
			continue
		}
		t.out.WriteRune(p.r)
		if t.OnOutput != nil {
			t.OnOutput(t.out.String())
		}
		t.wait += t.speed
	}
	if t.wait > 0 {
		return false, nil
	}
	t.finish()
	return true, nil
}

// Pass reveals the rest of the text at once. Tags not yet reached are
// dropped.
func (t *Typewriter) Pass() {
	if t.done {
		return
	}
	for _, p := range t.pieces[t.next:] {
		if p.tag == "" {
			t.out.WriteRune(p.r)
		}
	}
	t.next = len(t.pieces)
	if t.OnOutput != nil {
		t.OnOutput(t.out.String())
	}
	t.finish()
}

// Done reports whether the whole text has been revealed.
func (t *Typewriter) Done() bool { return t.done }

// Text returns the visible text so far.
func (t *Typewriter) Text() string { return t.out.String() }

func (t *Typewriter) finish() {
	t.done = true
	if t.OnComplete != nil {
		t.OnComplete(t.out.String())
	}
}
