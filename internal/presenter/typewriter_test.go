package presenter

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/biruisred/IdleGear/internal/task"
)

func step(t *testing.T, tk task.Task, dt time.Duration) bool {
	t.Helper()
	done, err := tk.Step(task.WithDelta(context.Background(), dt))
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	return done
}

func TestTypewriter_RevealsPerCharacter(t *testing.T) {
	tw := NewTypewriter("abc", 10*time.Millisecond)
	var outputs []string
	var completed []string
	tw.OnOutput = func(s string) { outputs = append(outputs, s) }
	tw.OnComplete = func(s string) { completed = append(completed, s) }

	if step(t, tw, 0) {
		t.Fatal("done after the first step")
	}
	step(t, tw, 5*time.Millisecond)
	if tw.Text() != "a" {
		t.Errorf("Text() = %q before the delay elapsed, want %q", tw.Text(), "a")
	}
	step(t, tw, 5*time.Millisecond)
	step(t, tw, 10*time.Millisecond)
	if !step(t, tw, 10*time.Millisecond) {
		t.Fatal("not done after the last delay")
	}

	if diff := cmp.Diff([]string{"a", "ab", "abc"}, outputs); diff != "" {
		t.Errorf("outputs (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"abc"}, completed); diff != "" {
		t.Errorf("completed (-want +got):\n%s", diff)
	}
	if !step(t, tw, 0) || len(completed) != 1 {
		t.Error("stepping a finished typewriter must not complete again")
	}
}

func TestTypewriter_LargeDelta(t *testing.T) {
	tw := NewTypewriter("abcd", 10*time.Millisecond)
	step(t, tw, 0)
	step(t, tw, 25*time.Millisecond)
	if tw.Text() != "abc" {
		t.Errorf("Text() = %q, want %q", tw.Text(), "abc")
	}
}

func TestTypewriter_ZeroSpeed(t *testing.T) {
	tw := NewTypewriter("hello", 0)
	if !step(t, tw, 0) {
		t.Fatal("zero speed must finish on the first step")
	}
	if tw.Text() != "hello" {
		t.Errorf("Text() = %q", tw.Text())
	}
}

func TestTypewriter_Tags(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantText string
		wantTags []string
	}{
		{name: "tag", text: "Level up! #beep#", wantText: "Level up! ", wantTags: []string{"beep"}},
		{name: "two tags", text: "#a#x#b#", wantText: "x", wantTags: []string{"a", "b"}},
		{name: "unmatched", text: "50# off", wantText: "50# off"},
		{name: "empty tag", text: "##", wantText: "##"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTypewriter(tt.text, 0)
			var tags []string
			tw.OnTag = func(tag string) { tags = append(tags, tag) }
			step(t, tw, 0)
			if tw.Text() != tt.wantText {
				t.Errorf("Text() = %q, want %q", tw.Text(), tt.wantText)
			}
			if diff := cmp.Diff(tt.wantTags, tags); diff != "" {
				t.Errorf("tags (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTypewriter_Pass(t *testing.T) {
	tw := NewTypewriter("ab#beep#cd", time.Second)
	var tags []string
	var full string
	tw.OnTag = func(tag string) { tags = append(tags, tag) }
	tw.OnComplete = func(s string) { full = s }

	step(t, tw, 0)
	tw.Pass()
	if !tw.Done() || full != "abcd" {
		t.Errorf("after Pass: Done() = %v, full = %q", tw.Done(), full)
	}
	if len(tags) != 0 {
		t.Errorf("Pass fired tags %v", tags)
	}
	if !step(t, tw, 0) {
		t.Error("Step after Pass not done")
	}
}
