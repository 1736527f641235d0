package conversation

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

func msg(role, content string) Message {
	return Message{ID: uuid.New(), Role: role, Content: content, CreatedAt: time.Now()}
}

func TestWindowDropsSystemMessages(t *testing.T) {
	messages := []Message{
		msg(RoleSystem, "old system prompt"),
		msg(RoleUser, "hello"),
		msg(RoleAssistant, "hi"),
		msg(RoleSystem, "another system row"),
		msg(RoleUser, "how are you"),
	}

	got := Window(messages, DefaultWindow)
	if len(got) != 3 {
		t.Fatalf("Window() kept %d messages, want 3", len(got))
	}
	for _, m := range got {
		if m.Role == RoleSystem {
			t.Errorf("Window() kept a system message: %q", m.Content)
		}
	}
	if got[0].Content != "hello" || got[2].Content != "how are you" {
		t.Errorf("Window() reordered messages: %v", got)
	}
}

func TestWindowKeepsMostRecent(t *testing.T) {
	var messages []Message
	for i := range 30 {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		messages = append(messages, msg(role, fmt.Sprintf("message %d", i)))
	}

	got := Window(messages, DefaultWindow)
	if len(got) != DefaultWindow {
		t.Fatalf("Window() kept %d messages, want %d", len(got), DefaultWindow)
	}
	if got[0].Content != "message 10" {
		t.Errorf("Window() starts at %q, want message 10", got[0].Content)
	}
	if got[len(got)-1].Content != "message 29" {
		t.Errorf("Window() ends at %q, want message 29", got[len(got)-1].Content)
	}
}

func TestWindowSystemDropHappensBeforeLimit(t *testing.T) {
	// 25 system rows followed by 10 user/assistant rows. Dropping system
	// first means all 10 real messages survive a limit of 20.
	var messages []Message
	for range 25 {
		messages = append(messages, msg(RoleSystem, "noise"))
	}
	for i := range 10 {
		messages = append(messages, msg(RoleUser, fmt.Sprintf("real %d", i)))
	}

	got := Window(messages, DefaultWindow)
	if len(got) != 10 {
		t.Fatalf("Window() kept %d messages, want all 10 non-system rows", len(got))
	}
}

func TestWindowEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		limit    int
		want     int
	}{
		{name: "empty history", messages: nil, limit: DefaultWindow, want: 0},
		{name: "zero limit", messages: []Message{msg(RoleUser, "x")}, limit: 0, want: 0},
		{name: "negative limit", messages: []Message{msg(RoleUser, "x")}, limit: -1, want: 0},
		{name: "fewer than limit", messages: []Message{msg(RoleUser, "x"), msg(RoleAssistant, "y")}, limit: 20, want: 2},
		{name: "exactly limit", messages: []Message{msg(RoleUser, "x"), msg(RoleAssistant, "y")}, limit: 2, want: 2},
		{name: "all system", messages: []Message{msg(RoleSystem, "a"), msg(RoleSystem, "b")}, limit: 20, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Window(tt.messages, tt.limit); len(got) != tt.want {
				t.Errorf("Window() kept %d messages, want %d", len(got), tt.want)
			}
		})
	}
}
