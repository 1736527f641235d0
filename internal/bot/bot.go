// Package bot manages bot identities: the name, business description, tone,
// and optional custom prompt that shape how a bot answers.
package bot

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates the requested bot does not exist.
var ErrNotFound = errors.New("bot not found")

// Bot is a configured support assistant. Its knowledge lives in the
// knowledge package; Bot itself only carries identity and voice.
type Bot struct {
	ID           uuid.UUID
	Name         string
	BusinessDesc string
	Tone         string
	CustomPrompt string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Update describes a partial bot update. Nil fields keep their current
// value, so callers can change the tone without resending everything.
type Update struct {
	Name         *string
	BusinessDesc *string
	Tone         *string
	CustomPrompt *string
}

func (u Update) apply(b *Bot) {
	if u.Name != nil {
		b.Name = *u.Name
	}
	if u.BusinessDesc != nil {
		b.BusinessDesc = *u.BusinessDesc
	}
	if u.Tone != nil {
		b.Tone = *u.Tone
	}
	if u.CustomPrompt != nil {
		b.CustomPrompt = *u.CustomPrompt
	}
}
