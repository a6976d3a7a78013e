package domain

import (
	"time"
)

// CooldownState is the persisted recurrence state of one item in one mode.
// Daily items use CooldownUntil (a day key), practice items use CooldownSessions.
type CooldownState struct {
	UserID           string    `json:"user_id"`
	ItemID           string    `json:"item_id"`
	Mode             Mode      `json:"mode"`
	Score            float64   `json:"score"`
	CooldownUntil    *string   `json:"cooldown_until,omitempty"`
	CooldownSessions *int      `json:"cooldown_sessions,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Inconsistent is true when both cooldown representations are active at once.
func (s *CooldownState) Inconsistent() bool {
	if s == nil {
		return false
	}
	return s.CooldownUntil != nil && *s.CooldownUntil != "" &&
		s.CooldownSessions != nil && *s.CooldownSessions > 0
}

// CooldownPatch is a partial update of a CooldownState. Nil fields are left
// untouched by ApplyTo; ClearCooldownUntil removes the day key explicitly.
type CooldownPatch struct {
	Score              *float64
	CooldownUntil      *string
	ClearCooldownUntil bool
	CooldownSessions   *int
}

// PatchFor builds the patch that persists s for its mode.
func PatchFor(s CooldownState) CooldownPatch {
	score := s.Score
	p := CooldownPatch{Score: &score}

	switch s.Mode {
	case ModePractice:
		sessions := 0
		if s.CooldownSessions != nil {
			sessions = *s.CooldownSessions
		}
		p.CooldownSessions = &sessions
	default:
		if s.CooldownUntil != nil {
			until := *s.CooldownUntil
			p.CooldownUntil = &until
		} else {
			p.ClearCooldownUntil = true
		}
	}
	return p
}

// ApplyTo merges the patch into existing (which may be nil) and returns the
// resulting record. This is the only merge implementation; every store uses it.
func (p CooldownPatch) ApplyTo(existing *CooldownState, userID, itemID string, mode Mode, now time.Time) CooldownState {
	var out CooldownState
	if existing != nil {
		out = *existing
		if existing.CooldownUntil != nil {
			until := *existing.CooldownUntil
			out.CooldownUntil = &until
		}
		if existing.CooldownSessions != nil {
			sessions := *existing.CooldownSessions
			out.CooldownSessions = &sessions
		}
	}

	out.UserID = userID
	out.ItemID = itemID
	out.Mode = mode

	if p.Score != nil {
		out.Score = *p.Score
	}
	if p.ClearCooldownUntil {
		out.CooldownUntil = nil
	} else if p.CooldownUntil != nil {
		until := *p.CooldownUntil
		out.CooldownUntil = &until
	}
	if p.CooldownSessions != nil {
		sessions := *p.CooldownSessions
		out.CooldownSessions = &sessions
	}

	out.UpdatedAt = now.UTC()
	return out
}
