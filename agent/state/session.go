package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
)

const (
	BackendMemory  = "memory"
	BackendUpstash = "upstash"
)

// Config is read with the SESSION prefix.
type Config struct {
	Backend   string        `envconfig:"BACKEND" split_words:"true" default:"memory"`
	TTL       time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
	KeyPrefix string        `envconfig:"KEY_PREFIX" split_words:"true" default:"concierge:session:"`
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case BackendMemory, BackendUpstash:
	default:
		return fmt.Errorf("unsupported session backend %q", c.Backend)
	}
	if c.TTL < 0 {
		return errors.New("session ttl must be >= 0")
	}
	return nil
}

// SessionState is one HTTP conversation: the user it acts for and every
// turn exchanged so far, tool turns included.
type SessionState struct {
	SessionID string            `json:"session_id"`
	UserID    string            `json:"user_id"`
	History   []*schema.Message `json:"history,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func NewSessionState(sessionID, userID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		UserID:    userID,
		History:   []*schema.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *SessionState) Validate() error {
	if s == nil {
		return ErrNilSessionState
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	if strings.TrimSpace(s.UserID) == "" {
		return fmt.Errorf("session %s: user id is empty", s.SessionID)
	}
	for i, msg := range s.History {
		if msg == nil {
			return fmt.Errorf("session %s: history[%d] is nil", s.SessionID, i)
		}
	}
	return nil
}

// Clone copies the history slice and each message value. Tool call slices
// are copied so appends on one side do not leak into the other.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	out := *s
	out.History = make([]*schema.Message, 0, len(s.History))
	for _, msg := range s.History {
		if msg == nil {
			continue
		}
		cp := *msg
		cp.ToolCalls = append([]schema.ToolCall(nil), msg.ToolCalls...)
		out.History = append(out.History, &cp)
	}
	return &out
}

// Touch stamps UpdatedAt in UTC.
func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.UpdatedAt
	}
}
