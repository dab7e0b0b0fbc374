package entity

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLeadNotFound       = errors.New("lead not found")
	ErrInvalidLeadID      = errors.New("invalid lead id")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// TriState carries the has-website answer, which leads often leave blank.
type TriState int

const (
	TriUnknown TriState = iota
	TriTrue
	TriFalse
)

// ParseTriState coerces spreadsheet answers. Strings are compared trimmed and
// case-insensitive; bools pass through.
func ParseTriState(v any) TriState {
	switch t := v.(type) {
	case bool:
		if t {
			return TriTrue
		}
		return TriFalse
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "yes", "y", "true":
			return TriTrue
		case "no", "n", "false":
			return TriFalse
		}
	}
	return TriUnknown
}

// Bool returns nil for unknown.
func (t TriState) Bool() *bool {
	switch t {
	case TriTrue:
		b := true
		return &b
	case TriFalse:
		b := false
		return &b
	}
	return nil
}

func TriStateFromBool(b *bool) TriState {
	if b == nil {
		return TriUnknown
	}
	if *b {
		return TriTrue
	}
	return TriFalse
}

func (t TriState) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Bool())
}

func (t *TriState) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	*t = TriStateFromBool(b)
	return nil
}

type Lead struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Company         string     `json:"company"`
	Platform        string     `json:"platform"`
	PreferredTime   string     `json:"preferredTime"`
	StartTimeline   string     `json:"startTimeline"`
	HasWebsite      TriState   `json:"hasWebsite"`
	BusinessDetails string     `json:"businessDetails"`
	AssignedTo      *string    `json:"assignedTo"`
	ClosedAmount    *float64   `json:"closedAmount,omitempty"`
	ClosedMonth     *string    `json:"closedMonth,omitempty"`
	Notes           NoteLedger `json:"-"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// NewLead builds an unassigned lead with a fresh id. The email is stored in
// its normalized (trimmed, lower-cased) form.
func NewLead(name, email string) *Lead {
	now := time.Now().UTC()
	return &Lead{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (l *Lead) IsAssignedTo(userID string) bool {
	return l.AssignedTo != nil && *l.AssignedTo != "" && *l.AssignedTo == userID
}

// Assignee returns the assigned user id or "".
func (l *Lead) Assignee() string {
	if l.AssignedTo == nil {
		return ""
	}
	return *l.AssignedTo
}

// NormalizeEmail is the deduplication key for leads.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateLeadID rejects ids that are not UUIDs before they reach the store.
func ValidateLeadID(id string) error {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return ErrInvalidLeadID
	}
	return nil
}

type LeadFilter struct {
	AssignedTo     *string
	UnassignedOnly bool
}

type LeadRepository interface {
	FindAll(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	ListEmails(ctx context.Context) ([]string, error)
	InsertMany(ctx context.Context, leads []*Lead) (int, error)
	Assign(ctx context.Context, leadID, userID string, at time.Time) error
	SetNote(ctx context.Context, leadID string, slot int, content string, at time.Time) error
	Close(ctx context.Context, leadID string, amount float64, month string, at time.Time) error
}
