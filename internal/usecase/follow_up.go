package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type AppendNoteInput struct {
	LeadID  string `json:"-"`
	Content string `json:"content"`
}

type FollowUpUseCase struct {
	Leads  entity.LeadRepository
	Logger *zap.Logger
	Now    func() time.Time
}

func NewFollowUpUseCase(leads entity.LeadRepository, logger *zap.Logger) *FollowUpUseCase {
	return &FollowUpUseCase{
		Leads:  leads,
		Logger: logger,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns the filled follow-up slots of a lead in slot order.
func (uc *FollowUpUseCase) List(ctx context.Context, leadID string, caller *entity.User) ([]entity.Note, error) {
	lead, err := loadAuthorizedLead(ctx, uc.Leads, leadID, caller)
	if err != nil {
		return nil, err
	}
	return lead.Notes.Notes(lead.UpdatedAt, lead.Assignee()), nil
}

// Append writes the note into the lowest empty slot. A lead holding ten
// notes rejects further notes.
func (uc *FollowUpUseCase) Append(ctx context.Context, input AppendNoteInput, caller *entity.User) (*entity.Note, error) {
	lead, err := loadAuthorizedLead(ctx, uc.Leads, input.LeadID, caller)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, validationError("Content required")
	}

	slot, err := lead.Notes.Append(content)
	if errors.Is(err, entity.ErrNotesFull) {
		return nil, validationError("All follow-up slots are filled")
	}
	if err != nil {
		return nil, err
	}

	now := uc.Now()
	if err := uc.Leads.SetNote(ctx, lead.ID, slot, content, now); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, notFoundError("Not found")
		}
		return nil, databaseError(err)
	}

	uc.Logger.Debug("follow-up note added", zap.String("lead_id", lead.ID), zap.Int("slot", slot))
	return &entity.Note{
		ID:        entity.NoteID(slot),
		Slot:      slot,
		UserID:    caller.ID,
		Content:   content,
		CreatedAt: now,
	}, nil
}

// loadAuthorizedLead validates the id, loads the lead and checks the caller
// may act on it.
func loadAuthorizedLead(ctx context.Context, repo entity.LeadRepository, leadID string, caller *entity.User) (*entity.Lead, error) {
	if caller == nil {
		return nil, unauthorizedError("Unauthorized")
	}
	leadID = strings.TrimSpace(leadID)
	if leadID == "" || entity.ValidateLeadID(leadID) != nil {
		return nil, validationError("Invalid lead id")
	}

	lead, err := repo.FindByID(ctx, leadID)
	if errors.Is(err, entity.ErrLeadNotFound) {
		// Sales callers get Forbidden for any lead they do not own, existing or not.
		if !caller.Role.IsAdmin() {
			return nil, forbiddenError()
		}
		return nil, notFoundError("Not found")
	}
	if err != nil {
		return nil, databaseError(err)
	}

	if err := Authorize(caller, lead); err != nil {
		return nil, err
	}
	return lead, nil
}
