package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// LeadOutput is the lead as the dashboard sees it, with commission figures
// computed against the current month.
type LeadOutput struct {
	*entity.Lead
	entity.CommissionFigures
	Notes []entity.Note `json:"notes"`
}

func NewLeadOutput(lead *entity.Lead, now time.Time) LeadOutput {
	return LeadOutput{
		Lead:              lead,
		CommissionFigures: entity.Commission(lead.ClosedAmount, lead.ClosedMonth, now),
		Notes:             lead.Notes.Notes(lead.UpdatedAt, lead.Assignee()),
	}
}

type QueryLeadsUseCase struct {
	Leads entity.LeadRepository
	Now   func() time.Time
}

func NewQueryLeadsUseCase(leads entity.LeadRepository) *QueryLeadsUseCase {
	return &QueryLeadsUseCase{
		Leads: leads,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

// List returns every lead for admins and only their own leads for sales.
func (uc *QueryLeadsUseCase) List(ctx context.Context, caller *entity.User) ([]LeadOutput, error) {
	if caller == nil {
		return nil, unauthorizedError("Unauthorized")
	}

	var filter entity.LeadFilter
	if !caller.Role.IsAdmin() {
		id := caller.ID
		filter.AssignedTo = &id
	}

	leads, err := uc.Leads.FindAll(ctx, filter)
	if err != nil {
		return nil, databaseError(err)
	}

	now := uc.Now()
	out := make([]LeadOutput, 0, len(leads))
	for _, l := range leads {
		out = append(out, NewLeadOutput(l, now))
	}
	return out, nil
}

func (uc *QueryLeadsUseCase) Get(ctx context.Context, leadID string, caller *entity.User) (*LeadOutput, error) {
	lead, err := loadAuthorizedLead(ctx, uc.Leads, leadID, caller)
	if err != nil {
		return nil, err
	}
	out := NewLeadOutput(lead, uc.Now())
	return &out, nil
}
