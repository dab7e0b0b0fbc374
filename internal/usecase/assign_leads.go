package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
)

const (
	AssignModeSingle = "single"
	AssignModeBulk   = "bulk"
)

type AssignOneInput struct {
	LeadID string `json:"leadId"`
	UserID string `json:"userId"`
}

type AssignBulkInput struct {
	UserA   string   `json:"userA"`
	UserB   string   `json:"userB"`
	LeadIDs []string `json:"leadIds,omitempty"`
}

type AssignBulkOutput struct {
	OK       bool `json:"ok"`
	Assigned int  `json:"assigned"`
	Total    int  `json:"total"`
}

type AssignLeadsUseCase struct {
	Leads    entity.LeadRepository
	Users    entity.UserRepository
	Notifier AssignmentNotifier
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewAssignLeadsUseCase(leads entity.LeadRepository, users entity.UserRepository, notifier AssignmentNotifier, logger *zap.Logger) *AssignLeadsUseCase {
	return &AssignLeadsUseCase{
		Leads:    leads,
		Users:    users,
		Notifier: notifier,
		Logger:   logger,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// AssignOne points a lead at a sales user, overwriting any previous owner.
func (uc *AssignLeadsUseCase) AssignOne(ctx context.Context, input AssignOneInput) error {
	leadID := strings.TrimSpace(input.LeadID)
	userID := strings.TrimSpace(input.UserID)
	if leadID == "" || userID == "" {
		return validationError("leadId and userId required")
	}

	user, err := uc.Users.FindByID(ctx, userID)
	if errors.Is(err, entity.ErrUserNotFound) {
		return notFoundError("Target user not found")
	}
	if err != nil {
		return databaseError(err)
	}
	if !user.Role.IsSales() {
		return notFoundError("Target user not sales")
	}

	if entity.ValidateLeadID(leadID) != nil {
		return validationError("Invalid leadId")
	}
	lead, err := uc.Leads.FindByID(ctx, leadID)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return notFoundError("Lead not found")
	}
	if err != nil {
		return databaseError(err)
	}

	at := uc.Now()
	if err := uc.Leads.Assign(ctx, lead.ID, user.ID, at); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return notFoundError("Lead not found")
		}
		return databaseError(err)
	}

	uc.notify(ctx, lead, user, AssignModeSingle, at)
	return nil
}

// AssignBulk splits leads between two sales users in strict alternation:
// even positions go to UserA, odd positions to UserB. Failed updates are
// counted, not reported, and never stop the batch.
func (uc *AssignLeadsUseCase) AssignBulk(ctx context.Context, input AssignBulkInput) (*AssignBulkOutput, error) {
	userA := strings.TrimSpace(input.UserA)
	userB := strings.TrimSpace(input.UserB)
	if userA == "" || userB == "" {
		return nil, validationError("userA and userB required")
	}
	if userA == userB {
		return nil, validationError("Choose two different employees")
	}

	found, err := uc.Users.FindByIDs(ctx, []string{userA, userB})
	if err != nil {
		return nil, databaseError(err)
	}
	sales := make(map[string]*entity.User, len(found))
	for _, u := range found {
		if u.Role.IsSales() {
			sales[u.ID] = u
		}
	}
	if sales[userA] == nil || sales[userB] == nil {
		return nil, validationError("Invalid sales employees")
	}

	targets, explicit, err := uc.bulkTargets(ctx, input.LeadIDs)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, validationError("No target leads to assign")
	}

	pair := [2]*entity.User{sales[userA], sales[userB]}
	assigned := 0
	for i, lead := range targets {
		to := pair[i%2]
		at := uc.Now()
		if err := uc.Leads.Assign(ctx, lead.ID, to.ID, at); err != nil {
			uc.Logger.Warn("bulk assignment skipped lead",
				zap.String("lead_id", lead.ID),
				zap.String("user_id", to.ID),
				zap.Error(err),
			)
			continue
		}
		assigned++
		if explicit {
			lead = uc.reload(ctx, lead)
		}
		uc.notify(ctx, lead, to, AssignModeBulk, at)
	}

	uc.Logger.Info("bulk assignment finished",
		zap.String("user_a", userA),
		zap.String("user_b", userB),
		zap.Int("assigned", assigned),
		zap.Int("total", len(targets)),
	)
	return &AssignBulkOutput{OK: true, Assigned: assigned, Total: len(targets)}, nil
}

// bulkTargets keeps the order the caller supplied. Malformed ids are dropped;
// well-formed ids are kept even when no lead exists so the failed update
// shows up in the total. The bool reports whether the targets are bare ids.
func (uc *AssignLeadsUseCase) bulkTargets(ctx context.Context, ids []string) ([]*entity.Lead, bool, error) {
	if len(ids) > 0 {
		targets := make([]*entity.Lead, 0, len(ids))
		for _, id := range ids {
			id = strings.TrimSpace(id)
			if entity.ValidateLeadID(id) != nil {
				continue
			}
			targets = append(targets, &entity.Lead{ID: id})
		}
		return targets, true, nil
	}

	leads, err := uc.Leads.FindAll(ctx, entity.LeadFilter{UnassignedOnly: true})
	if err != nil {
		return nil, false, databaseError(err)
	}
	return leads, false, nil
}

// reload fills in the contact details of a lead known only by id so the
// notification names it. On failure the bare lead is returned.
func (uc *AssignLeadsUseCase) reload(ctx context.Context, lead *entity.Lead) *entity.Lead {
	if uc.Notifier == nil {
		return lead
	}
	full, err := uc.Leads.FindByID(ctx, lead.ID)
	if err != nil {
		uc.Logger.Warn("assigned lead could not be reloaded", zap.String("lead_id", lead.ID), zap.Error(err))
		return lead
	}
	return full
}

func (uc *AssignLeadsUseCase) notify(ctx context.Context, lead *entity.Lead, user *entity.User, mode string, at time.Time) {
	if uc.Notifier == nil {
		return
	}
	payload := queue.LeadAssignedPayload{
		LeadID:     lead.ID,
		LeadName:   lead.Name,
		LeadEmail:  lead.Email,
		UserID:     user.ID,
		UserName:   user.Name,
		UserEmail:  user.Email,
		Mode:       mode,
		AssignedAt: at,
	}
	if err := uc.Notifier.PublishLeadAssigned(ctx, payload); err != nil {
		uc.Logger.Warn("lead assigned but notification failed", zap.String("lead_id", lead.ID), zap.Error(err))
	}
}
