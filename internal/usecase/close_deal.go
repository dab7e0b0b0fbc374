package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type CloseDealInput struct {
	LeadID      string   `json:"-"`
	Amount      *float64 `json:"amount"`
	ClosedMonth string   `json:"closedMonth,omitempty"`

	// MalformedBody is reported only once the caller may touch the lead.
	MalformedBody bool `json:"-"`
}

type CloseDealOutput struct {
	OK           bool    `json:"ok"`
	ClosedAmount float64 `json:"closedAmount"`
	ClosedMonth  string  `json:"closedMonth"`
}

type CloseDealUseCase struct {
	Leads  entity.LeadRepository
	Logger *zap.Logger
	Now    func() time.Time
}

func NewCloseDealUseCase(leads entity.LeadRepository, logger *zap.Logger) *CloseDealUseCase {
	return &CloseDealUseCase{
		Leads:  leads,
		Logger: logger,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Execute records the closed amount and month of a deal. Closing again
// overwrites the previous outcome.
func (uc *CloseDealUseCase) Execute(ctx context.Context, input CloseDealInput, caller *entity.User) (*CloseDealOutput, error) {
	lead, err := loadAuthorizedLead(ctx, uc.Leads, input.LeadID, caller)
	if err != nil {
		return nil, err
	}

	if input.MalformedBody {
		return nil, validationError("Invalid JSON")
	}
	if input.Amount == nil || !entity.ValidAmount(*input.Amount) {
		return nil, validationError("Amount must be a non-negative number")
	}
	amount := *input.Amount

	now := uc.Now()
	month := strings.TrimSpace(input.ClosedMonth)
	if month == "" {
		month = entity.MonthKeyOf(now).FirstInstant().Format(time.RFC3339)
	}

	if err := uc.Leads.Close(ctx, lead.ID, amount, month, now); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, notFoundError("Not found")
		}
		return nil, databaseError(err)
	}

	uc.Logger.Info("deal closed",
		zap.String("lead_id", lead.ID),
		zap.Float64("amount", amount),
		zap.String("closed_month", month),
	)
	return &CloseDealOutput{OK: true, ClosedAmount: amount, ClosedMonth: month}, nil
}
