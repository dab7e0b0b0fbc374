package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Header spellings seen in the wild, first match wins.
var (
	nameHeaders            = []string{"name", "Name", "fullName", "Full Name", "full_name"}
	emailHeaders           = []string{"email", "Email", "E-mail"}
	phoneHeaders           = []string{"phone", "Phone", "Phone Number"}
	companyHeaders         = []string{"company", "Company"}
	platformHeaders        = []string{"platform", "Platform"}
	preferredTimeHeaders   = []string{"preferredTime", "PreferredTime", "Preferred Time", "Please choose prefered time to call you by our agent!", "Please choose preferred time to call you by our agent!"}
	startTimelineHeaders   = []string{"startTimeline", "StartTimeline", "Start Timeline", "how soon you are looking to start", "How soon you are looking to start"}
	hasWebsiteHeaders      = []string{"hasWebsite", "HasWebsite", "Has Website", "Do you have website?", "Do you have a website?"}
	businessDetailsHeaders = []string{"businessDetails", "BusinessDetails", "Business Details", "please share your business details!", "Please share your business details!"}
)

type ImportLeadsInput struct {
	Filename string
	Reader   io.Reader
}

type ImportLeadsOutput struct {
	Added int  `json:"added"`
	Total *int `json:"total,omitempty"`
}

type ImportLeadsUseCase struct {
	Repo    entity.LeadRepository
	Decoder TabularDecoder
	Phones  PhoneFormatter
	Logger  *zap.Logger
}

func NewImportLeadsUseCase(repo entity.LeadRepository, decoder TabularDecoder, phones PhoneFormatter, logger *zap.Logger) *ImportLeadsUseCase {
	return &ImportLeadsUseCase{
		Repo:    repo,
		Decoder: decoder,
		Phones:  phones,
		Logger:  logger,
	}
}

func (uc *ImportLeadsUseCase) Execute(ctx context.Context, input ImportLeadsInput) (*ImportLeadsOutput, error) {
	rows, err := uc.Decoder.Decode(input.Filename, input.Reader)
	if err != nil {
		uc.Logger.Warn("lead import parse failed", zap.String("filename", input.Filename), zap.Error(err))
		return nil, validationError("Failed to parse file (CSV/Excel)")
	}

	existing, err := uc.Repo.ListEmails(ctx)
	if err != nil {
		return nil, databaseError(err)
	}

	seen := make(map[string]struct{}, len(existing)+len(rows))
	for _, e := range existing {
		seen[entity.NormalizeEmail(e)] = struct{}{}
	}

	leads := BuildLeads(rows, seen, uc.Phones)
	if len(leads) == 0 {
		total := len(existing)
		return &ImportLeadsOutput{Added: 0, Total: &total}, nil
	}

	added, err := uc.Repo.InsertMany(ctx, leads)
	if err != nil {
		return nil, databaseError(err)
	}

	uc.Logger.Info("leads imported",
		zap.String("filename", input.Filename),
		zap.Int("rows", len(rows)),
		zap.Int("added", added),
	)
	return &ImportLeadsOutput{Added: added}, nil
}

// BuildLeads maps decoded rows to new leads. Rows without an email, or whose
// normalized email is already in seen, are dropped; accepted emails are
// added to seen so later duplicates in the same batch are dropped too.
func BuildLeads(rows []map[string]any, seen map[string]struct{}, phones PhoneFormatter) []*entity.Lead {
	var leads []*entity.Lead
	for _, row := range rows {
		email := entity.NormalizeEmail(lookupString(row, emailHeaders))
		if email == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}

		lead := entity.NewLead(lookupString(row, nameHeaders), email)
		lead.Phone = lookupString(row, phoneHeaders)
		if phones != nil && lead.Phone != "" {
			lead.Phone = phones.Format(lead.Phone)
		}
		lead.Company = lookupString(row, companyHeaders)
		lead.Platform = lookupString(row, platformHeaders)
		lead.PreferredTime = lookupString(row, preferredTimeHeaders)
		lead.StartTimeline = lookupString(row, startTimelineHeaders)
		lead.HasWebsite = entity.ParseTriState(lookup(row, hasWebsiteHeaders))
		lead.BusinessDetails = lookupString(row, businessDetailsHeaders)
		leads = append(leads, lead)
	}
	return leads
}

// lookup returns the first candidate header holding a non-empty value.
func lookup(row map[string]any, candidates []string) any {
	for _, key := range candidates {
		v, ok := row[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

func lookupString(row map[string]any, candidates []string) string {
	switch v := lookup(row, candidates).(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
