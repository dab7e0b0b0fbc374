package usecase

import (
	"context"
	"io"

	"github.com/xavierca1/ligue-crm/internal/infra/queue"
)

// TabularDecoder turns an uploaded spreadsheet into header-keyed rows.
type TabularDecoder interface {
	Decode(filename string, r io.Reader) ([]map[string]any, error)
}

type PhoneFormatter interface {
	Format(raw string) string
}

// AssignmentNotifier is told about every lead that changed hands.
type AssignmentNotifier interface {
	PublishLeadAssigned(ctx context.Context, payload queue.LeadAssignedPayload) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
