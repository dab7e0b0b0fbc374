package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// insertChunk keeps every multi-row INSERT under the postgres parameter limit.
const insertChunk = 500

const leadColumns = `id, full_name, email, phone, company, platform, preferred_call_time,
	start_timeline, has_website, business_details, assigned_to, closed_amount, closed_month,
	follow_up_1, follow_up_2, follow_up_3, follow_up_4, follow_up_5,
	follow_up_6, follow_up_7, follow_up_8, follow_up_9, follow_up_10,
	created_at, updated_at`

const insertLeadColumns = `id, full_name, email, phone, company, platform, preferred_call_time,
	start_timeline, has_website, business_details, assigned_to, created_at, updated_at`

const insertLeadArity = 13

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead         entity.Lead
		hasWebsite   sql.NullBool
		assignedTo   sql.NullString
		closedAmount sql.NullFloat64
		closedMonth  sql.NullString
		notes        [entity.NoteCapacity]sql.NullString
	)

	dest := []any{
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Company, &lead.Platform,
		&lead.PreferredTime, &lead.StartTimeline, &hasWebsite, &lead.BusinessDetails,
		&assignedTo, &closedAmount, &closedMonth,
	}
	for i := range notes {
		dest = append(dest, &notes[i])
	}
	dest = append(dest, &lead.CreatedAt, &lead.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if hasWebsite.Valid {
		lead.HasWebsite = entity.TriStateFromBool(&hasWebsite.Bool)
	}
	if assignedTo.Valid && assignedTo.String != "" {
		lead.AssignedTo = &assignedTo.String
	}
	if closedAmount.Valid {
		lead.ClosedAmount = &closedAmount.Float64
	}
	if closedMonth.Valid {
		lead.ClosedMonth = &closedMonth.String
	}
	for i, n := range notes {
		lead.Notes[i] = n.String
	}
	lead.CreatedAt = lead.CreatedAt.UTC()
	lead.UpdatedAt = lead.UpdatedAt.UTC()

	return &lead, nil
}

// FindAll returns leads oldest first.
func (r *LeadRepository) FindAll(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads`
	var args []any

	switch {
	case filter.AssignedTo != nil:
		query += ` WHERE assigned_to = $1`
		args = append(args, *filter.AssignedTo)
	case filter.UnassignedOnly:
		query += ` WHERE assigned_to IS NULL OR assigned_to = ''`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load lead: %w", err)
	}
	return lead, nil
}

// ListEmails returns every stored lead email in its normalized form.
func (r *LeadRepository) ListEmails(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT email FROM leads`)
	if err != nil {
		return nil, fmt.Errorf("failed to list lead emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, entity.NormalizeEmail(email))
	}
	return emails, rows.Err()
}

// InsertMany stores the batch atomically: either every lead lands or none do.
func (r *LeadRepository) InsertMany(ctx context.Context, leads []*entity.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin insert: %w", err)
	}
	defer tx.Rollback()

	for start := 0; start < len(leads); start += insertChunk {
		end := min(start+insertChunk, len(leads))
		query, args := buildLeadInsert(leads[start:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return 0, entity.ErrEmailAlreadyExists
			}
			return 0, fmt.Errorf("failed to insert leads: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit leads: %w", err)
	}
	return len(leads), nil
}

func buildLeadInsert(leads []*entity.Lead) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO leads (` + insertLeadColumns + `) VALUES `)

	args := make([]any, 0, len(leads)*insertLeadArity)
	for i, l := range leads {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < insertLeadArity; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*insertLeadArity+j+1)
		}
		sb.WriteString(")")

		args = append(args,
			l.ID, l.Name, entity.NormalizeEmail(l.Email), l.Phone, l.Company, l.Platform,
			l.PreferredTime, l.StartTimeline, l.HasWebsite.Bool(), l.BusinessDetails,
			nullString(l.Assignee()), l.CreatedAt.UTC(), l.UpdatedAt.UTC(),
		)
	}
	return sb.String(), args
}

func (r *LeadRepository) Assign(ctx context.Context, leadID, userID string, at time.Time) error {
	query := `UPDATE leads SET assigned_to = $1, updated_at = $2 WHERE id = $3`
	return r.update(ctx, "assign lead", query, userID, at.UTC(), leadID)
}

// SetNote writes one follow-up slot and bumps updated_at.
func (r *LeadRepository) SetNote(ctx context.Context, leadID string, slot int, content string, at time.Time) error {
	if slot < 1 || slot > entity.NoteCapacity {
		return fmt.Errorf("follow-up slot %d out of range", slot)
	}
	query := fmt.Sprintf(`UPDATE leads SET follow_up_%d = $1, updated_at = $2 WHERE id = $3`, slot)
	return r.update(ctx, "save follow-up", query, content, at.UTC(), leadID)
}

func (r *LeadRepository) Close(ctx context.Context, leadID string, amount float64, month string, at time.Time) error {
	query := `UPDATE leads SET closed_amount = $1, closed_month = $2, updated_at = $3 WHERE id = $4`
	return r.update(ctx, "close deal", query, amount, month, at.UTC(), leadID)
}

func (r *LeadRepository) update(ctx context.Context, op, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
