package database

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

func newTestDB(t *testing.T) *LeadRepository {
	t.Helper()
	ctx := context.Background()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_fk=1"
	db, err := NewDBConnection(ctx, DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db))
	return NewLeadRepository(db)
}

func fakeLead(createdAt time.Time) *entity.Lead {
	lead := entity.NewLead(gofakeit.Name(), gofakeit.Email())
	lead.Phone = gofakeit.Phone()
	lead.Company = gofakeit.Company()
	lead.CreatedAt = createdAt
	lead.UpdatedAt = createdAt
	return lead
}

func seedUser(t *testing.T, users *UserRepository, role entity.Role) *entity.User {
	t.Helper()
	u := entity.NewUser(gofakeit.Name(), gofakeit.Email(), "hash", role)
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestMigrate_IsIdempotent(t *testing.T) {
	repo := newTestDB(t)
	assert.NoError(t, Migrate(context.Background(), repo.DB))
}

func TestNewDBConnection_RejectsUnknownDriver(t *testing.T) {
	_, err := NewDBConnection(context.Background(), "mysql", "whatever")
	assert.Error(t, err)
}

func TestHandle_OpensOnce(t *testing.T) {
	h := NewHandle(DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	first, err := h.DB(context.Background())
	require.NoError(t, err)
	defer first.Close()

	second, err := h.DB(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, DriverSQLite, h.Driver())
}

func TestLeadRepository_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	older := fakeLead(base)
	newer := fakeLead(base.Add(time.Hour))
	older.HasWebsite = entity.TriTrue
	older.BusinessDetails = "ships furniture"

	n, err := repo.InsertMany(ctx, []*entity.Lead{newer, older})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := repo.FindAll(ctx, entity.LeadFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, older.ID, all[0].ID)
	assert.Equal(t, newer.ID, all[1].ID)

	got, err := repo.FindByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.Name, got.Name)
	assert.Equal(t, older.Email, got.Email)
	assert.Equal(t, entity.TriTrue, got.HasWebsite)
	assert.Equal(t, "ships furniture", got.BusinessDetails)
	assert.Nil(t, got.AssignedTo)
	assert.Nil(t, got.ClosedAmount)
	assert.True(t, got.CreatedAt.Equal(base))

	other, err := repo.FindByID(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TriUnknown, other.HasWebsite)
}

func TestLeadRepository_FindByIDNotFound(t *testing.T) {
	repo := newTestDB(t)
	_, err := repo.FindByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}

func TestLeadRepository_InsertManyRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	first := fakeLead(time.Now().UTC())
	_, err := repo.InsertMany(ctx, []*entity.Lead{first})
	require.NoError(t, err)

	dup := fakeLead(time.Now().UTC())
	dup.Email = first.Email
	fresh := fakeLead(time.Now().UTC())

	_, err = repo.InsertMany(ctx, []*entity.Lead{fresh, dup})
	assert.ErrorIs(t, err, entity.ErrEmailAlreadyExists)

	emails, err := repo.ListEmails(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{first.Email}, emails)
}

func TestLeadRepository_InsertManyLargeBatch(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	leads := make([]*entity.Lead, 0, insertChunk+7)
	for i := 0; i < insertChunk+7; i++ {
		lead := entity.NewLead("Lead", uuid.NewString()+"@example.com")
		leads = append(leads, lead)
	}

	n, err := repo.InsertMany(ctx, leads)
	require.NoError(t, err)
	assert.Equal(t, len(leads), n)

	emails, err := repo.ListEmails(ctx)
	require.NoError(t, err)
	assert.Len(t, emails, len(leads))
}

func TestLeadRepository_AssignAndFilter(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)
	users := NewUserRepository(repo.DB)
	seller := seedUser(t, users, entity.RoleSales)

	now := time.Now().UTC()
	a, b := fakeLead(now), fakeLead(now.Add(time.Second))
	_, err := repo.InsertMany(ctx, []*entity.Lead{a, b})
	require.NoError(t, err)

	require.NoError(t, repo.Assign(ctx, a.ID, seller.ID, now.Add(time.Minute)))

	mine, err := repo.FindAll(ctx, entity.LeadFilter{AssignedTo: &seller.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, a.ID, mine[0].ID)
	assert.True(t, mine[0].IsAssignedTo(seller.ID))

	open, err := repo.FindAll(ctx, entity.LeadFilter{UnassignedOnly: true})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, b.ID, open[0].ID)

	err = repo.Assign(ctx, uuid.NewString(), seller.ID, now)
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}

func TestLeadRepository_SetNoteAndClose(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	lead := fakeLead(time.Now().UTC())
	_, err := repo.InsertMany(ctx, []*entity.Lead{lead})
	require.NoError(t, err)

	at := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetNote(ctx, lead.ID, 1, "called, no answer", at))
	require.NoError(t, repo.SetNote(ctx, lead.ID, 3, "sent proposal", at))
	assert.Error(t, repo.SetNote(ctx, lead.ID, 11, "overflow", at))

	require.NoError(t, repo.Close(ctx, lead.ID, 1500.5, "2024-05-01T00:00:00Z", at))

	got, err := repo.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "called, no answer", got.Notes.Slot(1))
	assert.Equal(t, "", got.Notes.Slot(2))
	assert.Equal(t, "sent proposal", got.Notes.Slot(3))
	assert.Equal(t, 2, got.Notes.Filled())
	require.NotNil(t, got.ClosedAmount)
	assert.InDelta(t, 1500.5, *got.ClosedAmount, 0.0001)
	require.NotNil(t, got.ClosedMonth)
	assert.Equal(t, "2024-05-01T00:00:00Z", *got.ClosedMonth)
	assert.True(t, got.UpdatedAt.Equal(at))
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)
	users := NewUserRepository(repo.DB)

	u := seedUser(t, users, entity.RoleSales)

	byID, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)
	assert.Equal(t, entity.RoleSales, byID.Role)

	byEmail, err := users.FindByEmail(ctx, "  "+u.Email+" ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = users.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, entity.ErrUserNotFound)

	dup := entity.NewUser("Other", u.Email, "hash", entity.RoleSales)
	assert.ErrorIs(t, users.Create(ctx, dup), entity.ErrEmailAlreadyExists)
}

func TestUserRepository_ListByRoleIncludesLegacySpelling(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)
	users := NewUserRepository(repo.DB)

	modern := seedUser(t, users, entity.RoleSales)
	seedUser(t, users, entity.RoleAdmin)

	legacyID := uuid.NewString()
	_, err := repo.DB.ExecContext(ctx,
		`INSERT INTO users (id, name, email, role, password_hash, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		legacyID, "Legacy Seller", "legacy@example.com", "sales_user", "hash", time.Now().UTC(),
	)
	require.NoError(t, err)

	sales, err := users.ListByRole(ctx, entity.RoleSales)
	require.NoError(t, err)
	require.Len(t, sales, 2)

	ids := []string{sales[0].ID, sales[1].ID}
	assert.ElementsMatch(t, []string{modern.ID, legacyID}, ids)
	for _, u := range sales {
		assert.Equal(t, entity.RoleSales, u.Role)
	}

	found, err := users.FindByIDs(ctx, []string{modern.ID, legacyID, uuid.NewString()})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	none, err := users.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
