package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
)

const (
	leadID1 = "11111111-1111-4111-8111-111111111111"
	leadID2 = "22222222-2222-4222-8222-222222222222"
	leadID3 = "33333333-3333-4333-8333-333333333333"
	leadID4 = "44444444-4444-4444-8444-444444444444"
	leadID5 = "55555555-5555-4555-8555-555555555555"
)

func newAssignUseCase(leads *MockLeadRepository, users *MockUserRepository, notifier AssignmentNotifier) *AssignLeadsUseCase {
	uc := NewAssignLeadsUseCase(leads, users, notifier, zap.NewNop())
	uc.Now = nowFunc
	return uc
}

func TestAssignOne(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns and notifies", func(t *testing.T) {
		leads := new(MockLeadRepository)
		users := new(MockUserRepository)
		notifier := new(MockNotifier)
		uc := newAssignUseCase(leads, users, notifier)

		seller := salesUser("s1")
		lead := &entity.Lead{ID: leadID1, Name: "Ada", Email: "ada@example.com"}
		users.On("FindByID", ctx, "s1").Return(seller, nil)
		leads.On("FindByID", ctx, leadID1).Return(lead, nil)
		leads.On("Assign", ctx, leadID1, "s1", fixedNow).Return(nil)
		notifier.On("PublishLeadAssigned", ctx, queue.LeadAssignedPayload{
			LeadID:     leadID1,
			LeadName:   "Ada",
			LeadEmail:  "ada@example.com",
			UserID:     "s1",
			UserName:   seller.Name,
			UserEmail:  seller.Email,
			Mode:       AssignModeSingle,
			AssignedAt: fixedNow,
		}).Return(nil)

		require.NoError(t, uc.AssignOne(ctx, AssignOneInput{LeadID: leadID1, UserID: " s1 "}))
		leads.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("notification failure does not fail the assignment", func(t *testing.T) {
		leads := new(MockLeadRepository)
		users := new(MockUserRepository)
		notifier := new(MockNotifier)
		uc := newAssignUseCase(leads, users, notifier)

		users.On("FindByID", ctx, "s1").Return(salesUser("s1"), nil)
		leads.On("FindByID", ctx, leadID1).Return(&entity.Lead{ID: leadID1}, nil)
		leads.On("Assign", ctx, leadID1, "s1", fixedNow).Return(nil)
		notifier.On("PublishLeadAssigned", ctx, mock.Anything).Return(errors.New("broker down"))

		assert.NoError(t, uc.AssignOne(ctx, AssignOneInput{LeadID: leadID1, UserID: "s1"}))
	})

	tests := []struct {
		name    string
		input   AssignOneInput
		setup   func(leads *MockLeadRepository, users *MockUserRepository)
		code    string
		message string
	}{
		{
			name:    "missing fields",
			input:   AssignOneInput{LeadID: leadID1},
			setup:   func(*MockLeadRepository, *MockUserRepository) {},
			code:    CodeValidation,
			message: "leadId and userId required",
		},
		{
			name:  "unknown user",
			input: AssignOneInput{LeadID: leadID1, UserID: "ghost"},
			setup: func(_ *MockLeadRepository, users *MockUserRepository) {
				users.On("FindByID", ctx, "ghost").Return(nil, entity.ErrUserNotFound)
			},
			code:    CodeNotFound,
			message: "Target user not found",
		},
		{
			name:  "admin target",
			input: AssignOneInput{LeadID: leadID1, UserID: "admin-1"},
			setup: func(_ *MockLeadRepository, users *MockUserRepository) {
				users.On("FindByID", ctx, "admin-1").Return(adminUser(), nil)
			},
			code:    CodeNotFound,
			message: "Target user not sales",
		},
		{
			name:  "malformed lead id",
			input: AssignOneInput{LeadID: "123", UserID: "s1"},
			setup: func(_ *MockLeadRepository, users *MockUserRepository) {
				users.On("FindByID", ctx, "s1").Return(salesUser("s1"), nil)
			},
			code:    CodeValidation,
			message: "Invalid leadId",
		},
		{
			name:  "missing lead",
			input: AssignOneInput{LeadID: leadID2, UserID: "s1"},
			setup: func(leads *MockLeadRepository, users *MockUserRepository) {
				users.On("FindByID", ctx, "s1").Return(salesUser("s1"), nil)
				leads.On("FindByID", ctx, leadID2).Return(nil, entity.ErrLeadNotFound)
			},
			code:    CodeNotFound,
			message: "Lead not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leads := new(MockLeadRepository)
			users := new(MockUserRepository)
			tt.setup(leads, users)
			uc := newAssignUseCase(leads, users, nil)

			err := uc.AssignOne(ctx, tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.code, ErrorCode(err))
			assert.Equal(t, tt.message, err.Error())
			leads.AssertNotCalled(t, "Assign", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAssignBulk_AlternatesBetweenUsers(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	users := new(MockUserRepository)
	uc := newAssignUseCase(leads, users, queue.NoopNotifier{})

	a, b := salesUser("a"), salesUser("b")
	users.On("FindByIDs", ctx, []string{"a", "b"}).Return([]*entity.User{b, a}, nil)

	unassigned := []*entity.Lead{{ID: leadID1}, {ID: leadID2}, {ID: leadID3}, {ID: leadID4}, {ID: leadID5}}
	leads.On("FindAll", ctx, entity.LeadFilter{UnassignedOnly: true}).Return(unassigned, nil)
	for i, l := range unassigned {
		to := "a"
		if i%2 == 1 {
			to = "b"
		}
		leads.On("Assign", ctx, l.ID, to, fixedNow).Return(nil).Once()
	}

	out, err := uc.AssignBulk(ctx, AssignBulkInput{UserA: "a", UserB: "b"})
	require.NoError(t, err)
	assert.Equal(t, &AssignBulkOutput{OK: true, Assigned: 5, Total: 5}, out)
	leads.AssertExpectations(t)
}

func TestAssignBulk_ExplicitIDsAndFailures(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	users := new(MockUserRepository)
	uc := newAssignUseCase(leads, users, nil)

	users.On("FindByIDs", ctx, []string{"a", "b"}).Return([]*entity.User{salesUser("a"), salesUser("b")}, nil)
	leads.On("Assign", ctx, leadID3, "a", fixedNow).Return(nil).Once()
	leads.On("Assign", ctx, leadID1, "b", fixedNow).Return(entity.ErrLeadNotFound).Once()
	leads.On("Assign", ctx, leadID2, "a", fixedNow).Return(nil).Once()

	out, err := uc.AssignBulk(ctx, AssignBulkInput{
		UserA:   "a",
		UserB:   "b",
		LeadIDs: []string{leadID3, "garbage", leadID1, leadID2},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Assigned)
	assert.Equal(t, 3, out.Total)
	leads.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	leads.AssertExpectations(t)
}

func TestAssignBulk_ExplicitIDsNotifyWithLeadDetails(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	users := new(MockUserRepository)
	notifier := new(MockNotifier)
	uc := newAssignUseCase(leads, users, notifier)

	a, b := salesUser("a"), salesUser("b")
	users.On("FindByIDs", ctx, []string{"a", "b"}).Return([]*entity.User{a, b}, nil)
	leads.On("Assign", ctx, leadID1, "a", fixedNow).Return(nil).Once()
	leads.On("Assign", ctx, leadID2, "b", fixedNow).Return(nil).Once()

	first := &entity.Lead{ID: leadID1, Name: "Ada Lovelace", Email: "ada@example.com"}
	leads.On("FindByID", ctx, leadID1).Return(first, nil).Once()
	leads.On("FindByID", ctx, leadID2).Return(nil, errors.New("connection reset")).Once()

	notifier.On("PublishLeadAssigned", ctx, queue.LeadAssignedPayload{
		LeadID:     leadID1,
		LeadName:   "Ada Lovelace",
		LeadEmail:  "ada@example.com",
		UserID:     "a",
		UserName:   a.Name,
		UserEmail:  a.Email,
		Mode:       AssignModeBulk,
		AssignedAt: fixedNow,
	}).Return(nil).Once()
	notifier.On("PublishLeadAssigned", ctx, mock.MatchedBy(func(p queue.LeadAssignedPayload) bool {
		return p.LeadID == leadID2 && p.UserID == "b" && p.LeadName == ""
	})).Return(nil).Once()

	out, err := uc.AssignBulk(ctx, AssignBulkInput{UserA: "a", UserB: "b", LeadIDs: []string{leadID1, leadID2}})
	require.NoError(t, err)
	assert.Equal(t, &AssignBulkOutput{OK: true, Assigned: 2, Total: 2}, out)
	leads.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestAssignBulk_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   AssignBulkInput
		setup   func(leads *MockLeadRepository, users *MockUserRepository)
		message string
	}{
		{
			name:    "missing user",
			input:   AssignBulkInput{UserA: "a"},
			setup:   func(*MockLeadRepository, *MockUserRepository) {},
			message: "userA and userB required",
		},
		{
			name:    "same user twice",
			input:   AssignBulkInput{UserA: "a", UserB: " a "},
			setup:   func(*MockLeadRepository, *MockUserRepository) {},
			message: "Choose two different employees",
		},
		{
			name:  "one user is not sales",
			input: AssignBulkInput{UserA: "a", UserB: "admin-1"},
			setup: func(_ *MockLeadRepository, users *MockUserRepository) {
				users.On("FindByIDs", ctx, []string{"a", "admin-1"}).Return([]*entity.User{salesUser("a"), adminUser()}, nil)
			},
			message: "Invalid sales employees",
		},
		{
			name:  "only malformed ids",
			input: AssignBulkInput{UserA: "a", UserB: "b", LeadIDs: []string{"x", "y"}},
			setup: func(_ *MockLeadRepository, users *MockUserRepository) {
				users.On("FindByIDs", ctx, []string{"a", "b"}).Return([]*entity.User{salesUser("a"), salesUser("b")}, nil)
			},
			message: "No target leads to assign",
		},
		{
			name:  "no unassigned leads",
			input: AssignBulkInput{UserA: "a", UserB: "b"},
			setup: func(leads *MockLeadRepository, users *MockUserRepository) {
				users.On("FindByIDs", ctx, []string{"a", "b"}).Return([]*entity.User{salesUser("a"), salesUser("b")}, nil)
				leads.On("FindAll", ctx, entity.LeadFilter{UnassignedOnly: true}).Return([]*entity.Lead{}, nil)
			},
			message: "No target leads to assign",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leads := new(MockLeadRepository)
			users := new(MockUserRepository)
			tt.setup(leads, users)
			uc := newAssignUseCase(leads, users, nil)

			_, err := uc.AssignBulk(ctx, tt.input)
			require.Error(t, err)
			assert.Equal(t, CodeValidation, ErrorCode(err))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}
