package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caliberhq/question-bank/internal/models"
)

func newUserFixture(t *testing.T) (*fakeStore, UserService) {
	t.Helper()
	store := newFakeStore()
	return store, NewUserService(&fakeUserRepo{store: store}, zerolog.Nop())
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	_, users := newUserFixture(t)
	ctx := context.Background()

	email := "sam@example.edu"
	first, err := users.GetOrCreate(ctx, "user-1", &email)
	require.NoError(t, err)
	assert.Equal(t, "user-1", first.UserID)
	assert.False(t, first.ProfileComplete())

	second, err := users.GetOrCreate(ctx, "user-1", nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestOnboardingSetsNamesAndPendingFlag(t *testing.T) {
	store, users := newUserFixture(t)
	ctx := context.Background()
	store.addUser("user-1", false, false)

	user, err := users.CompleteOnboarding(ctx, "user-1", &models.OnboardingRequest{
		FirstName: "  Sam ",
		LastName:  "Rivera",
		Teacher:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Sam", *user.FirstName)
	assert.Equal(t, "Rivera", *user.LastName)
	assert.True(t, user.ProfileComplete())
	// Requesting instructor access flags the account, it never grants the
	// role directly.
	assert.True(t, user.Pending)
	assert.False(t, user.Teacher)
}

func TestOnboardingRejectedOnceProfileComplete(t *testing.T) {
	store, users := newUserFixture(t)
	ctx := context.Background()
	store.addUser("user-1", false, false)

	_, err := users.CompleteOnboarding(ctx, "user-1", &models.OnboardingRequest{
		FirstName: "Sam",
		LastName:  "Rivera",
	})
	require.NoError(t, err)

	_, err = users.CompleteOnboarding(ctx, "user-1", &models.OnboardingRequest{
		FirstName: "Someone",
		LastName:  "Else",
	})
	assert.ErrorIs(t, err, ErrProfileCompleted)
}

func TestOnboardingRejectsBlankNames(t *testing.T) {
	store, users := newUserFixture(t)
	store.addUser("user-1", false, false)

	_, err := users.CompleteOnboarding(context.Background(), "user-1", &models.OnboardingRequest{
		FirstName: "   ",
		LastName:  "Rivera",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateRolesAdminOnly(t *testing.T) {
	store, users := newUserFixture(t)
	ctx := context.Background()

	nonAdmin := store.addUser("user-1", false, false)
	store.addUser("user-2", false, false)

	_, err := users.UpdateRoles(ctx, nonAdmin, "user-2", &models.UpdateRolesRequest{
		Teacher: boolPtr(true),
	})
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestUpdateRolesTeacherAndPendingAreExclusive(t *testing.T) {
	store, users := newUserFixture(t)
	ctx := context.Background()

	admin := store.addUser("admin-1", false, true)
	target := store.addUser("user-1", false, false)
	target.Pending = true
	store.users["user-1"] = target

	// Approving the instructor role clears the pending flag.
	user, err := users.UpdateRoles(ctx, admin, "user-1", &models.UpdateRolesRequest{
		Teacher: boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, user.Teacher)
	assert.False(t, user.Pending)

	// Re-flagging as pending demotes the account.
	user, err = users.UpdateRoles(ctx, admin, "user-1", &models.UpdateRolesRequest{
		Pending: boolPtr(true),
	})
	require.NoError(t, err)
	assert.False(t, user.Teacher)
	assert.True(t, user.Pending)
}

func TestUpdateRolesCreatesMissingTarget(t *testing.T) {
	store, users := newUserFixture(t)
	admin := store.addUser("admin-1", false, true)

	user, err := users.UpdateRoles(context.Background(), admin, "new-user", &models.UpdateRolesRequest{
		Admin: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "new-user", user.UserID)
	assert.True(t, user.Admin)
}

func TestUpdatePreferences(t *testing.T) {
	store, users := newUserFixture(t)
	store.addUser("user-1", false, false)

	user, err := users.UpdatePreferences(context.Background(), "user-1", &models.UpdatePreferencesRequest{
		IconShape: strPtr("hex"),
		IconColor: strPtr("#22c55e"),
		Initials:  strPtr(" sr "),
	})
	require.NoError(t, err)
	assert.Equal(t, "hex", user.IconShape)
	assert.Equal(t, "#22c55e", user.IconColor)
	require.NotNil(t, user.Initials)
	assert.Equal(t, "SR", *user.Initials)
}
