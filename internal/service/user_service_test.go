package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studio-lessons-api/internal/dto"
	"github.com/noah-isme/studio-lessons-api/internal/models"
	"github.com/noah-isme/studio-lessons-api/internal/repository"
	appErrors "github.com/noah-isme/studio-lessons-api/pkg/errors"
)

type mockUserRepo struct {
	users     map[string]*models.User
	updateErr error
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) ExistsByEmail(_ context.Context, email, excludeID string) (bool, error) {
	for id, u := range m.users {
		if id != excludeID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, user *models.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func newUserFixture() (*UserService, *mockUserRepo) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Email: "minh@example.com", FullName: "Minh"},
		"u2": {ID: "u2", Email: "lan@example.com", FullName: "Lan"},
	}}
	return NewUserService(repo, nil, nil), repo
}

func TestUserServiceUpdateMe(t *testing.T) {
	svc, repo := newUserFixture()

	user, err := svc.UpdateMe(context.Background(), "u1", dto.UpdateMeRequest{Email: strPtr("minh.tran@example.com"), FullName: strPtr("Minh Tran")})
	require.NoError(t, err)
	assert.Equal(t, "minh.tran@example.com", user.Email)
	assert.Equal(t, "Minh Tran", repo.users["u1"].FullName)

	// Changing only the case of one's own email is not a conflict.
	_, err = svc.UpdateMe(context.Background(), "u2", dto.UpdateMeRequest{Email: strPtr("LAN@example.com")})
	require.NoError(t, err)
}

func TestUserServiceUpdateMeConflict(t *testing.T) {
	svc, repo := newUserFixture()

	_, err := svc.UpdateMe(context.Background(), "u1", dto.UpdateMeRequest{Email: strPtr("LAN@example.com")})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrConflict.Code))
	assert.Equal(t, "minh@example.com", repo.users["u1"].Email)

	repo.updateErr = repository.ErrDuplicateEmail
	_, err = svc.UpdateMe(context.Background(), "u1", dto.UpdateMeRequest{Email: strPtr("raced@example.com")})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrConflict.Code))
}

func TestUserServiceMe(t *testing.T) {
	svc, _ := newUserFixture()
	_, err := svc.Me(context.Background(), "missing")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))

	_, err = svc.UpdateMe(context.Background(), "u1", dto.UpdateMeRequest{Email: strPtr("nope")})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}
