package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/studio-lessons-api/internal/dto"
	"github.com/noah-isme/studio-lessons-api/internal/models"
)

const minPasswordLength = 8

type provisionInput struct {
	Email          string
	Password       string
	FullName       string
	PerSessionRate int64
	Currency       string
}

type provisionResult struct {
	Teacher     *models.Teacher
	UserCreated bool
}

type userStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type teacherProfiles interface {
	EnsureProfile(ctx context.Context, userID, displayName string) (*models.Teacher, error)
	Update(ctx context.Context, teacherID string, req dto.UpdateTeacherRequest) (*models.Teacher, error)
}

type transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type provisioner struct {
	users    userStore
	teachers teacherProfiles
	tx       transactor
	hash     func(password []byte, cost int) ([]byte, error)
}

// Provision is idempotent: rerunning it for the same email reuses the login and profile.
func (p *provisioner) Provision(ctx context.Context, in provisionInput) (*provisionResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, errors.New("email is required")
	}
	hash := p.hash
	if hash == nil {
		hash = bcrypt.GenerateFromPassword
	}

	res := &provisionResult{}
	err := p.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := p.users.FindByEmail(ctx, email)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if len(in.Password) < minPasswordLength {
				return fmt.Errorf("password must be at least %d characters", minPasswordLength)
			}
			digest, err := hash([]byte(in.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			user = &models.User{Email: email, PasswordHash: string(digest), FullName: strings.TrimSpace(in.FullName), Active: true}
			if err := p.users.Create(ctx, user); err != nil {
				return err
			}
			res.UserCreated = true
		case err != nil:
			return fmt.Errorf("find user: %w", err)
		}

		teacher, err := p.teachers.EnsureProfile(ctx, user.ID, user.FullName)
		if err != nil {
			return err
		}

		var update dto.UpdateTeacherRequest
		if in.PerSessionRate > 0 {
			update.PerSessionRate = &in.PerSessionRate
		}
		if in.Currency != "" {
			update.Currency = &in.Currency
		}
		if update.PerSessionRate != nil || update.Currency != nil {
			if teacher, err = p.teachers.Update(ctx, teacher.ID, update); err != nil {
				return err
			}
		}
		res.Teacher = teacher
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
