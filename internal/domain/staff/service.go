package staff

import (
	"context"
	"fmt"
	"strings"

	"github.com/medrec/medrec/internal/platform/auth"
)

const minPasswordLength = 8

type Service struct {
	repo       Repository
	bcryptCost int
}

func NewService(repo Repository, bcryptCost int) *Service {
	return &Service{repo: repo, bcryptCost: bcryptCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create provisions a staff account. There is no self-registration; this is
// reached only from the seed command and operator tooling.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Account, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	email := normalizeEmail(req.Email)
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is malformed", ErrInvalid)
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalid, minPasswordLength)
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	a := &Account{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// VerifyCredentials checks a staff login. As with patients, unknown email
// and wrong password collapse into the same failure.
func (s *Service) VerifyCredentials(ctx context.Context, email, password string) (*Account, error) {
	a, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		auth.CheckPassword("", password)
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}
