package services

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/LautaroGarc/dardito/internal/clock"
	"github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/models"
	"github.com/LautaroGarc/dardito/internal/store"
	"github.com/LautaroGarc/dardito/internal/utils"
)

// AuthService handles authentication business logic: token issuance and
// verification. Tokens are opaque, handed out once in plaintext and stored
// only as bcrypt hashes.
type AuthService struct {
	mutator *store.Mutator
	clock   clock.Clock
}

// NewAuthService creates a new AuthService
func NewAuthService(mutator *store.Mutator, clk clock.Clock) *AuthService {
	return &AuthService{mutator: mutator, clock: clk}
}

// RegisterUserInput represents input for registering a user. Registration is
// a trusted-collaborator path (the chat roster sync), so it carries no actor.
type RegisterUserInput struct {
	ID       string
	Nickname string
	Role     models.Role
	Team     string
}

// RegisterUser creates the user and returns their plaintext token. The
// token is never recoverable afterwards.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterUserInput) (string, error) {
	if strings.TrimSpace(in.ID) == "" || strings.TrimSpace(in.Nickname) == "" {
		return "", errors.InvalidState("user id and nickname are required")
	}
	if !in.Role.IsValid() {
		return "", errors.InvalidState("unknown role %q", in.Role)
	}

	token, err := utils.GenerateToken()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	now := s.clock.Now()

	err = s.mutator.UpdateUsers(ctx, func(doc *models.UsersDocument) error {
		if doc.Users[in.ID] != nil {
			return errors.Conflict("user %s already exists", in.ID)
		}
		if doc.FindByNickname(in.Nickname) != nil {
			return errors.Conflict("nickname %s is already taken", in.Nickname)
		}
		doc.Users[in.ID] = &models.User{
			ID:           in.ID,
			Nickname:     in.Nickname,
			Role:         in.Role,
			Team:         in.Team,
			TokenHash:    string(hash),
			LastActivity: now,
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate resolves a plaintext token to its user. Tokens carry no user
// identifier, so this compares against every stored hash.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, errors.Unauthorized("token is required")
	}
	doc, err := s.mutator.ReadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range doc.Users {
		if bcrypt.CompareHashAndPassword([]byte(u.TokenHash), []byte(token)) == nil {
			return u, nil
		}
	}
	return nil, errors.Unauthorized("invalid token")
}

// GetUser returns the user with the given ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	doc, err := s.mutator.ReadUsers(ctx)
	if err != nil {
		return nil, err
	}
	u := doc.Users[id]
	if u == nil {
		return nil, errors.NotFound("user %s not found", id)
	}
	return u, nil
}

// RegenerateToken replaces the user's token and returns the new plaintext.
// The old token stops working immediately.
func (s *AuthService) RegenerateToken(ctx context.Context, userID string) (string, error) {
	token, err := utils.GenerateToken()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	err = s.mutator.UpdateUsers(ctx, func(doc *models.UsersDocument) error {
		u := doc.Users[userID]
		if u == nil {
			return errors.NotFound("user %s not found", userID)
		}
		u.TokenHash = string(hash)
		return nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}
