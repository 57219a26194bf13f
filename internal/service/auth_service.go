package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-planner/internal/apperr"
	"github.com/iliyamo/event-planner/internal/appctx"
	"github.com/iliyamo/event-planner/internal/metrics"
	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/queue"
	"github.com/iliyamo/event-planner/internal/repository"
	"github.com/iliyamo/event-planner/internal/token"
	"github.com/iliyamo/event-planner/internal/utils"
)

// ActivationSubmitter hands a first-login activation job to the
// background executor. The queue.Publisher implements it; tests plug
// in fakes.
type ActivationSubmitter interface {
	PublishUserActivation(ctx context.Context, job queue.UserActivationJob) error
}

// TokenPair bundles a freshly issued access/refresh token set.
// ExpiresIn reports the access token lifetime in minutes, mirroring
// what clients receive.
type TokenPair struct {
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
	ExpiresIn    int
}

// LoginResult is what a successful login or refresh returns.
type LoginResult struct {
	User   *model.User
	Tokens TokenPair
}

// RegisterInput carries the registration fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthService orchestrates the session lifecycle: registration,
// login with the first-login group bootstrap, token refresh and
// per-request credential resolution. Construct it once at startup and
// inject it wherever a session check is needed; there is no ambient
// global instance.
type AuthService struct {
	users      repository.UserRepository
	groups     repository.GroupRepository
	tx         repository.TxRunner
	codec      *token.Codec
	jobs       ActivationSubmitter
	stats      *metrics.Collector
	bcryptCost int
}

// NewAuthService wires the session service. jobs may be a disabled
// publisher; the bootstrap then promotes users synchronously.
func NewAuthService(
	users repository.UserRepository,
	groups repository.GroupRepository,
	tx repository.TxRunner,
	codec *token.Codec,
	jobs ActivationSubmitter,
	stats *metrics.Collector,
	bcryptCost int,
) *AuthService {
	return &AuthService{
		users:      users,
		groups:     groups,
		tx:         tx,
		codec:      codec,
		jobs:       jobs,
		stats:      stats,
		bcryptCost: bcryptCost,
	}
}

// Register validates the input, rejects duplicate emails among
// non-deleted users and persists a new PENDING user.
func (s *AuthService) Register(ctx context.Context, actx appctx.Context, in RegisterInput) (*model.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" {
		return nil, apperr.New(apperr.KindMissingField, "email is required")
	}
	if in.Password == "" {
		return nil, apperr.New(apperr.KindMissingField, "password is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.New(apperr.KindMissingField, "name is required")
	}
	if !utils.ValidPassword(in.Password) {
		return nil, apperr.New(apperr.KindValidation, "password must be at least 8 characters with a letter and a digit")
	}

	var created *model.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.users.Get(ctx, repository.UserQuery{Email: in.Email})
		if err != nil {
			return apperr.Internal(err)
		}
		if existing != nil {
			return apperr.New(apperr.KindEmailAlreadyExists, "email already exists")
		}

		hash, err := utils.HashPassword(in.Password, s.bcryptCost)
		if err != nil {
			return apperr.Internal(err)
		}
		u := &model.User{
			ID:           uuid.New(),
			Name:         strings.TrimSpace(in.Name),
			Email:        in.Email,
			PasswordHash: hash,
			Status:       model.UserStatusPending,
		}
		if err := s.users.Create(ctx, u); err != nil {
			// A concurrent register can slip past the existence check
			// above; the unique index reports it instead.
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.New(apperr.KindEmailAlreadyExists, "email already exists")
			}
			return apperr.Internal(err)
		}
		// Read the row back so timestamps come from the database.
		created, err = s.users.Get(ctx, repository.UserQuery{ID: &u.ID})
		if err != nil {
			return apperr.Internal(err)
		}
		if created == nil {
			created = u
		}
		return nil
	})
	if err != nil {
		actx.Errorf("register failed: %v", err)
		return nil, err
	}
	s.stats.RecordRegistration()
	actx.Infof("user %s registered", created.ID)
	return created, nil
}

// Login verifies the credentials and issues an access/refresh pair.
// On a user's first login it synchronously creates their default
// group and membership, then submits an idempotent activation job to
// promote the user to ACTIVE off the request path. If the broker is
// unreachable the promotion is applied synchronously instead, so the
// inconsistency window stays bounded.
func (s *AuthService) Login(ctx context.Context, actx appctx.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.New(apperr.KindMissingField, "email and password are required")
	}

	user, err := s.users.Get(ctx, repository.UserQuery{Email: email})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.New(apperr.KindUserNotFound, "the user with this email does not exist")
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return nil, apperr.New(apperr.KindInvalidCredentials, "invalid password")
	}

	if user.Status == model.UserStatusPending {
		if err := s.bootstrapFirstLogin(ctx, actx, user); err != nil {
			return nil, err
		}
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		actx.Errorf("token issuance failed: %v", err)
		return nil, apperr.Internal(err)
	}
	s.stats.RecordLogin()
	actx.Infof("user %s logged in", user.ID)
	return &LoginResult{User: user, Tokens: tokens}, nil
}

// bootstrapFirstLogin creates the default group and membership inside
// one transaction, then hands the ACTIVE promotion to the job queue.
// The group must exist before login returns; the promotion may lag.
func (s *AuthService) bootstrapFirstLogin(ctx context.Context, actx appctx.Context, user *model.User) error {
	var group *model.Group
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		name := fmt.Sprintf("%s's Group", user.Name)
		existing, err := s.groups.Get(ctx, repository.GroupQuery{Name: name})
		if err != nil {
			return apperr.Internal(err)
		}
		if existing != nil {
			// Group names are globally unique; disambiguate with a
			// slice of the user id.
			name = fmt.Sprintf("%s-%s", name, user.ID.String()[:8])
		}
		group = &model.Group{
			ID:      uuid.New(),
			Name:    name,
			OwnerID: user.ID,
		}
		if err := s.groups.Create(ctx, group); err != nil {
			if !errors.Is(err, repository.ErrDuplicate) {
				return apperr.Internal(err)
			}
			// Lost the insert race for the name. When the holder is a
			// group this user already owns (an earlier bootstrap of a
			// still-PENDING account), reuse it instead of failing the
			// login.
			winner, gerr := s.groups.Get(ctx, repository.GroupQuery{Name: name})
			if gerr != nil {
				return apperr.Internal(gerr)
			}
			if winner == nil || winner.OwnerID != user.ID {
				return apperr.New(apperr.KindGroupNameExists, "a group with this name already exists")
			}
			group = winner
		}
		if err := s.groups.AddMember(ctx, group.ID, user.ID); err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		actx.Errorf("first-login bootstrap failed: %v", err)
		return err
	}

	job := queue.UserActivationJob{
		UserID:      user.ID.String(),
		GroupID:     group.ID.String(),
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.jobs.PublishUserActivation(ctx, job); err != nil {
		// No broker; keep the window bounded by promoting in-line.
		actx.Errorf("activation job submit failed, applying synchronously: %v", err)
		if err := s.users.Activate(ctx, user.ID, group.ID); err != nil {
			return apperr.Internal(err)
		}
		user.Status = model.UserStatusActive
		user.ActiveGroupID = &group.ID
	}
	s.stats.RecordUserActivated()
	actx.Infof("default group %q created for user %s", group.Name, user.ID)
	return nil
}

// Refresh validates a refresh token and issues a fresh pair. Refresh
// tokens are not rotated or revoked server-side: the same refresh
// token keeps yielding new access tokens until it expires.
func (s *AuthService) Refresh(ctx context.Context, actx appctx.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		switch err {
		case token.ErrExpired:
			return nil, apperr.New(apperr.KindTokenExpired, "token expired")
		default:
			return nil, apperr.New(apperr.KindInvalidToken, "invalid refresh token")
		}
	}
	if claims.Type != token.TypeRefresh {
		return nil, apperr.New(apperr.KindWrongTokenType, "invalid token type")
	}

	user, err := s.users.Get(ctx, repository.UserQuery{ID: &claims.UserID})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.New(apperr.KindUserNotFound, "user not found")
	}
	// Defensive re-check against the wall clock; the codec already
	// rejects expired tokens.
	if time.Now().UTC().After(claims.ExpiresAt) {
		return nil, apperr.New(apperr.KindTokenExpired, "token expired")
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		actx.Errorf("token issuance failed: %v", err)
		return nil, apperr.Internal(err)
	}
	actx.Infof("tokens refreshed for user %s", user.ID)
	return &LoginResult{User: user, Tokens: tokens}, nil
}

// CurrentUser resolves an access token into a request-scoped
// credential. Every failure mode (codec rejection, wrong token type,
// expiry, missing user) surfaces as Unauthorized.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (model.Credential, error) {
	claims, err := s.codec.Decode(accessToken)
	if err != nil {
		return model.Credential{}, apperr.New(apperr.KindUnauthorized, "unauthorized")
	}
	if claims.Type != token.TypeAccess {
		return model.Credential{}, apperr.New(apperr.KindUnauthorized, "unauthorized")
	}
	if time.Now().UTC().After(claims.ExpiresAt) {
		return model.Credential{}, apperr.New(apperr.KindUnauthorized, "unauthorized")
	}
	user, err := s.users.Get(ctx, repository.UserQuery{ID: &claims.UserID})
	if err != nil {
		return model.Credential{}, apperr.Internal(err)
	}
	if user == nil {
		return model.Credential{}, apperr.New(apperr.KindUnauthorized, "unauthorized")
	}
	return model.Credential{
		ID:        user.ID,
		Email:     user.Email,
		IsPending: user.Status == model.UserStatusPending,
	}, nil
}

// generateTokens issues the access/refresh pair for a user from a
// single wall-clock reading.
func (s *AuthService) generateTokens(user *model.User) (TokenPair, error) {
	now := time.Now().UTC()
	access, accessExp, err := s.codec.Issue(user.ID, user.Email, token.TypeAccess, now)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := s.codec.Issue(user.ID, user.Email, token.TypeRefresh, now)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		AccessExp:    accessExp,
		RefreshToken: refresh,
		RefreshExp:   refreshExp,
		ExpiresIn:    int(s.codec.AccessTTL() / time.Minute),
	}, nil
}
