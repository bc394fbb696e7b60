package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shivanand-hulikatti/event-checkin/internal/clock"
	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	"github.com/Shivanand-hulikatti/event-checkin/internal/repository"
	"github.com/Shivanand-hulikatti/event-checkin/internal/timing"
)

// sessionClaims are carried by the token issued at login.
type sessionClaims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Principal *model.Principal
	Token     string
	ExpiresAt time.Time
}

// AuthService authenticates principals and resolves per-request identity.
type AuthService struct {
	identities IdentityStore
	events     EventStore
	projector  *timing.Projector
	clock      clock.Clock
	secret     []byte
	ttl        time.Duration
	logger     *slog.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	identities IdentityStore,
	events EventStore,
	projector *timing.Projector,
	c clock.Clock,
	secret string,
	ttl time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		identities: identities,
		events:     events,
		projector:  projector,
		clock:      c,
		secret:     []byte(secret),
		ttl:        ttl,
		logger:     logger,
	}
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Login checks the credentials against admins first, then coordinators,
// and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, required("email")
	}
	if password == "" {
		return nil, required("password")
	}

	principal, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.IssueToken(principal)
	if err != nil {
		return nil, err
	}
	s.logger.Info("login", "email", principal.Email, "role", principal.Role)
	return &LoginResult{Principal: principal, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*model.Principal, error) {
	admin, err := s.identities.FindAdmin(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("login: %w", err)
	}
	if admin != nil && passwordMatches(admin.PasswordHash, password) {
		return admin, nil
	}

	coordinator, err := s.identities.FindCoordinator(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("login: %w", err)
	}
	if coordinator != nil && passwordMatches(coordinator.PasswordHash, password) {
		return coordinator, nil
	}

	s.logger.Warn("login rejected", "email", email)
	return nil, ErrInvalidCredentials
}

// IssueToken signs an HS256 session token for p.
func (s *AuthService) IssueToken(p *model.Principal) (string, time.Time, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.ttl)
	claims := sessionClaims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ResolveToken validates a session token and resolves its subject in
// the store named by its role claim.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*model.Principal, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthenticated
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	// The role claim selects the store; a token never resolves to a
	// principal of a different kind than the one it was issued for.
	email := normalizeEmail(claims.Subject)
	var p *model.Principal
	switch claims.Role {
	case model.RoleAdmin:
		p, err = s.identities.FindAdmin(ctx, email)
	case model.RoleCoordinator:
		p, err = s.identities.FindCoordinator(ctx, email)
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrUnauthenticated, claims.Role)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}
	return p, nil
}

// ResolveIdentity looks the email up as an admin, then as a coordinator.
// No credential is checked on this path.
func (s *AuthService) ResolveIdentity(ctx context.Context, email string) (*model.Principal, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrUnauthenticated
	}

	admin, err := s.identities.FindAdmin(ctx, email)
	if err == nil {
		return admin, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	coordinator, err := s.identities.FindCoordinator(ctx, email)
	if err == nil {
		return coordinator, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	return nil, ErrUnauthenticated
}

// Profile returns the principal detail. Coordinators get their assigned
// events expanded.
func (s *AuthService) Profile(ctx context.Context, p *model.Principal) (*model.Profile, error) {
	profile := &model.Profile{Principal: *p}
	if p.IsAdmin() || len(p.AssignedEventIDs) == 0 {
		return profile, nil
	}
	events, err := s.events.ListByIDs(ctx, p.AssignedEventIDs)
	if err != nil {
		return nil, fmt.Errorf("profile events: %w", err)
	}
	for i := range events {
		s.projector.Event(&events[i])
	}
	profile.AssignedEvents = events
	return profile, nil
}

// ProvisionCoordinator creates a coordinator with a hashed credential.
// An email already held by an admin or coordinator is ErrCoordinatorExists.
func (s *AuthService) ProvisionCoordinator(ctx context.Context, req model.CreateCoordinatorRequest) (*model.Principal, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	switch {
	case email == "":
		return nil, required("email")
	case !isValidEmail(email):
		return nil, &FieldError{Field: "email", Reason: "is not a valid email address"}
	case name == "":
		return nil, required("name")
	case len(req.Password) < 8:
		return nil, &FieldError{Field: "password", Reason: "must be at least 8 characters"}
	}

	// Admins and coordinators share one email namespace.
	if _, err := s.identities.FindAdmin(ctx, email); err == nil {
		return nil, ErrCoordinatorExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("provision coordinator: %w", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	p := &model.Principal{
		Email:            email,
		Name:             name,
		Role:             model.RoleCoordinator,
		AssignedEventIDs: dedupe(req.AssignedEventIDs),
		PasswordHash:     hash,
	}
	if err := s.identities.CreateCoordinator(ctx, p); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrCoordinatorExists
		case errors.Is(err, repository.ErrUnknownReference):
			return nil, ErrUnknownAssignedEvent
		}
		return nil, fmt.Errorf("provision coordinator: %w", err)
	}
	s.logger.Info("coordinator provisioned", "email", p.Email, "events", p.AssignedEventIDs)
	return p, nil
}

// SetAssignments replaces a coordinator's assignment set.
func (s *AuthService) SetAssignments(ctx context.Context, email string, eventIDs []string) (*model.Principal, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, required("email")
	}
	if err := s.identities.SetAssignments(ctx, email, dedupe(eventIDs)); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCoordinatorNotFound
		case errors.Is(err, repository.ErrUnknownReference):
			return nil, ErrUnknownAssignedEvent
		}
		return nil, fmt.Errorf("set assignments: %w", err)
	}
	p, err := s.identities.FindCoordinator(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("reload coordinator: %w", err)
	}
	s.logger.Info("assignments replaced", "email", email, "events", p.AssignedEventIDs)
	return p, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
