package crew

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrMissingFields is returned when a registration or login request
	// omits a required field.
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidCredentials covers both an unknown crew name and a wrong
	// password; callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid crew name or password")
)

// tokenTTL is the lifetime of an issued session token, roughly one shift.
const tokenTTL = 12 * time.Hour

// CaseCounter reports the number of stored cases for the metrics endpoint.
// Satisfied by dispatch.Repository.
type CaseCounter interface {
	Count(ctx context.Context) (int, error)
}

type RegisterInput struct {
	CrewName     string
	Password     string
	HospitalName string
	HospitalID   string
}

// Metrics are the operational counts exposed for monitoring.
type Metrics struct {
	CrewCount int
	CaseCount int
}

type Service struct {
	repo      Repository
	cases     CaseCounter
	jwtSecret []byte
	now       func() time.Time
}

func NewService(repo Repository, cases CaseCounter, jwtSecret []byte) *Service {
	return &Service{repo: repo, cases: cases, jwtSecret: jwtSecret, now: time.Now}
}

// Register stores a new crew member with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	if in.CrewName == "" || in.Password == "" || in.HospitalName == "" || in.HospitalID == "" {
		return ErrMissingFields
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.Create(ctx, &Crew{
		CrewName:     in.CrewName,
		PasswordHash: string(hash),
		HospitalName: in.HospitalName,
		HospitalID:   in.HospitalID,
	})
}

// Login verifies credentials and issues a signed session token.
func (s *Service) Login(ctx context.Context, crewName, password string) (string, error) {
	if crewName == "" || password == "" {
		return "", ErrMissingFields
	}
	c, err := s.repo.GetByName(ctx, crewName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   c.CrewName,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// VerifyToken parses a session token and returns the crew name it was
// issued to.
func (s *Service) VerifyToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// Metrics returns the crew and case counts.
func (s *Service) Metrics(ctx context.Context) (*Metrics, error) {
	crewCount, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count crew: %w", err)
	}
	caseCount, err := s.cases.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count cases: %w", err)
	}
	return &Metrics{CrewCount: crewCount, CaseCount: caseCount}, nil
}
