package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"attendance-tracker/internal/config"
)

// Roles carried in tokens.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Token types. Only access tokens open protected routes.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	AccessExp    time.Time `json:"access_expires_at"`
	RefreshExp   time.Time `json:"refresh_expires_at"`
}

// Claims represents JWT payload. Subject is the teacher or student row id.
type Claims struct {
	Role string `json:"role"`
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 tokens.
type Signer struct {
	issuer     string
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewSigner builds a signer from the auth config.
func NewSigner(cfg config.AuthConfig) *Signer {
	accessTTL, refreshTTL := cfg.AccessTTL.Duration, cfg.RefreshTTL.Duration
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * time.Hour
	}
	return &Signer{
		issuer:     cfg.JWTIssuer,
		key:        []byte(cfg.JWTSigningKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue issues signed access and refresh tokens.
func (s *Signer) Issue(subject, role string) (TokenPair, error) {
	now := s.now()
	accessExp := now.Add(s.accessTTL)
	refreshExp := now.Add(s.refreshTTL)

	accessToken, err := s.sign(subject, role, TypeAccess, now, accessExp)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, err := s.sign(subject, role, TypeRefresh, now, refreshExp)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

func (s *Signer) sign(subject, role, typ string, now, exp time.Time) (string, error) {
	claims := Claims{
		Role: role,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Parse validates a token of the wanted type and returns its claims.
func (s *Signer) Parse(tokenStr, wantType string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	}, opts...)
	if err != nil {
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Type != wantType {
		return Claims{}, errors.Join(ErrInvalidToken, errors.New("unexpected token type"))
	}
	if claims.Role != RoleTeacher && claims.Role != RoleStudent {
		return Claims{}, errors.Join(ErrInvalidToken, errors.New("unknown role"))
	}
	return *claims, nil
}

// Refresh trades a refresh token for a new pair bound to the same identity.
func (s *Signer) Refresh(refreshToken string) (TokenPair, Claims, error) {
	claims, err := s.Parse(refreshToken, TypeRefresh)
	if err != nil {
		return TokenPair{}, Claims{}, err
	}
	pair, err := s.Issue(claims.Subject, claims.Role)
	return pair, claims, err
}
