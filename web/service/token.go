package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storerate/storerate/database/model"
	"github.com/storerate/storerate/util/common"
)

// Claims carries only identity and role; mutable profile fields are read
// from the database when needed.
type Claims struct {
	Id   int        `json:"id"`
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the user that expires after the configured TTL.
func (s *TokenService) Issue(userId int, role model.Role) (string, error) {
	now := s.now()
	claims := Claims{
		Id:   userId,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userId),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature and expiry. It fails with common.ErrTokenExpired
// or common.ErrInvalidToken.
func (s *TokenService) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, &common.AppError{Kind: common.KindAuthentication, Msg: common.ErrInvalidToken.Msg, Err: err}
	}
	if !parsed.Valid || claims.Id <= 0 || !claims.Role.Valid() {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// Refresh exchanges a valid, unexpired token for a fresh one with the same
// identity and role. The password is not re-checked.
func (s *TokenService) Refresh(token string) (string, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return "", err
	}
	return s.Issue(claims.Id, claims.Role)
}
