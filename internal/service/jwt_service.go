package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"blog-api/internal/domain"
)

// TokenTTL es la vida absoluta de un bearer token desde su emisión.
const TokenTTL = time.Hour

const defaultIssuer = "blog-api"

var (
	ErrMissingSigningKey = errors.New("token signing key not configured")
	ErrInvalidToken      = errors.New("token invalid")
	ErrTokenExpired      = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// Claims es el contenido firmado de un bearer token.
type Claims struct {
	UserID string      `json:"userId"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService emite y valida bearer tokens HS256 con (accountId, role).
// No consulta la base de datos: el rol vale tal como se firmó hasta que el token expira.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService falla con ErrMissingSigningKey si el secreto está vacío;
// el llamador debe tratarlo como error de arranque.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSigningKey
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = defaultIssuer
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// Mint firma un token para la cuenta con el rol dado.
func (s *TokenService) Mint(accountID string, role domain.Role) (string, error) {
	if s == nil || len(s.secret) == 0 {
		return "", ErrMissingSigningKey
	}
	if strings.TrimSpace(accountID) == "" || !role.Valid() {
		return "", ErrInvalidToken
	}
	now := s.now().UTC()
	claims := Claims{
		UserID: accountID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify valida firma, formato y expiración, y devuelve los claims tal como se emitieron.
func (s *TokenService) Verify(tokenString string) (Claims, error) {
	if s == nil || len(s.secret) == 0 {
		return Claims{}, ErrMissingSigningKey
	}
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrInvalidToken
	}
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return Claims{}, err
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) parseToken(tokenString string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	if !claims.Role.Valid() {
		return false
	}
	return claims.Issuer == s.issuer
}
