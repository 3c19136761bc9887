package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mirrorbrain/internal/domain"
)

// Errores de claim tokens.
var (
	ErrClaimInvalid  = errors.New("claim token invalid")
	ErrClaimExpired  = errors.New("claim token expired")
	ErrClaimRequired = errors.New("claim token required")
)

// ClaimClaims son los claims de un token de propiedad de brain.
type ClaimClaims struct {
	BrainID string `json:"bid"`
	UserID  string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// ClaimTokenService emite y valida tokens que acreditan propiedad de un brain.
// Con secret vacio el servicio queda deshabilitado y no exige tokens.
type ClaimTokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewClaimTokenService crea el servicio con el TTL indicado.
func NewClaimTokenService(secret string, ttl time.Duration) *ClaimTokenService {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &ClaimTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "mirrorbrain",
	}
}

// Enabled indica si el servicio tiene secret configurado.
func (s *ClaimTokenService) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// Generate firma un claim token para el brain; vacio si esta deshabilitado.
func (s *ClaimTokenService) Generate(brainID, userID string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	now := time.Now().UTC()
	claims := ClaimClaims{
		BrainID: brainID,
		UserID:  userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   brainID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse valida un claim token y devuelve sus claims.
func (s *ClaimTokenService) Parse(tokenString string) (ClaimClaims, error) {
	if !s.Enabled() {
		return ClaimClaims{}, ErrClaimInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return ClaimClaims{}, ErrClaimInvalid
	}

	var claims ClaimClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ClaimClaims{}, ErrClaimExpired
		}
		return ClaimClaims{}, ErrClaimInvalid
	}
	if claims.BrainID == "" {
		return ClaimClaims{}, ErrClaimInvalid
	}
	return claims, nil
}

// Authorize verifica que el token habilite mutar el brain dado.
// Brains anonimos siguen abiertos; con owner el token es obligatorio.
func (s *ClaimTokenService) Authorize(brain domain.Brain, tokenString string) error {
	if brain.UserID == "" || !s.Enabled() {
		return nil
	}
	if strings.TrimSpace(tokenString) == "" {
		return ErrClaimRequired
	}
	claims, err := s.Parse(tokenString)
	if err != nil {
		return err
	}
	if claims.BrainID != brain.ID {
		return ErrClaimInvalid
	}
	return nil
}
