package token

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"HoursGuard/config"
)

const (
	IdentityKey = "uid"
	typeRefresh = "refresh"
)

var (
	ErrUnexpectedSigningMethod = errors.New("unexpected signing method")
	ErrInvalidToken            = errors.New("invalid token")
	ErrInvalidTokenType        = errors.New("token is not a refresh token")
	ErrIdentityMissing         = errors.New("token carries no device id")
)

// Pair access token 与 refresh token
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // 秒
}

// Issuer 签发和校验设备令牌，HS256
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func FromConfig(cfg *config.Config) *Issuer {
	return NewIssuer(cfg.JWTSecret,
		time.Duration(cfg.JWTExpireMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshDays)*24*time.Hour,
	)
}

// Secret 供鉴权中间件使用
func (i *Issuer) Secret() []byte {
	return i.secret
}

func (i *Issuer) AccessTTL() time.Duration {
	return i.accessTTL
}

// Issue 为设备签发一对令牌
func (i *Issuer) Issue(deviceID string) (Pair, error) {
	now := i.now()
	expiresAt := now.Add(i.accessTTL)

	accessToken, err := i.sign(jwtv5.MapClaims{
		IdentityKey: deviceID,
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
	})
	if err != nil {
		return Pair{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := i.sign(jwtv5.MapClaims{
		IdentityKey: deviceID,
		"iat":       now.Unix(),
		"type":      typeRefresh,
		"exp":       now.Add(i.refreshTTL).Unix(),
	})
	if err != nil {
		return Pair{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return Pair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(i.accessTTL.Seconds()),
	}, nil
}

func (i *Issuer) sign(claims jwtv5.MapClaims) (string, error) {
	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(i.secret)
}

// ValidateRefreshToken 校验 refresh token 并返回设备 ID
func (i *Issuer) ValidateRefreshToken(tokenString string) (string, error) {
	tok, err := jwtv5.Parse(tokenString, func(t *jwtv5.Token) (interface{}, error) {
		if t.Method != jwtv5.SigningMethodHS256 {
			return nil, fmt.Errorf("%w: %v, expected HS256", ErrUnexpectedSigningMethod, t.Header["alg"])
		}
		return i.secret, nil
	}, jwtv5.WithTimeFunc(i.now))
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !tok.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if typ, _ := claims["type"].(string); typ != typeRefresh {
		return "", ErrInvalidTokenType
	}

	uid, ok := claims[IdentityKey].(string)
	if !ok || uid == "" {
		return "", ErrIdentityMissing
	}
	return uid, nil
}
