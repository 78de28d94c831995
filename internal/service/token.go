package service

import (
	"errors"
	"time"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTLHours = 72

var hs256Parser = jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

// JWTClaims 管理员令牌声明
type JWTClaims struct {
	AdminID  uint   `json:"admin_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// UserJWTClaims 顾客令牌声明
type UserJWTClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func tokenTTL(cfg config.JWTConfig) time.Duration {
	hours := cfg.ExpireHours
	if hours <= 0 {
		hours = defaultTokenTTLHours
	}
	return time.Duration(hours) * time.Hour
}

func registeredClaims(now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
}

func signHS256(claims jwt.Claims, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// parseHS256 过期令牌映射为 ErrTokenExpired，其余失败统一为 ErrInvalidToken
func parseHS256[C jwt.Claims](raw, secret string, claims C) (C, error) {
	token, err := hs256Parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return claims, ErrTokenExpired
	case err != nil || !token.Valid:
		return claims, ErrInvalidToken
	}
	return claims, nil
}

// IssueAdminToken 签发管理员令牌
func IssueAdminToken(cfg config.JWTConfig, admin *models.Admin, now time.Time) (string, time.Time, error) {
	claims := JWTClaims{
		AdminID:          admin.ID,
		Username:         admin.Username,
		Role:             admin.Role,
		RegisteredClaims: registeredClaims(now, tokenTTL(cfg)),
	}
	token, err := signHS256(claims, cfg.SecretKey)
	return token, claims.ExpiresAt.Time, err
}

// IssueUserToken 签发顾客令牌
func IssueUserToken(cfg config.JWTConfig, user *models.User, now time.Time) (string, time.Time, error) {
	claims := UserJWTClaims{
		UserID:           user.ID,
		Email:            user.Email,
		RegisteredClaims: registeredClaims(now, tokenTTL(cfg)),
	}
	token, err := signHS256(claims, cfg.SecretKey)
	return token, claims.ExpiresAt.Time, err
}

// ParseAdminToken 校验管理员令牌，AdminID 缺失视为无效
func ParseAdminToken(raw, secret string) (*JWTClaims, error) {
	claims, err := parseHS256(raw, secret, &JWTClaims{})
	if err != nil {
		return nil, err
	}
	if claims.AdminID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseUserToken 校验顾客令牌，UserID 缺失视为无效
func ParseUserToken(raw, secret string) (*UserJWTClaims, error) {
	claims, err := parseHS256(raw, secret, &UserJWTClaims{})
	if err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
