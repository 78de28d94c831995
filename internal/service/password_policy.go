package service

import (
	"fmt"
	"unicode"

	"github.com/dujiao-next/storefront/internal/config"

	"golang.org/x/crypto/bcrypt"
)

// passwordPolicyError 携带具体原因，errors.Is 仍可匹配 ErrWeakPassword
type passwordPolicyError struct {
	msg string
}

func (e passwordPolicyError) Error() string { return e.msg }

func (e passwordPolicyError) Is(target error) bool { return target == ErrWeakPassword }

type charClasses struct {
	upper, lower, digit, special bool
}

func classify(password string) charClasses {
	var cc charClasses
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			cc.upper = true
		case unicode.IsLower(r):
			cc.lower = true
		case unicode.IsDigit(r):
			cc.digit = true
		default:
			cc.special = true
		}
	}
	return cc
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return passwordPolicyError{msg: fmt.Sprintf("password must be at least %d characters", policy.MinLength)}
	}
	cc := classify(password)
	rules := []struct {
		required bool
		present  bool
		what     string
	}{
		{policy.RequireUpper, cc.upper, "an uppercase letter"},
		{policy.RequireLower, cc.lower, "a lowercase letter"},
		{policy.RequireNumber, cc.digit, "a number"},
		{policy.RequireSpecial, cc.special, "a special character"},
	}
	for _, rule := range rules {
		if rule.required && !rule.present {
			return passwordPolicyError{msg: "password must contain " + rule.what}
		}
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// replacePassword 校验旧密码与新密码策略后返回新哈希
func replacePassword(policy config.PasswordPolicyConfig, currentHash, oldPassword, newPassword string) (string, error) {
	if !passwordMatches(currentHash, oldPassword) {
		return "", ErrInvalidCredentials
	}
	if err := validatePassword(policy, newPassword); err != nil {
		return "", err
	}
	return hashPassword(newPassword)
}
