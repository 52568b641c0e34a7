package cryptox

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/vaultshare/internal/common"
)

type PolicyRule string

const (
	RuleMinLength PolicyRule = "min_length"
	RuleUpper     PolicyRule = "uppercase"
	RuleLower     PolicyRule = "lowercase"
	RuleDigit     PolicyRule = "digit"
	RuleSymbol    PolicyRule = "symbol"
)

// PasswordPolicy is applied to account and share passwords. Each character
// class requirement can be switched off on its own.
type PasswordPolicy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:    8,
		RequireUpper: true,
		RequireLower: true,
		RequireDigit: true,
	}
}

// PolicyError lists every rule a password broke. It matches
// common.ErrValidation.
type PolicyError struct {
	Violations []PolicyRule
	MinLength  int
}

func (e *PolicyError) Messages() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		switch v {
		case RuleMinLength:
			out = append(out, fmt.Sprintf("password must be at least %d characters long", e.MinLength))
		case RuleUpper:
			out = append(out, "password must contain at least one uppercase letter")
		case RuleLower:
			out = append(out, "password must contain at least one lowercase letter")
		case RuleDigit:
			out = append(out, "password must contain at least one digit")
		case RuleSymbol:
			out = append(out, "password must contain at least one special character")
		}
	}
	return out
}

func (e *PolicyError) Error() string {
	return "password policy: " + strings.Join(e.Messages(), "; ")
}

func (e *PolicyError) Unwrap() error { return common.ErrValidation }

func (e *PolicyError) Has(rule PolicyRule) bool {
	for _, v := range e.Violations {
		if v == rule {
			return true
		}
	}
	return false
}

// Validate returns nil or a *PolicyError. Length is counted in characters,
// not bytes.
func (p PasswordPolicy) Validate(password string) error {
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}

	var violations []PolicyRule
	if utf8.RuneCountInString(password) < p.MinLength {
		violations = append(violations, RuleMinLength)
	}
	if p.RequireUpper && !upper {
		violations = append(violations, RuleUpper)
	}
	if p.RequireLower && !lower {
		violations = append(violations, RuleLower)
	}
	if p.RequireDigit && !digit {
		violations = append(violations, RuleDigit)
	}
	if p.RequireSymbol && !symbol {
		violations = append(violations, RuleSymbol)
	}
	if len(violations) == 0 {
		return nil
	}
	return &PolicyError{Violations: violations, MinLength: p.MinLength}
}
