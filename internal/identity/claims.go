package identity

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrNoSubject   = errors.New("token has no subject claim")
	ErrBadIssuer   = errors.New("token issuer mismatch")
	ErrBadAudience = errors.New("token audience mismatch")
	ErrNoOrg       = errors.New("no valid organization id resolved")
)

// ClaimRules configures claim validation. Issuer and Audience are only
// enforced when non-empty; DefaultOrgID, when set, pins every caller to a
// single organization regardless of claims.
type ClaimRules struct {
	Issuer       string
	Audience     string
	DefaultOrgID string
}

// FromClaims maps verified JWT claims to an Identity. Signature and expiry
// are already checked by the JWT middleware; this enforces issuer, audience,
// subject presence, organization resolution, and role derivation.
func FromClaims(claims jwt.MapClaims, rules ClaimRules) (Identity, error) {
	if rules.Issuer != "" {
		iss, _ := claims.GetIssuer()
		if iss != rules.Issuer {
			return Identity{}, ErrBadIssuer
		}
	}
	if rules.Audience != "" {
		aud, _ := claims.GetAudience()
		if !containsAudience(aud, rules.Audience) {
			return Identity{}, ErrBadAudience
		}
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return Identity{}, ErrNoSubject
	}

	orgID, err := resolveOrg(claims, rules.DefaultOrgID)
	if err != nil {
		return Identity{}, err
	}

	email, _ := claims["email"].(string)

	return Identity{
		Subject: sub,
		Email:   email,
		Role:    roleFromClaims(claims),
		OrgID:   orgID,
	}, nil
}

// resolveOrg picks the first valid UUID from: configured default, org_id
// claim, tenant_id claim.
func resolveOrg(claims jwt.MapClaims, defaultOrgID string) (uuid.UUID, error) {
	for _, candidate := range []string{defaultOrgID, stringClaim(claims, "org_id"), stringClaim(claims, "tenant_id")} {
		if candidate == "" {
			continue
		}
		if id, err := uuid.Parse(candidate); err == nil {
			return id, nil
		}
	}
	return uuid.Nil, ErrNoOrg
}

// roleFromClaims maps the roles claim to the least-privileged role that
// still covers it: admin wins, then creator, else participant.
func roleFromClaims(claims jwt.MapClaims) Role {
	roles := rolesClaim(claims)
	for _, r := range roles {
		if strings.EqualFold(r, string(RoleAdmin)) {
			return RoleAdmin
		}
	}
	for _, r := range roles {
		if strings.EqualFold(r, string(RoleCreator)) {
			return RoleCreator
		}
	}
	return RoleParticipant
}

func rolesClaim(claims jwt.MapClaims) []string {
	switch v := claims["roles"].(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		return strings.Fields(v)
	}
	return nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
