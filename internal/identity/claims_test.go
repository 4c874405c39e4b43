package identity

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOrgA = "6f1c8d6e-3b43-4a53-9c2f-9a4a5d1f0b11"
	testOrgB = "0c0ffee0-aaaa-4bbb-8ccc-123456789abc"
)

func TestFromClaimsRoleMapping(t *testing.T) {
	tests := []struct {
		name  string
		roles interface{}
		want  Role
	}{
		{"admin wins over creator", []interface{}{"creator", "admin"}, RoleAdmin},
		{"creator when no admin", []interface{}{"creator", "viewer"}, RoleCreator},
		{"unknown roles default to participant", []interface{}{"viewer"}, RoleParticipant},
		{"missing roles claim defaults to participant", nil, RoleParticipant},
		{"case insensitive", []interface{}{"Admin"}, RoleAdmin},
		{"space separated string", "creator other", RoleCreator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := jwt.MapClaims{"sub": "user-1", "org_id": testOrgA}
			if tt.roles != nil {
				claims["roles"] = tt.roles
			}

			id, err := FromClaims(claims, ClaimRules{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, id.Role)
		})
	}
}

func TestFromClaimsRequiresSubject(t *testing.T) {
	_, err := FromClaims(jwt.MapClaims{"org_id": testOrgA}, ClaimRules{})
	assert.ErrorIs(t, err, ErrNoSubject)
}

func TestFromClaimsOrgResolutionOrder(t *testing.T) {
	claims := jwt.MapClaims{"sub": "user-1", "org_id": testOrgA, "tenant_id": testOrgB}

	// Configured default wins over every claim.
	id, err := FromClaims(claims, ClaimRules{DefaultOrgID: testOrgB})
	require.NoError(t, err)
	assert.Equal(t, testOrgB, id.OrgID.String())

	// org_id claim beats tenant_id claim.
	id, err = FromClaims(claims, ClaimRules{})
	require.NoError(t, err)
	assert.Equal(t, testOrgA, id.OrgID.String())

	// tenant_id claim is the last resort.
	id, err = FromClaims(jwt.MapClaims{"sub": "user-1", "tenant_id": testOrgB}, ClaimRules{})
	require.NoError(t, err)
	assert.Equal(t, testOrgB, id.OrgID.String())

	// An invalid default falls through to the claims.
	id, err = FromClaims(claims, ClaimRules{DefaultOrgID: "not-a-uuid"})
	require.NoError(t, err)
	assert.Equal(t, testOrgA, id.OrgID.String())
}

func TestFromClaimsNoOrgResolved(t *testing.T) {
	_, err := FromClaims(jwt.MapClaims{"sub": "user-1"}, ClaimRules{})
	assert.ErrorIs(t, err, ErrNoOrg)

	_, err = FromClaims(jwt.MapClaims{"sub": "user-1", "org_id": "garbage"}, ClaimRules{})
	assert.ErrorIs(t, err, ErrNoOrg)
}

func TestFromClaimsIssuerAudience(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":    "user-1",
		"org_id": testOrgA,
		"iss":    "https://issuer.example.com",
		"aud":    []interface{}{"orbit-api", "other"},
	}

	id, err := FromClaims(claims, ClaimRules{Issuer: "https://issuer.example.com", Audience: "orbit-api"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.Subject)

	_, err = FromClaims(claims, ClaimRules{Issuer: "https://evil.example.com"})
	assert.ErrorIs(t, err, ErrBadIssuer)

	_, err = FromClaims(claims, ClaimRules{Audience: "someone-else"})
	assert.ErrorIs(t, err, ErrBadAudience)

	// Issuer and audience are only enforced when configured.
	_, err = FromClaims(claims, ClaimRules{})
	assert.NoError(t, err)
}

func TestFromClaimsEmail(t *testing.T) {
	id, err := FromClaims(jwt.MapClaims{"sub": "user-1", "org_id": testOrgA, "email": "pat@example.com"}, ClaimRules{})
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", id.Email)
}
