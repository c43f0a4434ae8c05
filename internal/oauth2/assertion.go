package oauth2

import (
	"crypto/rsa"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"webhook-proxy/internal/common/errors"
)

// DialogflowScope is the OAuth scope requested for the agent API.
const DialogflowScope = "https://www.googleapis.com/auth/dialogflow"

// assertionLifetime is how long a signed assertion stays valid. Google caps
// it at one hour.
const assertionLifetime = 3500 * time.Second

// AssertionClaims is the payload of the JWT bearer assertion.
type AssertionClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// NewAssertionClaims builds claims for issuer, scope and audience issued at now.
func NewAssertionClaims(issuer, scope, audience string, now time.Time) AssertionClaims {
	return AssertionClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(assertionLifetime)),
		},
	}
}

// ParsePrivateKey decodes a PEM encoded RSA key in PKCS#1 or PKCS#8 form.
func ParsePrivateKey(pemKey string) (*rsa.PrivateKey, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pemKey))
	if err != nil {
		return nil, errors.ConfigError("failed to parse service account private key").WithContext("cause", err.Error())
	}
	return key, nil
}

// SignAssertion signs claims with RS256.
func SignAssertion(claims AssertionClaims, key *rsa.PrivateKey) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", errors.TokenAcquisitionError("failed to sign JWT assertion", err)
	}
	return signed, nil
}
