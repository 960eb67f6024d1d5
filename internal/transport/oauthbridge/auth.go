package oauthbridge

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/AltairaLabs/toolgate/internal/types"
)

const jwksCacheTTL = time.Hour

// jwksKey is one JWK from the provider's key set. Only RSA signing keys are
// used; everything else is skipped at parse time.
type jwksKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwksDocument struct {
	Keys []jwksKey `json:"keys"`
}

// keyCache fetches and caches the provider's JWKS. A kid miss forces one
// refetch so key rotation is picked up without waiting out the TTL.
type keyCache struct {
	mu        sync.RWMutex
	url       string
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
	client    *http.Client
}

func newKeyCache(url string) *keyCache {
	return &keyCache{
		url:    url,
		keys:   make(map[string]*rsa.PublicKey),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (k *keyCache) get(kid string) (*rsa.PublicKey, error) {
	k.mu.RLock()
	key, ok := k.keys[kid]
	fresh := time.Since(k.fetchedAt) < jwksCacheTTL
	k.mu.RUnlock()
	if ok && fresh {
		return key, nil
	}

	if err := k.refresh(); err != nil {
		// A stale key beats no key when the provider is unreachable.
		if ok {
			return key, nil
		}
		return nil, err
	}

	k.mu.RLock()
	defer k.mu.RUnlock()
	if key, ok := k.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("no key with kid %q in JWKS", kid)
}

func (k *keyCache) refresh() error {
	resp, err := k.client.Get(k.url)
	if err != nil {
		return fmt.Errorf("fetch JWKS: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch JWKS: status %d", resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, jk := range doc.Keys {
		if jk.Kty != "RSA" || (jk.Use != "" && jk.Use != "sig") {
			continue
		}
		pub, err := parseRSAKey(jk)
		if err != nil {
			continue
		}
		keys[jk.Kid] = pub
	}

	k.mu.Lock()
	k.keys = keys
	k.fetchedAt = time.Now()
	k.mu.Unlock()
	return nil
}

func parseRSAKey(jk jwksKey) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(jk.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(jk.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}
	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e <= 0 {
		return nil, fmt.Errorf("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}

// verifier validates bearer tokens against the configured issuer and
// audience using the cached JWKS.
type verifier struct {
	issuer   string
	audience string
	keys     *keyCache
}

func newVerifier(issuer, audience, jwksURL string) *verifier {
	return &verifier{issuer: issuer, audience: audience, keys: newKeyCache(jwksURL)}
}

// verify parses and validates the token, returning the subject claim.
func (v *verifier) verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return v.keys.get(kid)
	}, jwt.WithValidMethods([]string{"RS256", "PS256"}))
	if err != nil {
		return "", types.E(types.KindAuthInvalid, "auth", "token validation failed: %v", err)
	}
	if !token.Valid {
		return "", types.E(types.KindAuthInvalid, "auth", "token is not valid")
	}
	if !claims.VerifyIssuer(v.issuer, true) {
		return "", types.E(types.KindAuthInvalid, "auth", "issuer mismatch")
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return "", types.E(types.KindAuthInvalid, "auth", "audience mismatch")
	}
	return claims.Subject, nil
}
