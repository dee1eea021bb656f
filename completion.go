package authrim

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sgrastar/authrim-sub000/actorstore"
)

// CompletionIssuer mints the signed assertion handed back to the protocol
// layer when a flow completes. The assertion proves which flow finished, for
// whom, and at which terminal node; the protocol layer exchanges it for
// protocol artifacts like authorization codes.
type CompletionIssuer interface {
	Issue(session *actorstore.Session, terminalNodeID string, issuedAt time.Time) (string, error)
}

type jwtCompletionIssuer struct {
	method jwt.SigningMethod
	key    any
	issuer string
	ttl    time.Duration
}

func newCompletionIssuer(cfg CompletionConfig) (CompletionIssuer, error) {
	switch cfg.SigningMethod {
	case "hs256":
		return &jwtCompletionIssuer{
			method: jwt.SigningMethodHS256,
			key:    cfg.Key,
			issuer: cfg.Issuer,
			ttl:    cfg.TTL,
		}, nil
	case "ed25519":
		if len(cfg.Key) != ed25519.PrivateKeySize {
			return nil, errors.New("completion: ed25519 key must be a 64-byte private key")
		}
		return &jwtCompletionIssuer{
			method: jwt.SigningMethodEdDSA,
			key:    ed25519.PrivateKey(cfg.Key),
			issuer: cfg.Issuer,
			ttl:    cfg.TTL,
		}, nil
	default:
		return nil, fmt.Errorf("completion: unsupported signing method %q", cfg.SigningMethod)
	}
}

func (i *jwtCompletionIssuer) Issue(session *actorstore.Session, terminalNodeID string, issuedAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":      i.issuer,
		"sub":      session.SessionID,
		"jti":      uuid.NewString(),
		"iat":      issuedAt.Unix(),
		"exp":      issuedAt.Add(i.ttl).Unix(),
		"flowId":   session.FlowID,
		"flowType": session.FlowType,
		"nodeId":   terminalNodeID,
	}
	if session.TenantID != "" {
		claims["tenantId"] = session.TenantID
	}
	if session.ClientID != "" {
		claims["aud"] = session.ClientID
	}

	token := jwt.NewWithClaims(i.method, claims)
	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("completion: signing token: %w", err)
	}
	return signed, nil
}
