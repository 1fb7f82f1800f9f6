package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sellerhub-agent/internal/domain"
	"sellerhub-agent/internal/domain/model"
	"sellerhub-agent/internal/domain/ports/repository"
	"sellerhub-agent/internal/infra/security"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo persists auth sessions in Redis with the bearer token
// encrypted at rest. Entries expire with the token when it carries an exp
// claim, else after the configured TTL.
type SessionRepo struct {
	client RedisClient
	cipher *security.TokenCipher
	ttl    time.Duration
}

func NewSessionRepo(client RedisClient, cipher *security.TokenCipher, ttl time.Duration) *SessionRepo {
	return &SessionRepo{client: client, cipher: cipher, ttl: ttl}
}

type sessionRecord struct {
	Token     string    `json:"token"` // sealed
	UserName  string    `json:"userName"`
	SellerID  string    `json:"sellerId"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

func sessionKey(kind model.SessionKind) string {
	return fmt.Sprintf("session:%s", kind)
}

func (s *SessionRepo) Save(ctx context.Context, session *model.AuthSession) error {
	exp := session.ExpiresAt
	if exp.IsZero() {
		exp = tokenExpiry(session.Token)
	}

	sealed, err := s.cipher.Seal(session.Token)
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	rec := sessionRecord{
		Token:     sealed,
		UserName:  session.UserName,
		SellerID:  session.SellerID,
		ExpiresAt: exp,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	ttl := s.ttl
	if !exp.IsZero() {
		if until := time.Until(exp); until > 0 && until < ttl {
			ttl = until
		}
	}
	return s.client.Set(ctx, sessionKey(session.Kind), data, ttl)
}

func (s *SessionRepo) Get(ctx context.Context, kind model.SessionKind) (*model.AuthSession, error) {
	data, err := s.client.Get(ctx, sessionKey(kind))
	if err != nil {
		if errors.Is(err, Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var rec sessionRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, err
	}
	token, err := s.cipher.Open(rec.Token)
	if err != nil {
		return nil, fmt.Errorf("open token: %w", err)
	}
	return &model.AuthSession{
		Kind:      kind,
		Token:     token,
		UserName:  rec.UserName,
		SellerID:  rec.SellerID,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func (s *SessionRepo) Clear(ctx context.Context, kind model.SessionKind) error {
	return s.client.Del(ctx, sessionKey(kind))
}

// tokenExpiry extracts the exp claim without verifying the signature; the
// engine verifies tokens, the agent only needs to know when to stop
// offering one. Returns zero time for opaque tokens.
func tokenExpiry(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
