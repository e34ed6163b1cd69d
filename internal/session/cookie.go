package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the name of the session cookie.
const CookieName = "agora_session"

// CookieCodec signs and verifies the session cookie. The cookie is an HS256
// JWT whose claims carry the session id, user id and email; the server-side
// record in the Store remains authoritative.
type CookieCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewCookieCodec creates a codec signing with the given secret.
func NewCookieCodec(secret string, ttl time.Duration) *CookieCodec {
	return &CookieCodec{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured cookie lifetime.
func (cc *CookieCodec) TTL() time.Duration {
	return cc.ttl
}

// Encode signs sess into a cookie value.
func (cc *CookieCodec) Encode(sess *Session) (string, error) {
	if len(cc.secret) == 0 {
		return "", fmt.Errorf("session secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sid":   sess.ID,
		"sub":   strconv.FormatUint(uint64(sess.UserID), 10),
		"email": sess.Email,
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   now.Add(cc.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cc.secret)
}

// Decode verifies a cookie value and reconstructs the session claims. It
// does not consult the Store; callers must confirm the record is still live.
func (cc *CookieCodec) Decode(value string) (*Session, error) {
	token, err := jwt.Parse(value, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return cc.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session cookie")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid session cookie claims")
	}

	sid, _ := claims["sid"].(string)
	email, _ := claims["email"].(string)
	subStr, _ := claims["sub"].(string)
	userID, err := strconv.ParseUint(subStr, 10, 32)
	if sid == "" || err != nil {
		return nil, fmt.Errorf("malformed session cookie")
	}

	return &Session{ID: sid, UserID: uint(userID), Email: email}, nil
}
