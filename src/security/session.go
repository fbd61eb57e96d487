package security

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName holds the signed pointer to the visitor's last upload.
const SessionCookieName = "sales_session"

var ErrInvalidSession = errors.New("invalid session")

// SessionClaims is the per-browser state: which standardized file to analyse.
// There is no user identity behind it.
type SessionClaims struct {
	UploadID string `json:"upload_id"`
	SavedAs  string `json:"saved_as"`
	jwt.RegisteredClaims
}

type SessionService struct {
	secret []byte
	expiry time.Duration
	secure bool
}

func NewSessionService(secret string, expiry time.Duration) *SessionService {
	return &SessionService{secret: []byte(secret), expiry: expiry}
}

// WithSecureCookies marks issued cookies Secure, for deployments behind TLS.
func (s *SessionService) WithSecureCookies(secure bool) *SessionService {
	s.secure = secure
	return s
}

// Issue signs a token pointing at savedAs.
func (s *SessionService) Issue(uploadID, savedAs string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UploadID: uploadID,
		SavedAs:  savedAs,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a token and returns its claims.
func (s *SessionService) Parse(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !token.Valid || claims.SavedAs == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// SetCookie issues a token for savedAs and attaches it to the response.
func (s *SessionService) SetCookie(w http.ResponseWriter, uploadID, savedAs string) error {
	token, err := s.Issue(uploadID, savedAs)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.expiry.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// FromRequest reads and validates the session cookie.
func (s *SessionService) FromRequest(r *http.Request) (*SessionClaims, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return s.Parse(cookie.Value)
}
