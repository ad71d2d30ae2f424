package flash

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/yigit/studentregistry/internal/pkg/logger"
	"golang.org/x/crypto/hkdf"
)

// CookieName is the cookie carrying pending flash messages between requests
const CookieName = "registry_flash"

// keyInfo binds the derived signing key to flash cookies, so SESSION_SECRET can be shared
const keyInfo = "studentregistry flash cookie v1"

// pendingKey stores the messages added during the current request in the gin context
const pendingKey = "flash.pending"

// Message categories understood by the page template
const (
	CategorySuccess = "success"
	CategoryWarning = "warning"
	CategoryError   = "error"
)

// ErrInvalidToken is returned for flash cookies that fail signature or claim checks
var ErrInvalidToken = errors.New("invalid flash token")

// Message is one queued notification
type Message struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Config defines flash cookie settings
type Config struct {
	SecretKey string
	MaxAge    time.Duration
	Secure    bool
}

// Claims defines flash token content
type Claims struct {
	Messages []Message `json:"messages"`
	jwt.RegisteredClaims
}

// Store queues messages in a signed cookie so they survive a redirect
type Store struct {
	config Config
	key    []byte
}

// NewStore creates a flash store. MaxAge defaults to five minutes.
func NewStore(config Config) *Store {
	if config.MaxAge <= 0 {
		config.MaxAge = 5 * time.Minute
	}
	return &Store{config: config, key: deriveKey(config.SecretKey)}
}

// deriveKey expands the configured secret into a 32 byte HS256 key
func deriveKey(secret string) []byte {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		// Only reachable when asking for more than 255 hash lengths
		panic(fmt.Sprintf("flash: derive key: %v", err))
	}
	return key
}

// RandomSecret returns a hex-encoded 32 byte key for when no session secret is configured
func RandomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate flash secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Add queues a message for the next page render
func (s *Store) Add(c *gin.Context, category, message string) {
	messages := append(s.pending(c), Message{Category: category, Message: message})
	c.Set(pendingKey, messages)

	token, err := s.encode(messages)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to sign flash cookie")
		return
	}
	s.setCookie(c, token, int(s.config.MaxAge.Seconds()))
}

// Success queues a success message
func (s *Store) Success(c *gin.Context, message string) { s.Add(c, CategorySuccess, message) }

// Warning queues a warning message
func (s *Store) Warning(c *gin.Context, message string) { s.Add(c, CategoryWarning, message) }

// Error queues an error message
func (s *Store) Error(c *gin.Context, message string) { s.Add(c, CategoryError, message) }

// Pop returns every queued message and clears the queue
func (s *Store) Pop(c *gin.Context) []Message {
	_, added := c.Get(pendingKey)
	messages := s.pending(c)
	c.Set(pendingKey, []Message{})
	if _, err := c.Cookie(CookieName); err == nil || added {
		s.setCookie(c, "", -1)
	}
	return messages
}

// pending returns the messages added this request, or those carried in by the cookie
func (s *Store) pending(c *gin.Context) []Message {
	if v, ok := c.Get(pendingKey); ok {
		if messages, ok := v.([]Message); ok {
			return messages
		}
	}

	token, err := c.Cookie(CookieName)
	if err != nil || token == "" {
		return []Message{}
	}
	messages, err := s.decode(token)
	if err != nil {
		logger.Warn().Err(err).Msg("Ignoring unreadable flash cookie")
		return []Message{}
	}
	return messages
}

func (s *Store) encode(messages []Message) (string, error) {
	now := time.Now()
	claims := &Claims{
		Messages: messages,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.MaxAge)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign flash token: %w", err)
	}
	return signed, nil
}

func (s *Store) decode(tokenString string) ([]Message, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims.Messages, nil
}

func (s *Store) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, value, maxAge, "/", "", s.config.Secure, true)
}
