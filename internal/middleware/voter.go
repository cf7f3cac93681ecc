package middleware

import (
	"encoding/hex"
	"log/slog"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

const (
	VoterKey        = "voter"
	voterSessionKey = "voter_token"
)

// VoterIdentity makes sure every visitor carries an anonymous token in the
// session and exposes its digest under VoterKey. The raw token never leaves
// the cookie.
func VoterIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(voterSessionKey).(string)
		if token == "" {
			token = uuid.NewString()
			session.Set(voterSessionKey, token)
			if err := session.Save(); err != nil {
				slog.Warn("Failed to save voter session", "error", err)
			}
		}
		c.Set(VoterKey, AnonymousVoterID(token))
		c.Next()
	}
}

// AnonymousVoterID derives the stored voter id from a session token.
func AnonymousVoterID(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return "anon:" + hex.EncodeToString(sum[:])
}

// NamedVoterID is the voter id of someone voting under a display name.
func NamedVoterID(name string) string {
	return "name:" + name
}

// Voter returns the anonymous voter id set by VoterIdentity, if any.
func Voter(c *gin.Context) string {
	return c.GetString(VoterKey)
}
