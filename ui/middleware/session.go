package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionIDKey = "tidytab.session_id"

// SessionCookie makes sure every request carries a session identifier.
// A missing or malformed cookie is replaced by a fresh UUID.
func SessionCookie(name string, maxAge time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id string
		if value, err := c.Cookie(name); err == nil {
			if parsed, err := uuid.Parse(value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     name,
				Value:    id,
				Path:     "/",
				MaxAge:   int(maxAge.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			if gin.Mode() == gin.DebugMode {
				log.Printf("[SessionCookie] Issued session %s", id)
			}
		}

		c.Set(sessionIDKey, id)
		c.Next()
	}
}

// SessionID returns the identifier set by SessionCookie
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
