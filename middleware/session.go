package middleware

import (
	"net/http"
	"time"

	"prostore-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	SessionCartCookie   = "sessionCartId"
	ContextSessionCart  = "session_cart_id"
	sessionCartLifetime = 30 * 24 * time.Hour
)

// SessionCart guarantees every request carries an anonymous cart token,
// minting one and setting the cookie when the client has none.
func SessionCart(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCartCookie)
		if err != nil || token == "" {
			id, err := uuid.NewRandom()
			if err != nil {
				log.WithError(err).Error("failed to generate session cart id")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
				return
			}
			token = id.String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCartCookie, token, int(sessionCartLifetime.Seconds()), "/", "", secure, true)
		}

		c.Set(ContextSessionCart, token)
		c.Next()
	}
}

// CartOwner resolves whose cart the request addresses: the signed-in user
// when there is one, otherwise the anonymous session token.
func CartOwner(c *gin.Context) (models.Owner, bool) {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uuid.UUID); ok && id != uuid.Nil {
			return models.UserOwner(id), true
		}
	}
	if token := c.GetString(ContextSessionCart); token != "" {
		return models.SessionOwner(token), true
	}
	return models.Owner{}, false
}
