package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carbon-track/models"
	"carbon-track/session"
)

const userKey = "user"

// ErrUnknownUser est retourné par un UserLookup quand l'identité n'est plus connue.
var ErrUnknownUser = errors.New("middleware: unknown user")

// UserLookup retrouve le marqueur d'identité enregistré à la connexion.
type UserLookup func(ctx context.Context, identity string) (models.User, error)

// JWTMiddleware exige un jeton Bearer valide dont l'identité est toujours connectée.
func JWTMiddleware(issuer *session.Issuer, lookup UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := issuer.Parse(strings.TrimSpace(tokenString))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user := claims.User()
		if lookup != nil {
			stored, err := lookup(c.Request.Context(), claims.Subject)
			switch {
			case errors.Is(err, ErrUnknownUser):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session ended"})
				return
			case err != nil:
				_ = c.Error(err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
				return
			}
			user = stored
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser retourne l'utilisateur authentifié par JWTMiddleware.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}
