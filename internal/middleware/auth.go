package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const ContextAdminSubject = "admin_subject"

// AdminAuth verifies an HS256 bearer token signed with secret.
func AdminAuth(secret []byte) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("invalid authorization format"))
			return
		}

		var claims jwt.RegisteredClaims
		if _, err := parser.ParseWithClaims(parts[1], &claims, keyFunc); err != nil {
			log.Warn().Err(err).Str("request_id", GetRequestID(c)).Msg("admin token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("invalid token"))
			return
		}

		c.Set(ContextAdminSubject, claims.Subject)
		c.Next()
	}
}
