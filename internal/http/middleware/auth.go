package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dermatch/dermatch-go/internal/http/response"
	"github.com/dermatch/dermatch-go/internal/pkg/ctxutil"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
)

// headerAnonSession carries the client-generated anonymous id; anonymous
// callers may also send it as the session_id query parameter on endpoints
// that accept one.
const headerAnonSession = "X-Anon-Session"

type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
}

func NewAuthMiddleware(log *logger.Logger, jwtSecretKey string) *AuthMiddleware {
	return &AuthMiddleware{
		log:    log.With("middleware", "AuthMiddleware"),
		secret: []byte(jwtSecretKey),
	}
}

// RequireAuth admits verified bearer callers only.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearer(c)
		if tokenString == "" {
			response.RespondError(c, http.StatusUnauthorized, "auth_required", fmt.Errorf("missing bearer token"))
			c.Abort()
			return
		}
		userID, err := am.verify(tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			response.RespondError(c, http.StatusUnauthorized, "auth_required", fmt.Errorf("invalid token"))
			c.Abort()
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			TokenString: tokenString,
			UserID:      userID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// OptionalAuth admits anyone, but an invalid bearer token is still a 401:
// a stale credential is never silently downgraded to anonymous. Anonymous
// callers are identified by their client-generated id when they send one.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := &ctxutil.RequestData{}
		if tokenString := extractBearer(c); tokenString != "" {
			userID, err := am.verify(tokenString)
			if err != nil {
				am.log.Debug("token rejected", "error", err)
				response.RespondError(c, http.StatusUnauthorized, "auth_required", fmt.Errorf("invalid token"))
				c.Abort()
				return
			}
			rd.TokenString = tokenString
			rd.UserID = userID
		} else {
			rd.AnonID = extractAnonID(c)
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), rd)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (am *AuthMiddleware) verify(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return am.secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	if !token.Valid {
		return uuid.Nil, fmt.Errorf("token invalid")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("subject is not a user id: %w", err)
	}
	return userID, nil
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

func extractAnonID(c *gin.Context) string {
	if anon := strings.TrimSpace(c.GetHeader(headerAnonSession)); anon != "" {
		return anon
	}
	return strings.TrimSpace(c.Query("session_id"))
}
