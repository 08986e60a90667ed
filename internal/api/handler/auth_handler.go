package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/solosphere/solosphere-be/internal/api/dto"
)

// cookieName is the identity token cookie
const cookieName = "token"

// principalKey is the gin context key holding the verified principal email
const principalKey = "principal"

// unauthorizedBody is the shared body for 401 responses. Ownership mismatches
// deliberately look identical to missing tokens so callers cannot probe for
// resource existence.
var unauthorizedBody = gin.H{"message": "unauthorized access"}

// Principal returns the verified principal email set by RequireAuth, or ""
// on an unauthenticated request
func Principal(c *gin.Context) string {
	return c.GetString(principalKey)
}

// Authorize checks the verified principal against a resource owner email.
// On mismatch it writes a 401 response and returns false.
func Authorize(c *gin.Context, ownerEmail string) bool {
	principal := Principal(c)
	if principal == "" || principal != ownerEmail {
		c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedBody)
		return false
	}
	return true
}

// RequireAuth verifies the identity cookie and stores the principal email in
// the request context. Missing or invalid tokens end the request with 401.
func (h *AuthHandler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(cookieName)
		if err != nil || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedBody)
			return
		}

		email, err := h.tokens.Verify(tokenString)
		if err != nil {
			h.logger.Warn("Rejected invalid identity token",
				slog.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedBody)
			return
		}

		c.Set(principalKey, email)
		c.Next()
	}
}

// IssueToken handles POST /jwt
// Signs an identity token for the given email and sets it as the token cookie
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req dto.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Email is required",
		})
		return
	}

	signed, err := h.tokens.Issue(req.Email)
	if err != nil {
		h.logger.Error("Failed to issue token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to issue token",
		})
		return
	}

	h.setTokenCookie(c, signed, int(h.tokens.TTL().Seconds()))

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout handles GET /logout
// Clears the identity cookie. The server keeps no revocation state.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// setTokenCookie applies the deployment cookie policy: HTTP-only always;
// Secure + SameSite=None under the production flag, non-secure Strict otherwise.
func (h *AuthHandler) setTokenCookie(c *gin.Context, value string, maxAge int) {
	if h.production {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteStrictMode)
	}

	c.SetCookie(cookieName, value, maxAge, "/", "", h.production, true)
}
