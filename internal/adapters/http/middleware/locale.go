package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/go-api-errors/internal/apierror"
)

// ContextKeyLocale is the gin context key for the negotiated locale.
const ContextKeyLocale = "locale"

// LocaleMatcher picks a supported locale for an Accept-Language value.
type LocaleMatcher interface {
	Match(acceptLanguage string) string
}

// Locale returns middleware that negotiates the response language from the
// Accept-Language header and stores it on the request context, where the
// error renderer picks it up. The chosen locale is echoed as
// Content-Language.
func Locale(matcher LocaleMatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := matcher.Match(c.GetHeader("Accept-Language"))

		c.Set(ContextKeyLocale, locale)
		c.Header("Content-Language", locale)
		c.Request = c.Request.WithContext(apierror.WithLocale(c.Request.Context(), locale))

		c.Next()
	}
}

// GetLocale returns the negotiated locale, or "" if none was set.
func GetLocale(c *gin.Context) string {
	return c.GetString(ContextKeyLocale)
}
