package i18n

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/gatehouse-api/internal/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LangParam is the query parameter that overrides Accept-Language.
const LangParam = "lang"

var supportedTags = []language.Tag{
	language.English,
	language.Spanish,
}

var tagMatcher = language.NewMatcher(supportedTags)

// Default returns the fallback language.
func Default() language.Tag {
	return language.English
}

// Negotiate picks the best supported tag from an explicit preference and an
// Accept-Language header value. The explicit preference wins when it parses.
func Negotiate(preferred, acceptLanguage string) language.Tag {
	if preferred = strings.TrimSpace(preferred); preferred != "" {
		if tag, err := language.Parse(preferred); err == nil {
			_, idx, conf := tagMatcher.Match(tag)
			if conf != language.No {
				return supportedTags[idx]
			}
		}
	}

	if acceptLanguage = strings.TrimSpace(acceptLanguage); acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
			_, idx, _ := tagMatcher.Match(tags...)
			return supportedTags[idx]
		}
	}

	return Default()
}

// Middleware negotiates the request locale and stores it in the context.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tag := Negotiate(c.Query(LangParam), c.GetHeader("Accept-Language"))
		c.Set(constants.ContextKeyLocale, tag)
		c.Next()
	}
}

// FromContext returns the negotiated locale, or the default one.
func FromContext(c *gin.Context) language.Tag {
	if v, ok := c.Get(constants.ContextKeyLocale); ok {
		if tag, ok := v.(language.Tag); ok {
			return tag
		}
	}
	return Default()
}

// Segment is the path segment used for the locale in deep links ("en", "es").
func Segment(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// T translates a message key for the request locale.
func T(c *gin.Context, key string, args ...interface{}) string {
	return Printer(FromContext(c)).Sprintf(key, args...)
}

// Printer returns a message printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}
