package middleware

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NUIOriginPrefix starts the origin of every page the in-game browser loads
// from a game resource, e.g. https://cfx-nui-phone.
const NUIOriginPrefix = "https://cfx-nui-"

// CORSConfig selects which browser origins may call the API.
type CORSConfig struct {
	// Resources restricts NUI origins to these resource names; empty allows any.
	Resources []string
	// Origins are extra exact origins, e.g. a hosted UI build.
	Origins []string
	// AllowLocalhost admits http://localhost and 127.0.0.1 on any port.
	AllowLocalhost bool
	MaxAge         time.Duration
}

// DefaultCORSConfig admits the NUI origin of any resource.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{MaxAge: 12 * time.Hour}
}

// Allows reports whether origin passes the configuration.
func (cfg CORSConfig) Allows(origin string) bool {
	if slices.Contains(cfg.Origins, origin) {
		return true
	}
	if resource, ok := strings.CutPrefix(origin, NUIOriginPrefix); ok && resource != "" {
		return len(cfg.Resources) == 0 || slices.Contains(cfg.Resources, resource)
	}
	if cfg.AllowLocalhost {
		u, err := url.Parse(origin)
		if err == nil && u.Scheme == "http" {
			host := u.Hostname()
			return host == "localhost" || host == "127.0.0.1"
		}
	}
	return false
}

// CORS admits the origins cfg allows and rejects the rest with 403.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: cfg.Allows,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Accept",
			"Origin",
			"Cache-Control",
			RequestIDHeader,
			PlayerHeader,
		},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        cfg.MaxAge,
	})
}
