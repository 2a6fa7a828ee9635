package middleware

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var vercelPreview = regexp.MustCompile(`^https://[a-z0-9-]+\.vercel\.app$`)

type CORSConfig struct {
	AllowOrigins []string
	// AllowVercelPreviews admits https://<name>.vercel.app deployments.
	AllowVercelPreviews bool
}

// AllowOrigin reports whether a browser origin may call the API.
func (cfg CORSConfig) AllowOrigin(origin string) bool {
	for _, o := range cfg.AllowOrigins {
		if o == origin {
			return true
		}
	}
	return cfg.AllowVercelPreviews && vercelPreview.MatchString(origin)
}

func CORS(cfg CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: cfg.AllowOrigin,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			HeaderXRequestID,
		},
		ExposeHeaders:    []string{"Content-Length", HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
