package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS lets browser frontends on any origin call the API. There are no cookies to protect.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "X-Requested-With"},
		ExposeHeaders:   []string{"X-Run-ID", "Content-Disposition"},
		MaxAge:          12 * time.Hour,
	})
}
