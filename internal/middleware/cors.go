package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Origins is the browser origin allow-list shared by CORS and the websocket upgrader.
type Origins struct {
	all bool
	set map[string]bool
}

// NewOrigins builds the list; "*" allows any origin.
func NewOrigins(allowed []string) Origins {
	o := Origins{set: make(map[string]bool, len(allowed))}
	for _, origin := range allowed {
		if origin == "*" {
			o.all = true
		}
		o.set[origin] = true
	}
	return o
}

func (o Origins) AllowsAll() bool {
	return o.all
}

// Allows reports whether a request from origin may proceed. Requests without
// an Origin header come from non-browser clients and are always allowed.
func (o Origins) Allows(origin string) bool {
	return origin == "" || o.all || o.set[origin]
}

// CORS answers preflight requests and allows the listed origins; "*" allows any.
func CORS(allowed []string) gin.HandlerFunc {
	origins := NewOrigins(allowed)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case origin == "":
		case origins.AllowsAll():
			c.Header("Access-Control-Allow-Origin", "*")
		case origins.Allows(origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+HeaderRequestID)
		c.Header("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
