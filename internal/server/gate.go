package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/doemart/internal/auth"
	"github.com/matthieukhl/doemart/internal/gate"
)

const sessionKey = "session"

// gated admits a request only when the gate allows the route's requirement
func (s *Server) gated(path string) gin.HandlerFunc {
	req := gate.Routes[path]

	return func(c *gin.Context) {
		snap := s.store.Snapshot()
		outcome := gate.Evaluate(snap, req)

		switch outcome {
		case gate.Allow:
			c.Set(sessionKey, snap)
			c.Next()
			return
		case gate.Loading:
			body := gin.H{"status": outcome.String()}
			if snap.ProfileMissing {
				body["message"] = "No profile exists for this account yet"
			}
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, body)
		case gate.RedirectLogin:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":   outcome.String(),
				"redirect": outcome.Target(),
			})
		case gate.PendingApproval:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  outcome.String(),
				"message": "Your account is waiting for admin approval. Please check back later.",
			})
		case gate.RedirectHome:
			c.Header("Location", outcome.Target())
			c.AbortWithStatusJSON(http.StatusSeeOther, gin.H{
				"status":   outcome.String(),
				"redirect": outcome.Target(),
			})
		}
	}
}

func sessionFrom(c *gin.Context) auth.Snapshot {
	if v, ok := c.Get(sessionKey); ok {
		if snap, ok := v.(auth.Snapshot); ok {
			return snap
		}
	}
	return auth.Snapshot{}
}
