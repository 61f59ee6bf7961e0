package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/matthieukhl/doemart/internal/auth"
	"github.com/matthieukhl/doemart/internal/dashboard"
	"github.com/matthieukhl/doemart/internal/gate"
	"github.com/matthieukhl/doemart/internal/models"
	"github.com/matthieukhl/doemart/internal/types"
)

// statusFor maps domain errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrInvalidCredentials), errors.Is(err, types.ErrUnauthorized), errors.Is(err, types.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrEmailTaken), errors.Is(err, dashboard.ErrShopExists),
		errors.Is(err, dashboard.ErrNoShop), errors.Is(err, dashboard.ErrNotPending):
		return http.StatusConflict
	case errors.Is(err, types.ErrTimeout):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// withWarning attaches fetch errors to an otherwise usable view
func withWarning(body gin.H, err error) gin.H {
	if err != nil {
		body["warning"] = err.Error()
	}
	return body
}

func sessionBody(snap auth.Snapshot) gin.H {
	return gin.H{
		"session": snap,
		"home":    gate.HomePath(snap.Profile),
	}
}

func (s *Server) session(c *gin.Context) {
	c.JSON(http.StatusOK, sessionBody(s.store.Snapshot()))
}

func (s *Server) home(c *gin.Context) {
	snap := s.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"signed_in": snap.SignedIn(),
		"redirect":  gate.HomePath(snap.Profile),
	})
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.SignIn(c.Request.Context(), req.Email, req.Password); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionBody(s.store.Snapshot()))
}

func (s *Server) signUp(c *gin.Context) {
	var req auth.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.SignUp(c.Request.Context(), req); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionBody(s.store.Snapshot()))
}

func (s *Server) signOut(c *gin.Context) {
	if err := s.store.SignOut(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionBody(s.store.Snapshot()))
}

func (s *Server) adminView(c *gin.Context) {
	admin, _ := s.dashboards(sessionFrom(c).ActorID())
	err := admin.Load(c.Request.Context())
	c.JSON(http.StatusOK, withWarning(gin.H{"dashboard": admin.View()}, err))
}

func (s *Server) decideProfile(approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile id"})
			return
		}

		admin, _ := s.dashboards(sessionFrom(c).ActorID())
		if approve {
			err = admin.Approve(c.Request.Context(), id)
		} else {
			err = admin.Reject(c.Request.Context(), id)
		}
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"dashboard": admin.View()})
	}
}

func (s *Server) shopkeeperView(c *gin.Context) {
	sk := s.shopkeeperFor(sessionFrom(c).ActorID())
	err := sk.Load(c.Request.Context())
	c.JSON(http.StatusOK, withWarning(gin.H{"dashboard": sk.View()}, err))
}

func (s *Server) createShop(c *gin.Context) {
	var in models.ShopInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sk := s.shopkeeperFor(sessionFrom(c).ActorID())
	if err := sk.Load(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	if err := sk.CreateShop(c.Request.Context(), in); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"dashboard": sk.View()})
}

func (s *Server) addProduct(c *gin.Context) {
	var in models.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sk := s.shopkeeperFor(sessionFrom(c).ActorID())
	if err := sk.Load(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	if err := sk.AddProduct(c.Request.Context(), in); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"dashboard": sk.View()})
}

func (s *Server) userView(c *gin.Context) {
	var f dashboard.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, user := s.dashboards(sessionFrom(c).ActorID())
	err := user.Load(c.Request.Context())

	shops, products := user.Search(f)
	if len(products) > dashboard.FeaturedProducts {
		products = products[:dashboard.FeaturedProducts]
	}

	c.JSON(http.StatusOK, withWarning(gin.H{
		"shops":      shops,
		"products":   products,
		"orders":     user.View().Orders,
		"cities":     user.Cities(),
		"categories": user.Categories(),
		"filter":     f,
	}, err))
}
