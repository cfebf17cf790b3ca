package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"droneFoodDelivery/internal/account"
	"droneFoodDelivery/internal/apperr"
	"droneFoodDelivery/internal/auth"
)

const principalKey = "principal"

// authenticate attaches the bearer principal when an Authorization header is
// sent. Requests without one stay anonymous; a bad token is rejected.
func (h *Handler) authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" || h.accounts == nil {
		c.Next()
		return
	}
	p, err := h.accounts.Authenticate(header)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set(principalKey, p)
	c.Next()
}

func principal(c *gin.Context) (*auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*auth.Principal)
	return p, ok
}

// ownsCustomer rejects a signed-in customer acting on another customer's data.
func (h *Handler) ownsCustomer(c *gin.Context, customerID int64) bool {
	p, ok := principal(c)
	if !ok || p.Kind != auth.KindCustomer || p.CustomerID == customerID {
		return true
	}
	h.writeError(c, apperr.New(apperr.KindForbidden, c.FullPath(), "customer %d cannot act for customer %d", p.CustomerID, customerID))
	return false
}

type registerRequest struct {
	Name     string `json:"Name"`
	Phone    string `json:"Phone"`
	Email    string `json:"Email"`
	Address  string `json:"Address"`
	Username string `json:"Username" binding:"required"`
	Password string `json:"Password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	cust, err := h.accounts.Register(c.Request.Context(), account.Registration{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Customer registered successfully", "CustomerID": cust.ID})
}

type loginRequest struct {
	Username string `json:"Username" binding:"required"`
	Password string `json:"Password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Username and Password required")
		return
	}
	sess, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt,
		"Customer":   sess.Customer,
	})
}

func (h *Handler) me(c *gin.Context) {
	p, ok := principal(c)
	if !ok || p.Kind != auth.KindCustomer {
		h.writeError(c, apperr.New(apperr.KindUnauthorized, "Profile", "customer token required"))
		return
	}
	cust, err := h.accounts.Profile(c.Request.Context(), p.CustomerID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}
