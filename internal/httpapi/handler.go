// Package httpapi is the JSON HTTP surface of the order lifecycle.
package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"droneFoodDelivery/internal/account"
	"droneFoodDelivery/internal/apperr"
	"droneFoodDelivery/internal/lifecycle"
	"droneFoodDelivery/internal/metrics"
	"droneFoodDelivery/models"
	"droneFoodDelivery/repository"
)

type Handler struct {
	svc      *lifecycle.Service
	accounts *account.Service
	catalog  *repository.Repos
	log      *slog.Logger
}

func NewHandler(svc *lifecycle.Service, accounts *account.Service, catalog *repository.Repos, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, accounts: accounts, catalog: catalog, log: log}
}

// NewRouter wires every route. m may be nil, in which case no metrics are
// collected and /metrics is not served.
func NewRouter(h *Handler, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.log), h.authenticate)
	if m != nil {
		r.Use(m.GinMiddleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	customer := r.Group("/customer")
	{
		customer.POST("/register", h.register)
		customer.POST("/login", h.login)
		customer.GET("/me", h.me)
	}
	order := r.Group("/order")
	{
		order.POST("/place", h.placeOrder)
		order.POST("/add-item", h.addItem)
		order.POST("/pay", h.pay)
		order.POST("/checkout", h.checkout)
		order.GET("/status/:id", h.orderStatus)
		order.GET("/details/:id", h.orderDetails)
		order.GET("/history/:customerID", h.history)
		order.GET("/latest/:customerID", h.latest)
	}
	delivery := r.Group("/delivery")
	{
		delivery.POST("/assign", h.assignDrone)
		delivery.POST("/complete", h.completeDelivery)
		delivery.GET("/order/:orderID", h.deliveryForOrder)
	}
	notification := r.Group("/notification")
	{
		notification.GET("/order/:orderID/:customerID", h.notificationsForOrder)
		notification.GET("/customer/:customerID", h.notificationsForCustomer)
		notification.POST("/read/:notificationID", h.markRead)
	}
	restaurant := r.Group("/restaurant")
	{
		restaurant.GET("/list", h.listRestaurants)
		restaurant.GET("/menu/:id", h.menu)
		restaurant.GET("/:id", h.restaurant)
	}
	return r
}

// idParam parses a positive integer path parameter, writing a 400 otherwise.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

type placeOrderRequest struct {
	CustomerID   int64 `json:"CustomerID" binding:"required"`
	RestaurantID int64 `json:"RestaurantID" binding:"required"`
	LocationID   int64 `json:"LocationID" binding:"required"`
}

func (h *Handler) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !h.ownsCustomer(c, req.CustomerID) {
		return
	}
	o, err := h.svc.PlaceOrder(c.Request.Context(), req.CustomerID, req.RestaurantID, req.LocationID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"OrderID": o.ID})
}

type addItemRequest struct {
	OrderID  int64 `json:"OrderID" binding:"required"`
	ItemID   int64 `json:"ItemID" binding:"required"`
	Quantity int   `json:"Quantity"`
}

func (h *Handler) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	o, err := h.svc.AddItem(c.Request.Context(), req.OrderID, req.ItemID, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item added", "TotalAmount": o.TotalAmount, "TotalWeightKg": o.TotalWeightKg})
}

type payRequest struct {
	OrderID int64  `json:"OrderID" binding:"required"`
	Method  string `json:"Method"`
}

func (h *Handler) pay(c *gin.Context) {
	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if _, err := h.svc.Pay(c.Request.Context(), req.OrderID, req.Method); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment confirmed"})
}

type checkoutRequest struct {
	CustomerID   int64                `json:"CustomerID" binding:"required"`
	RestaurantID int64                `json:"RestaurantID" binding:"required"`
	LocationID   int64                `json:"LocationID" binding:"required"`
	Items        []lifecycle.CartLine `json:"Items"`
}

func (h *Handler) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !h.ownsCustomer(c, req.CustomerID) {
		return
	}
	cart := lifecycle.Cart{CustomerID: req.CustomerID, RestaurantID: req.RestaurantID, LocationID: req.LocationID}
	for _, l := range req.Items {
		cart.Add(l.ItemID, l.Quantity)
	}
	o, err := h.svc.Checkout(c.Request.Context(), cart)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"OrderID": o.ID, "TotalAmount": o.TotalAmount})
}

type orderRequest struct {
	OrderID int64 `json:"OrderID" binding:"required"`
}

func (h *Handler) assignDrone(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	d, err := h.svc.AssignDrone(c.Request.Context(), req.OrderID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Drone assigned", "DroneID": d.DroneID, "DeliveryID": d.ID})
}

func (h *Handler) completeDelivery(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if _, err := h.svc.CompleteDelivery(c.Request.Context(), req.OrderID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order delivered"})
}

func (h *Handler) deliveryForOrder(c *gin.Context) {
	id, ok := idParam(c, "orderID")
	if !ok {
		return
	}
	d, err := h.svc.GetDelivery(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) orderStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	st, err := h.svc.GetStatus(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Status": st})
}

func (h *Handler) orderDetails(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	o, err := h.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) history(c *gin.Context) {
	id, ok := idParam(c, "customerID")
	if !ok || !h.ownsCustomer(c, id) {
		return
	}
	out, err := h.svc.GetHistory(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) latest(c *gin.Context) {
	id, ok := idParam(c, "customerID")
	if !ok || !h.ownsCustomer(c, id) {
		return
	}
	o, err := h.svc.LatestOrder(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) notificationsForOrder(c *gin.Context) {
	orderID, ok := idParam(c, "orderID")
	if !ok {
		return
	}
	customerID, ok := idParam(c, "customerID")
	if !ok || !h.ownsCustomer(c, customerID) {
		return
	}
	out, err := h.svc.Notifications().ForOrder(c.Request.Context(), orderID, customerID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) notificationsForCustomer(c *gin.Context) {
	id, ok := idParam(c, "customerID")
	if !ok || !h.ownsCustomer(c, id) {
		return
	}
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			badRequest(c, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	out, err := h.svc.Notifications().ForCustomer(c.Request.Context(), id, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) markRead(c *gin.Context) {
	id, ok := idParam(c, "notificationID")
	if !ok {
		return
	}
	if err := h.svc.Notifications().MarkRead(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *Handler) listRestaurants(c *gin.Context) {
	out, err := h.catalog.Restaurants.List(c.Request.Context())
	if err != nil {
		h.writeError(c, apperr.Persistence("ListRestaurants", err))
		return
	}
	c.JSON(http.StatusOK, out)
}

// loadRestaurant resolves the :id parameter, writing the error response itself.
func (h *Handler) loadRestaurant(c *gin.Context, op string) (*models.Restaurant, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}
	rs, err := h.catalog.Restaurants.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, apperr.Persistence(op, err))
		return nil, false
	}
	if rs == nil {
		h.writeError(c, apperr.New(apperr.KindNotFound, op, "restaurant %d not found", id))
		return nil, false
	}
	return rs, true
}

func (h *Handler) restaurant(c *gin.Context) {
	rs, ok := h.loadRestaurant(c, "GetRestaurant")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rs)
}

func (h *Handler) menu(c *gin.Context) {
	rs, ok := h.loadRestaurant(c, "Menu")
	if !ok {
		return
	}
	items, err := h.catalog.Menu.ListActive(c.Request.Context(), rs.ID)
	if err != nil {
		h.writeError(c, apperr.Persistence("Menu", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"Restaurant": rs, "Items": items})
}
