// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/floramart/floramart-backend/internal/services"
	"github.com/floramart/floramart-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// POST /orders/checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}

	// The body carries the item list; the address and payment fields ride
	// the query string. Clients that put everything in the body still
	// work; query values win when both are present.
	var req services.CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid input", err.Error())
			return
		}
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	order, err := h.orderService.Checkout(buyerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, order)
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(userID, currentRole(c), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// GET /orders
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := services.OrderSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
		Status:           c.Query("status"),
	}

	orders, total, err := h.orderService.GetBuyerOrders(buyerID, &params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params.PaginationParams))
}

// GET /orders/selling
func (h *OrderHandler) GetSellingOrders(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := services.OrderSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
		Status:           c.Query("status"),
	}

	orders, total, err := h.orderService.GetSellerOrders(sellerID, &params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params.PaginationParams))
}

// GET /admin/orders
func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	params := services.OrderSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
		Status:           c.Query("status"),
	}

	orders, total, err := h.orderService.GetAllOrders(&params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params.PaginationParams))
}

// PUT /orders/:id/delivery
func (h *OrderHandler) UpdateDeliveryStatus(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateDeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	order, err := h.orderService.UpdateDeliveryStatus(actorID, currentRole(c), orderID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}
