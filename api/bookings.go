package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skopintsev/farebook/internal/domain"
	"github.com/skopintsev/farebook/internal/service/booking"
)

type BookingHandler struct {
	service            booking.BookingUseCase
	defaultSuccessRate float64
}

type createBookingRequest struct {
	FlightID           int64              `json:"flight_id"`
	Passengers         []domain.Passenger `json:"passengers"`
	SimulatePayment    *bool              `json:"simulate_payment"`
	PaymentSuccessRate *float64           `json:"payment_success_rate"`
	DemandLevel        string             `json:"demand_level"`
}

type bookingResponse struct {
	Reference  string  `json:"reference"`
	FlightID   int64   `json:"flight_id"`
	Seats      int     `json:"seats"`
	TotalPrice float64 `json:"total_price"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
}

func NewBookingHandler(service booking.BookingUseCase, defaultSuccessRate float64) *BookingHandler {
	return &BookingHandler{service: service, defaultSuccessRate: defaultSuccessRate}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:reference", h.get)
	router.GET("/:reference/receipt", h.receipt)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Payment simulation is on unless explicitly disabled.
	simulate := true
	if req.SimulatePayment != nil {
		simulate = *req.SimulatePayment
	}
	rate := h.defaultSuccessRate
	if req.PaymentSuccessRate != nil {
		rate = *req.PaymentSuccessRate
	}

	booked, err := h.service.Book(c.Request.Context(), booking.BookingInput{
		FlightID:           req.FlightID,
		Passengers:         req.Passengers,
		SimulatePayment:    simulate,
		PaymentSuccessRate: rate,
		Demand:             domain.DemandLevel(req.DemandLevel),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bookingResponse{
		Reference:  booked.Reference,
		FlightID:   booked.FlightID,
		Seats:      booked.Seats,
		TotalPrice: booked.TotalPrice,
		Status:     string(booked.Status),
		CreatedAt:  booked.CreatedAt.Format(time.RFC3339),
	})
}

func (h *BookingHandler) get(c *gin.Context) {
	reference := c.Param("reference")
	booked, receipt, err := h.service.GetBooking(c.Request.Context(), reference)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking": bookingResponse{
			Reference:  booked.Reference,
			FlightID:   booked.FlightID,
			Seats:      booked.Seats,
			TotalPrice: booked.TotalPrice,
			Status:     string(booked.Status),
			CreatedAt:  booked.CreatedAt.Format(time.RFC3339),
		},
		"passengers": booked.Passengers,
		"receipt":    receipt,
	})
}

func (h *BookingHandler) receipt(c *gin.Context) {
	reference := c.Param("reference")
	doc, err := h.service.ReceiptDocument(c.Request.Context(), reference)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt_%s.txt", reference))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", doc)
}
