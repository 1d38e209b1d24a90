package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	catalogRepo "slotify/database/repository/catalog"
	slotRepo "slotify/database/repository/slot"
	"slotify/models"
	"slotify/services/booking"
	"slotify/services/reservation"
	"slotify/services/ticket"
	"slotify/utils"
)

// Wired in main before the router starts serving.
var (
	BookingService booking.BookingEngine
	LockService    reservation.LockManager
	TicketService  *ticket.Service
	SlotRepo       slotRepo.SlotRepository
	CatalogRepo    catalogRepo.CatalogRepository
)

// CreateBooking handles POST /api/bookings.
func CreateBooking(c *gin.Context) {
	tenantID := c.GetString("tenantID")
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	result, err := BookingService.CreateBooking(c.Request.Context(), tenantID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// CreateBookingGroup handles POST /api/bookings/bulk.
func CreateBookingGroup(c *gin.Context) {
	tenantID := c.GetString("tenantID")
	var req models.BulkBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	result, err := BookingService.CreateBookingGroup(c.Request.Context(), tenantID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetBooking handles GET /api/bookings/:id.
func GetBooking(c *gin.Context) {
	tenantID := c.GetString("tenantID")
	result, err := BookingService.GetBooking(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RescheduleBooking handles POST /api/bookings/:id/reschedule.
func RescheduleBooking(c *gin.Context) {
	tenantID := c.GetString("tenantID")
	var req models.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	result, err := BookingService.MoveBooking(c.Request.Context(), tenantID, c.Param("id"), req.NewSlotID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteBooking handles DELETE /api/bookings/:id. Pass allowPaid=true to
// delete a booking whose payment was already collected.
func DeleteBooking(c *gin.Context) {
	tenantID := c.GetString("tenantID")
	allowPaid, _ := strconv.ParseBool(c.Query("allowPaid"))

	if err := BookingService.DeleteBooking(c.Request.Context(), tenantID, c.Param("id"), allowPaid); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PreviewCoverage handles GET /api/coverage: a read-only dry run of the
// package split for a prospective booking. Nothing is debited.
func PreviewCoverage(c *gin.Context) {
	tenantID := c.GetString("tenantID")
	serviceID := c.Query("serviceId")
	if serviceID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "serviceId is required")
		return
	}
	quantity, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil || quantity < 1 {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "quantity must be a positive integer")
		return
	}

	info := models.CustomerInfo{
		CustomerID: c.Query("customerId"),
		Phone:      c.Query("phone"),
	}
	result, err := BookingService.PreviewCoverage(c.Request.Context(), tenantID, info, serviceID, quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DownloadTicket handles GET /api/bookings/:id/ticket and streams the
// printable PDF with the signed QR payload.
func DownloadTicket(c *gin.Context) {
	tenantID := c.GetString("tenantID")
	b, err := BookingService.GetBooking(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	serviceName := b.ServiceID
	if svc, err := CatalogRepo.GetServiceByID(c.Request.Context(), b.ServiceID); err == nil && svc != nil {
		serviceName = svc.Name
	}

	pdf, err := TicketService.RenderPDF(b, serviceName)
	if err != nil {
		respondInternal(c, "failed to render ticket", err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=ticket-"+b.ID+".pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}
