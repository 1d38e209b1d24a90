package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"slotify/models"
	"slotify/utils"
)

// ListAvailableSlots handles GET /api/slots?serviceId=&date=. Effective
// capacity subtracts unexpired reservation locks so checkout UIs can grey
// out slots other sessions are holding; the figure is advisory and the
// booking transaction stays the only authority.
func ListAvailableSlots(c *gin.Context) {
	tenantID := c.GetString("tenantID")
	serviceID := c.Query("serviceId")
	date := c.Query("date")
	if serviceID == "" || date == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "serviceId and date are required")
		return
	}
	if _, err := time.Parse(utils.DateLayout, date); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "date must be formatted as "+utils.DateLayout)
		return
	}

	svc, err := CatalogRepo.GetServiceByID(c.Request.Context(), serviceID)
	if err != nil {
		respondInternal(c, "failed to load service", err)
		return
	}
	if svc == nil || svc.TenantID != tenantID {
		utils.JSONError(c, http.StatusNotFound, "not found", "service "+serviceID+" not found")
		return
	}

	slots, err := SlotRepo.GetBookable(c.Request.Context(), tenantID, serviceID, date)
	if err != nil {
		respondInternal(c, "failed to list slots", err)
		return
	}

	views := make([]models.AvailableSlotView, 0, len(slots))
	for _, slot := range slots {
		held, err := LockService.HeldCapacity(c.Request.Context(), slot.ID, "")
		if err != nil {
			// Lock store trouble degrades the listing, not the request.
			utils.GetLogger().Warn("failed to sum held capacity",
				zap.String("slotId", slot.ID), zap.Error(err))
			held = 0
		}
		effective := slot.AvailableCapacity - held
		if effective < 0 {
			effective = 0
		}
		views = append(views, models.AvailableSlotView{
			ID:                slot.ID,
			ServiceID:         slot.ServiceID,
			EmployeeID:        slot.EmployeeID,
			Date:              slot.Date,
			Start:             slot.Start,
			End:               slot.End,
			AvailableCapacity: slot.AvailableCapacity,
			EffectiveCapacity: effective,
			UnitPrice:         slot.UnitPrice(*svc),
		})
	}

	c.JSON(http.StatusOK, gin.H{"slots": views})
}
