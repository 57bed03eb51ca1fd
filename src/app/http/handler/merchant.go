package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workshop/src/app/http/dto"
	"workshop/src/app/http/response"
	"workshop/src/app/middleware"
	"workshop/src/core/domain"
	"workshop/src/core/usecase"
)

// MerchantHandler handles the merchant endpoints of the workshop API.
type MerchantHandler struct {
	merchantService *usecase.MerchantService
	vehicles        dto.VehicleProjector
}

// NewMerchantHandler creates a MerchantHandler. A nil projector uses
// dto.DefaultVehicleProjector.
func NewMerchantHandler(merchantService *usecase.MerchantService, vehicles dto.VehicleProjector) *MerchantHandler {
	if vehicles == nil {
		vehicles = dto.DefaultVehicleProjector{}
	}
	return &MerchantHandler{merchantService: merchantService, vehicles: vehicles}
}

// ContactMechanic forwards a merchant request to a mechanic API and relays
// its answer with the same status code.
// POST /workshop/api/merchant/contact_mechanic
func (h *MerchantHandler) ContactMechanic(c *gin.Context) {
	requestID := middleware.GetRequestID(c)

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		response.BadRequest(c, "invalid payload", requestID)
		return
	}

	req, err := dto.ParseContactRequest(raw)
	if err != nil {
		response.FromDomainError(c, err, requestID)
		return
	}

	in := req.ToInput(dto.ParseContactDetails(raw), c.GetHeader("Authorization"))
	res, err := h.merchantService.ContactMechanic(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		response.FromDomainError(c, err, requestID)
		return
	}

	c.JSON(relayStatus(res.StatusCode), dto.ContactMechanicResponse{
		ResponseFromMechanicAPI: res.Body,
		Status:                  res.StatusCode,
	})
}

// relayStatus is the status the relay answers with. Codes that forbid a body
// (1xx, 204, 304) become 200 so the envelope still reaches the caller; the
// original code stays in the envelope's status field.
func relayStatus(code int) int {
	switch {
	case code < http.StatusOK, code == http.StatusNoContent, code == http.StatusNotModified:
		return http.StatusOK
	}
	return code
}

// ServiceRequestsResponse lists the service requests of a vehicle.
type ServiceRequestsResponse struct {
	ServiceRequests []dto.ServiceRequestView `json:"service_requests"`
}

// ServiceRequests lists the service requests raised for a vehicle.
// GET /workshop/api/merchant/service_requests/:vin
func (h *MerchantHandler) ServiceRequests(c *gin.Context) {
	requestID := middleware.GetRequestID(c)

	records, err := h.merchantService.ListServiceRequests(c.Request.Context(), c.Param("vin"))
	if err != nil {
		response.FromDomainError(c, err, requestID)
		return
	}

	views, err := dto.ProjectServiceRequests(records, h.vehicles)
	if err != nil {
		if domain.IsIntegrity(err) {
			middleware.Logger(c).Error("service request projection failed", "vin", c.Param("vin"), "error", err)
		}
		_ = c.Error(err)
		response.FromDomainError(c, err, requestID)
		return
	}

	c.JSON(http.StatusOK, ServiceRequestsResponse{ServiceRequests: views})
}

// Mechanic returns the public view of a mechanic.
// GET /workshop/api/mechanic/:code
func (h *MerchantHandler) Mechanic(c *gin.Context) {
	m, err := h.merchantService.GetMechanic(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	c.JSON(http.StatusOK, dto.ProjectMechanicPublic(m))
}
