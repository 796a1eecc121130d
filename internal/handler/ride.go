package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chainride/internal/domain"
	"chainride/internal/fare"
	"chainride/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// RequestRideRequest is the HTTP request body for requesting a ride.
type RequestRideRequest struct {
	RiderID        string  `json:"rider_id"`
	PickupLat      float64 `json:"pickup_lat"`
	PickupLng      float64 `json:"pickup_lng"`
	DestinationLat float64 `json:"destination_lat"`
	DestinationLng float64 `json:"destination_lng"`
}

// UpdateStatusRequest is the HTTP request body for the status override.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// AcceptRideRequest is the HTTP request body for accepting a ride.
type AcceptRideRequest struct {
	DriverID string `json:"driver_id"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID        string  `json:"id"`
	RiderID   string  `json:"rider_id"`
	DriverID  string  `json:"driver_id,omitempty"`
	Route     string  `json:"route"`
	Fare      float64 `json:"fare"`
	TimeOfDay string  `json:"time_of_day"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`

	Rider *UserResponse `json:"rider,omitempty"`
}

func toRideResponse(ride *domain.Ride) RideResponse {
	resp := RideResponse{
		ID:        ride.ID,
		RiderID:   ride.RiderID,
		DriverID:  ride.DriverID,
		Route:     ride.Route,
		Fare:      ride.Fare,
		TimeOfDay: ride.TimeOfDay,
		Status:    string(ride.Status),
		CreatedAt: ride.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if ride.Rider != nil {
		rider := toUserResponse(ride.Rider)
		resp.Rider = &rider
	}
	return resp
}

func toRideListResponse(rides []*domain.Ride) []RideResponse {
	out := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		out = append(out, toRideResponse(r))
	}
	return out
}

// RequestRide handles POST /v1/rides
func (h *RideHandler) RequestRide(c *gin.Context) {
	var req RequestRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.RequestRide(c.Request.Context(), service.RequestRideInput{
		RiderID:     req.RiderID,
		Pickup:      fare.Coordinate{Lat: req.PickupLat, Lng: req.PickupLng},
		Destination: fare.Coordinate{Lat: req.DestinationLat, Lng: req.DestinationLng},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// ListRequested handles GET /v1/rides/requested
func (h *RideHandler) ListRequested(c *gin.Context) {
	rides, err := h.rideService.ListRequestedRides(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideListResponse(rides))
}

// Accept handles POST /v1/rides/:id/accept
func (h *RideHandler) Accept(c *gin.Context) {
	rideID := c.Param("id")

	var req AcceptRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.rideService.AcceptRide(c.Request.Context(), rideID, req.DriverID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"message": "ride accepted"})
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// UpdateStatus handles PUT /v1/rides/:id/status
func (h *RideHandler) UpdateStatus(c *gin.Context) {
	rideID := c.Param("id")

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.rideService.UpdateRideStatus(c.Request.Context(), rideID, domain.RideStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"message": "ride status updated"})
}

// HistoryByRider handles GET /v1/rides/history/rider/:id
func (h *RideHandler) HistoryByRider(c *gin.Context) {
	rides, err := h.rideService.ListRideHistoryByRider(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideListResponse(rides))
}

// HistoryByDriver handles GET /v1/rides/history/driver/:id
func (h *RideHandler) HistoryByDriver(c *gin.Context) {
	rides, err := h.rideService.ListRideHistoryByDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideListResponse(rides))
}
