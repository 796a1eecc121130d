package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chainride/internal/domain"
	"chainride/internal/service"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRequest is the HTTP request body for registering a user.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Contact         string `json:"contact"`
	CurrentLocation string `json:"current_location"`
	ImageURL        string `json:"image_url"`
	Role            string `json:"role"`
}

// LoginRequest is the HTTP request body for logging in.
type LoginRequest struct {
	Email string `json:"email"`
}

// UserResponse is the HTTP representation of a user.
type UserResponse struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Contact         string `json:"contact,omitempty"`
	CurrentLocation string `json:"current_location,omitempty"`
	ImageURL        string `json:"image_url,omitempty"`
	Role            string `json:"role"`
	LedgerAddress   string `json:"ledger_address"`
	CreatedAt       string `json:"created_at"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		Contact:         user.Contact,
		CurrentLocation: user.CurrentLocation,
		ImageURL:        user.ImageURL,
		Role:            string(user.Role),
		LedgerAddress:   user.LedgerAddress,
		CreatedAt:       user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Register handles POST /v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Contact:         req.Contact,
		CurrentLocation: req.CurrentLocation,
		ImageURL:        req.ImageURL,
		Role:            domain.UserRole(req.Role),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toUserResponse(user))
}

// Login handles POST /v1/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.userService.Login(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// GetByID handles GET /v1/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toUserResponse(user))
}
