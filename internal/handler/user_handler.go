package handler

import (
	"net/http"

	"sorters-server/internal/middleware"
	"sorters-server/internal/service"
	"sorters-server/pkg/response"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(middleware.GetUserID(r))
	if err != nil {
		response.NotFound(w, "User not found")
		return
	}

	response.Success(w, user)
}
