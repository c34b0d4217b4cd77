package handler

import (
	"net/http"

	"github.com/transpass/transpass/internal/api/request"
	"github.com/transpass/transpass/internal/api/response"
	"github.com/transpass/transpass/internal/core"
)

type Auth struct {
	svc *core.AuthService
}

func NewAuth(svc *core.AuthService) *Auth {
	return &Auth{svc: svc}
}

type LoginResponse struct {
	Token string `json:"token"`
}

// Register godoc
//
//	@Summary		Register an account
//	@Description	Creates a company or consumer account. A company account that sends company_name also creates the company it manages. An e-mail address can only be registered once.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		request.Register	true	"Account details"
//	@Success		201		{object}	model.User
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Failure		500		{object}	response.ErrorResponse
//	@Router			/auth/register [post]
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req request.Register
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.Register(r.Context(), core.Registration{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, user)
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Exchanges an e-mail address and password for a signed JWT that is valid for 24 hours.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		request.Login	true	"Credentials"
//	@Success		200		{object}	handler.LoginResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		401		{object}	response.ErrorResponse
//	@Failure		500		{object}	response.ErrorResponse
//	@Router			/auth/login [post]
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req request.Login
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, LoginResponse{Token: token})
}
