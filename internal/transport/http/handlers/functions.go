package handlers

import (
	"context"
	"net/http"

	"github.com/raknago/parking-backend/internal/application/otp"
	"github.com/raknago/parking-backend/internal/domain"
	"github.com/raknago/parking-backend/internal/transport/http/dto"
	"github.com/raknago/parking-backend/internal/transport/http/response"
)

type OTPSender interface {
	Send(ctx context.Context, req otp.Request) (otp.Result, error)
}

// FunctionsHandler serves callable functions. Callers need not be
// authenticated: the OTP mail is part of the second login factor.
type FunctionsHandler struct {
	otp OTPSender
}

func NewFunctionsHandler(s OTPSender) *FunctionsHandler {
	return &FunctionsHandler{otp: s}
}

// SendOTPEmail handles POST /functions/v1/sendOTPEmail
func (h *FunctionsHandler) SendOTPEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.SendOTPEmailRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteCallableError(w, r, domain.ErrInvalidArgument("Email and OTP are required"))
		return
	}

	res, err := h.otp.Send(r.Context(), req.Data)
	if err != nil {
		response.WriteCallableError(w, r, err)
		return
	}
	response.WriteCallableResult(w, res)
}
