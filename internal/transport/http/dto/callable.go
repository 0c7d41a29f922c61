package dto

import "github.com/raknago/parking-backend/internal/application/otp"

// SendOTPEmailRequest is the callable envelope {"data": {...}}.
type SendOTPEmailRequest struct {
	Data otp.Request `json:"data"`
}
