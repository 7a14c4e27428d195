package handlers

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid request"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse acknowledges a control request.
type SuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Live stream stopped successfully"`
}
