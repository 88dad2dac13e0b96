package serverutils

// ApiResponse is the uniform success envelope for REST endpoints.
type ApiResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) ApiResponse {
	return ApiResponse{
		Message: message,
		Data:    data,
	}
}
