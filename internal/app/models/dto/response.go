package dto

// PingResponse is returned by the liveness endpoint
type PingResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
