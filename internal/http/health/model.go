package health

// Response is the payload for the health endpoint.
type Response struct {
	Status string `json:"status" doc:"Health state" example:"healthy"`
}

// Output is the response envelope for GET /health.
type Output struct {
	Body Response
}
