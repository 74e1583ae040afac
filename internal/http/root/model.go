package root

// Data models the greeting returned by the service root.
type Data struct {
	Message string `json:"message" doc:"Greeting message" example:"Hello from CI/CD Pipeline!"`
	Status  string `json:"status" doc:"Service state" example:"running"`
}

// Output is the response envelope for GET /.
type Output struct {
	Body Data
}
