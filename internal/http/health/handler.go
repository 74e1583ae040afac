// Package health serves the liveness probe.
package health

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Path is where the health check is served. Infrastructure middleware uses it
// to exempt probes from throttling.
const Path = "/health"

// Register wires the health check into the provided API router.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        Path,
		Summary:     "Health check",
		Description: "Reports that the process is up and serving requests.",
		Tags:        []string{"health"},
	}, handler)
}

func handler(_ context.Context, _ *struct{}) (*Output, error) {
	return &Output{Body: Response{Status: "healthy"}}, nil
}
