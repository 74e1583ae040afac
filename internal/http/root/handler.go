// Package root serves the greeting at the service root.
package root

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	applog "github.com/janisto/cicd-demo/internal/platform/logging"
)

const (
	message = "Hello from CI/CD Pipeline!"
	status  = "running"
)

// Register wires the root route into the provided API router.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "read-root",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Greeting",
		Description: "Returns a static greeting showing the service is up.",
		Tags:        []string{"root"},
	}, getHandler)
}

func getHandler(ctx context.Context, _ *struct{}) (*Output, error) {
	applog.LoggerFromContext(ctx).Debug("root get")
	return &Output{Body: Data{Message: message, Status: status}}, nil
}
