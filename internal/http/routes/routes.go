// Package routes is the single place API operations are registered.
package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/cicd-demo/internal/http/health"
	"github.com/janisto/cicd-demo/internal/http/root"
)

// Register wires all HTTP routes into the provided API router.
func Register(api huma.API) {
	root.Register(api)
	health.Register(api)
}
