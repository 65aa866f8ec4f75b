package api

import (
	"net/http"

	"github.com/JaimeStill/rively/internal/config"
	"github.com/JaimeStill/rively/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Updates.Handler(cfg.API.MaxBodySizeBytes()).Routes(),
		domain.Prompts.Handler().Routes(),
		newAuditHandler(runtime.Audit.Sink(), runtime.Logger).routes(),
	)
}
