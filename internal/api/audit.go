package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/rively/internal/audit"
	"github.com/JaimeStill/rively/pkg/handlers"
	"github.com/JaimeStill/rively/pkg/routes"
)

type auditHandler struct {
	sink   audit.Sink
	logger *slog.Logger
}

func newAuditHandler(sink audit.Sink, logger *slog.Logger) *auditHandler {
	return &auditHandler{
		sink:   sink,
		logger: logger.With("handler", "audit"),
	}
}

func (h *auditHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/audit",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{target...}", Handler: h.read},
		},
	}
}

// read streams the JSON-lines trail of one target.
func (h *auditHandler) read(w http.ResponseWriter, r *http.Request) {
	target := r.PathValue("target")

	body, err := h.sink.Read(r.Context(), target)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			audit.MapHTTPStatus(err), err,
		)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}
