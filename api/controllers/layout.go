package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/osoriodev/tablebook-backend/api/responses"
	"github.com/osoriodev/tablebook-backend/internal/layout"
	pkgerrors "github.com/osoriodev/tablebook-backend/pkg/errors"
	"github.com/osoriodev/tablebook-backend/pkg/logger"
)

const maxLayoutBytes = 1 << 20

func GetTableLayout(svc layout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blob, err := svc.GetLayout(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, blob)
	}
}

// SaveTableLayout stores the floor plan blob as-is after a shape check.
func SaveTableLayout(svc layout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxLayoutBytes))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading layout body"))
			return
		}

		if err := svc.SaveLayout(r.Context(), json.RawMessage(body)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "saved"})
	}
}
