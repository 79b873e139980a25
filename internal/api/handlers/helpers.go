package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskhive/engine/internal/api/middleware"
	"github.com/taskhive/engine/internal/api/types"
	"github.com/taskhive/engine/internal/models"
	"github.com/taskhive/engine/internal/repository"
	appErr "github.com/taskhive/engine/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError derives the status from the error code.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, types.HTTPStatus(err), types.APIResponse{Success: false, Error: types.FromAppError(err)})
}

func writeErrorStr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.APIResponse{Success: false, Error: &types.APIError{Code: string(appErr.CodeInvalid), Message: msg}})
}

// currentUser loads the authenticated user set by the auth middleware.
func currentUser(r *http.Request, users repository.UserRepository) (*models.User, error) {
	uid := middleware.GetUserID(r.Context())
	if uid == 0 {
		return nil, appErr.New(appErr.CodeUnauthorized, "authentication required")
	}
	var u models.User
	if err := users.GetByID(r.Context(), uid, &u); err != nil {
		return nil, appErr.New(appErr.CodeUnauthorized, "authentication required")
	}
	return &u, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return parseUUIDParam(chi.URLParam(r, name), name)
}

func parseUUIDParam(raw, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, appErr.FieldError(name, "must be a valid uuid")
	}
	return id, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return appErr.New(appErr.CodeInvalid, "invalid json")
	}
	return nil
}
