package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"github.com/taskhive/engine/internal/api/types"
	"github.com/taskhive/engine/internal/models"
	"github.com/taskhive/engine/internal/repository"
)

type AuthHandler struct {
	users      repository.UserRepository
	validate   *validator.Validate
	hmacSecret []byte
}

func NewAuthHandler(users repository.UserRepository, secret []byte) *AuthHandler {
	return &AuthHandler{users: users, validate: validator.New(), hmacSecret: secret}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	ph, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, err)
		return
	}

	u := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(ph),
	}
	if err := h.users.Create(r.Context(), &u); err != nil {
		writeErrorStr(w, http.StatusConflict, "username or email already exists")
		return
	}

	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: u})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	var u models.User
	if err := h.users.GetByEmail(r.Context(), req.Email, &u); err != nil {
		writeErrorStr(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		writeErrorStr(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(u.ID), 10),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString(h.hmacSecret)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data: map[string]any{
			"access_token": tokenString,
			"token_type":   "Bearer",
			"expires_in":   86400,
			"user":         u,
		},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: u})
}

// UpdatePreferences replaces whichever of the three preference blobs the
// request carries and leaves the rest alone.
func (h *AuthHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	var req types.PreferencesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Dashboard != nil {
		b, merr := json.Marshal(req.Dashboard)
		if merr != nil {
			writeErrorStr(w, http.StatusBadRequest, "invalid dashboard preferences")
			return
		}
		u.DashboardPreferences = datatypes.JSON(b)
	}
	if req.Notification != nil {
		b, merr := json.Marshal(req.Notification)
		if merr != nil {
			writeErrorStr(w, http.StatusBadRequest, "invalid notification preferences")
			return
		}
		u.NotificationPreferences = datatypes.JSON(b)
	}
	if req.App != nil {
		b, merr := json.Marshal(req.App)
		if merr != nil {
			writeErrorStr(w, http.StatusBadRequest, "invalid app preferences")
			return
		}
		u.AppPreferences = datatypes.JSON(b)
	}

	if err := h.users.Update(r.Context(), u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: u})
}
