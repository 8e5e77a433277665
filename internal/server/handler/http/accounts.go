package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/IdentityGrid/internal/labels"
	"github.com/atinyakov/IdentityGrid/internal/models"
	"github.com/atinyakov/IdentityGrid/internal/service"
	"github.com/atinyakov/IdentityGrid/internal/validation"
)

// AccountService defines the account operations required by the
// AccountHandler.
type AccountService interface {
	Create() models.Account
	Get(id string) (models.Account, bool)
	List() []models.Account
	Count() int
	Patch(id string, upd models.AccountUpdate) bool
	Remove(id string) bool
	Clear()
	Validate(form models.AccountForm) validation.Errors
	Submit(id string, form models.AccountForm) (validation.Errors, bool)
}

// AccountHandler handles HTTP requests for the account list.
type AccountHandler struct {
	// AccountService performs the underlying account operations.
	AccountService AccountService
}

// ListResponse is the body of GET /api/accounts.
type ListResponse struct {
	Count    int              `json:"count"`
	Accounts []models.Account `json:"accounts"`
}

// ValidationResponse reports form validation results.
type ValidationResponse struct {
	Valid  bool              `json:"valid"`
	Errors validation.Errors `json:"errors"`
}

// List handles GET /api/accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ListResponse{
		Count:    h.AccountService.Count(),
		Accounts: h.AccountService.List(),
	})
}

// Create handles POST /api/accounts and responds with the new empty account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, h.AccountService.Create())
}

// Clear handles DELETE /api/accounts.
func (h *AccountHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.AccountService.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /api/accounts/{id}.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	acc, ok := h.AccountService.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

// Form handles GET /api/accounts/{id}/form, returning the account with its
// labels joined into a single string.
func (h *AccountHandler) Form(w http.ResponseWriter, r *http.Request) {
	acc, ok := h.AccountService.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, service.FormOf(acc))
}

// Patch handles PATCH /api/accounts/{id}. Fields missing from the body are
// left unchanged.
func (h *AccountHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var upd models.AccountUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if upd.Type != nil && !upd.Type.Valid() {
		http.Error(w, validation.ErrUnknownType.Error(), http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	if !h.AccountService.Patch(id, upd) {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}
	acc, _ := h.AccountService.Get(id)
	writeJSON(w, http.StatusOK, acc)
}

// Submit handles PUT /api/accounts/{id}/form. Invalid forms are answered
// with 422 and the per-field errors; nothing is written in that case.
func (h *AccountHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var form models.AccountForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	errs, found := h.AccountService.Submit(id, form)
	if !found {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}
	if errs.HasErrors() {
		writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{Errors: errs})
		return
	}
	acc, _ := h.AccountService.Get(id)
	writeJSON(w, http.StatusOK, acc)
}

// Delete handles DELETE /api/accounts/{id}.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.AccountService.Remove(chi.URLParam(r, "id")) {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Validate handles POST /api/validate. It checks a form without storing it.
func (h *AccountHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var form models.AccountForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	errs := h.AccountService.Validate(form)
	writeJSON(w, http.StatusOK, ValidationResponse{Valid: !errs.HasErrors(), Errors: errs})
}

// ParseLabels handles POST /api/labels/parse with a {"text": "..."} body.
func ParseLabels(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.LabelItem{"labels": labels.Parse(req.Text)})
}

// StringifyLabels handles POST /api/labels/stringify with a
// {"labels": [...]} body.
func StringifyLabels(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Labels []models.LabelItem `json:"labels"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": labels.Stringify(req.Labels)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
