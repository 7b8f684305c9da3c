package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/giygas/pharmainsight-api/accounts"
	"github.com/giygas/pharmainsight-api/interfaces"
	"github.com/giygas/pharmainsight-api/logging"
	"github.com/go-chi/chi/v5"
)

// Compile-time check to ensure accounts.Store implements AccountStore
var _ interfaces.AccountStore = (*accounts.Store)(nil)

// AccountHandler serves the account endpoints
type AccountHandler struct {
	store     interfaces.AccountStore
	validator interfaces.InputValidator
}

func NewAccountHandler(store interfaces.AccountStore, validator interfaces.InputValidator) *AccountHandler {
	return &AccountHandler{
		store:     store,
		validator: validator,
	}
}

type createAccountRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateAccount handles POST /accounts
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	email, err := h.validator.ValidateEmail(req.Email)
	if err == nil {
		err = h.validator.ValidateAccountName(req.Name)
	}
	if err == nil {
		err = h.validator.ValidatePhone(req.Phone)
	}
	if err == nil {
		err = h.validator.ValidatePassword(req.Password)
	}
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, kindInvalidInput, err.Error())
		return
	}

	account, err := h.store.CreateAccount(r.Context(), accounts.NewAccount{
		Name:     req.Name,
		Email:    email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, accounts.ErrEmailTaken) {
			RespondWithError(w, http.StatusConflict, kindConflict, "An account with this email already exists")
			return
		}
		logging.Error("Failed to create account", "error", err)
		RespondWithError(w, http.StatusInternalServerError, kindInternal, "Failed to create account")
		return
	}

	RespondWithJSON(w, http.StatusCreated, account)
}

// Login handles POST /accounts/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	email, err := h.validator.ValidateEmail(req.Email)
	if err != nil || req.Password == "" {
		RespondWithError(w, http.StatusUnauthorized, kindUnauthorized, accounts.ErrInvalidCredentials.Error())
		return
	}

	account, err := h.store.FindByCredentials(r.Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			RespondWithError(w, http.StatusUnauthorized, kindUnauthorized, accounts.ErrInvalidCredentials.Error())
			return
		}
		logging.Error("Failed to verify credentials", "error", err)
		RespondWithError(w, http.StatusInternalServerError, kindInternal, "Failed to verify credentials")
		return
	}

	RespondWithJSON(w, http.StatusOK, account)
}

// GetAccount handles GET /accounts/{id}. The caller authenticates with HTTP
// Basic credentials and may only read its own account.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := h.validator.ValidateAccountID(idStr)
	if err != nil {
		logging.Warn("Unusual user input", "id", idStr)
		RespondWithError(w, http.StatusBadRequest, kindInvalidInput, "Invalid account id")
		return
	}

	if caller.ID != id {
		logging.Warn("Account read denied", "caller", caller.ID, "id", id)
		RespondWithError(w, http.StatusForbidden, kindForbidden, "Access to this account is not allowed")
		return
	}

	account, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			RespondWithError(w, http.StatusNotFound, kindNotFound, "Account not found")
			return
		}
		logging.Error("Failed to load account", "id", id, "error", err)
		RespondWithError(w, http.StatusInternalServerError, kindInternal, "Failed to load account")
		return
	}

	RespondWithJSON(w, http.StatusOK, account)
}

// authenticate verifies the Basic credentials on r. Returns false when a
// response was already written.
func (h *AccountHandler) authenticate(w http.ResponseWriter, r *http.Request) (*accounts.Account, bool) {
	user, password, ok := r.BasicAuth()
	if !ok || password == "" {
		w.Header().Set("WWW-Authenticate", `Basic realm="accounts"`)
		RespondWithError(w, http.StatusUnauthorized, kindUnauthorized, "Authentication required")
		return nil, false
	}

	email, err := h.validator.ValidateEmail(user)
	if err != nil {
		RespondWithError(w, http.StatusUnauthorized, kindUnauthorized, accounts.ErrInvalidCredentials.Error())
		return nil, false
	}

	account, err := h.store.FindByCredentials(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			RespondWithError(w, http.StatusUnauthorized, kindUnauthorized, accounts.ErrInvalidCredentials.Error())
			return nil, false
		}
		logging.Error("Failed to verify credentials", "error", err)
		RespondWithError(w, http.StatusInternalServerError, kindInternal, "Failed to verify credentials")
		return nil, false
	}

	return account, true
}

// decodeJSONBody decodes the request body into dst and answers 400 on
// malformed input. Returns false when a response was already written.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			RespondWithError(w, http.StatusRequestEntityTooLarge, kindInvalidInput, "Request body too large")
			return false
		}
		RespondWithError(w, http.StatusBadRequest, kindInvalidInput, "Invalid JSON body")
		return false
	}
	return true
}
