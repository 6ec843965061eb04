// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

/*
Package stubapi is an in-memory TopLivres API server for local development
and integration tests.

Architecture:

  - store: the dataset plus the business rules (order blocking, stock
    aggregation, stats, admin buckets). No database; state lives for the
    process lifetime and resets on restart.
  - Server: a chi router exposing the full endpoint surface the client
    speaks, with HS256 bearer authentication, role authorization, and a
    CSRF check on every state-changing request.

Error payloads follow the production wire contract: field validation
failures as {"errors": {field: [messages]}}, everything else as
{"msg": "..."}.
*/
package stubapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fleuronvilik/toplivres-devgdk/internal/api"
	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/i18n"
)

// French copy served on business-rule refusals, matching production.
const (
	msgBlockedPending        = i18n.BlockedPending
	msgBlockedReportRequired = i18n.BlockedReportRequired
	msgInvalidCredentials    = "Email ou mot de passe incorrect."
	msgUnauthorized          = i18n.ErrUnauthorized
	msgForbidden             = i18n.ErrForbidden
	msgNotFound              = "Ressource introuvable."
	msgNotConfirmable        = "Cette commande ne peut plus être confirmée."
	msgNotCancellable        = "Cette commande ne peut plus être annulée."
)

// Server is the stub API.
type Server struct {
	store  *store
	log    *slog.Logger
	secret []byte
	csrf   string
}

// New builds a seeded stub server with a fresh signing secret and CSRF
// token.
func New(log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		store:  newStore(),
		log:    log,
		secret: []byte(uuid.NewString()),
		csrf:   uuid.NewString(),
	}
}

// CSRFToken returns the anti-forgery token the server expects in the
// X-CSRF-TOKEN header of mutating requests. The host embeds it into the
// served document.
func (s *Server) CSRFToken() string {
	return s.csrf
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(s.trace)

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/users/me", s.handleMe)
			r.Put("/users", s.handleUpdateProfile)
			r.Put("/users/password", s.handleChangePassword)
			r.Get("/books", s.handleBooks)
			r.Get("/users/inventory", s.handleInventory)
			r.Get("/users/{id}/stats", s.handleStats)

			r.Group(func(r chi.Router) {
				r.Use(s.requireRole("customer"))
				r.Get("/operations", s.handleOperations)
				r.Post("/orders", s.handleCreateOrder)
				r.Post("/sales", s.handleCreateSale)
				r.Delete("/orders/{id}", s.handleCancelOrder)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.requireRole("admin"))
				r.Get("/admin/operations", s.handleAdminOperations)
				r.Put("/admin/orders/{id}/confirm", s.handleConfirmOrder)
				r.Delete("/admin/operations/{id}", s.handleDeleteOperation)
				r.Post("/admin/books", s.handleAddBook)
			})
		})
	})

	return router
}

// # Middleware

// trace echoes the client's correlation ID and logs every request.
func (s *Server) trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requestID := request.Header.Get(api.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		writer.Header().Set(api.HeaderXRequestID, requestID)

		start := time.Now()
		next.ServeHTTP(writer, request)

		s.log.Debug("stub_request",
			slog.String("method", request.Method),
			slog.String("path", request.URL.Path),
			slog.String("request_id", requestID),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// authenticate verifies the bearer token and, on mutations, the CSRF
// header.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		acct := s.accountFromRequest(request)
		if acct == nil {
			writeMsg(writer, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		if request.Method != http.MethodGet && request.Header.Get(api.HeaderCSRFToken) != s.csrf {
			writeMsg(writer, http.StatusForbidden, msgForbidden)
			return
		}
		next.ServeHTTP(writer, request.WithContext(withAccount(request.Context(), acct)))
	})
}

// requireRole restricts a subtree to one role.
func (s *Server) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if acct := accountFrom(request.Context()); acct == nil || acct.Role != role {
				writeMsg(writer, http.StatusForbidden, msgForbidden)
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}

func (s *Server) accountFromRequest(request *http.Request) *account {
	header := request.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return nil
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(header[len(prefix):], claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return s.store.accountByID(id)
}

// # Authentication

func (s *Server) handleLogin(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		writeMsg(writer, http.StatusBadRequest, msgInvalidCredentials)
		return
	}

	s.store.mu.Lock()
	acct := s.store.accountByEmail(body.Email)
	s.store.mu.Unlock()
	if acct == nil || bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(body.Password)) != nil {
		writeMsg(writer, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	token, err := s.issueToken(acct)
	if err != nil {
		writeMsg(writer, http.StatusInternalServerError, i18n.ErrGeneric)
		return
	}
	writeJSON(writer, http.StatusOK, api.LoginResponse{AccessToken: token})
}

// issueToken signs a short-lived HS256 credential carrying the role claim.
func (s *Server) issueToken(acct *account) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatInt(acct.ID, 10),
		"role": acct.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(12 * time.Hour).Unix(),
	})
	return token.SignedString(s.secret)
}

// # Profile

func (s *Server) handleMe(writer http.ResponseWriter, request *http.Request) {
	writeJSON(writer, http.StatusOK, accountFrom(request.Context()).User)
}

func (s *Server) handleUpdateProfile(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		writeErrors(writer, map[string][]string{"body": {i18n.ErrGeneric}})
		return
	}

	acct := accountFrom(request.Context())
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if body.Name != "" {
		acct.Name = body.Name
	}
	if body.Email != "" {
		if other := s.store.accountByEmail(body.Email); other != nil && other.ID != acct.ID {
			writeErrors(writer, map[string][]string{"email": {"Cet email est déjà utilisé."}})
			return
		}
		acct.Email = body.Email
	}
	if body.Phone != "" {
		acct.Phone = body.Phone
	}
	writeJSON(writer, http.StatusOK, acct.User)
}

func (s *Server) handleChangePassword(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		writeErrors(writer, map[string][]string{"body": {i18n.ErrGeneric}})
		return
	}

	acct := accountFrom(request.Context())
	if bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(body.CurrentPassword)) != nil {
		writeErrors(writer, map[string][]string{"current_password": {"Mot de passe actuel incorrect."}})
		return
	}
	if len(body.NewPassword) < 8 {
		writeErrors(writer, map[string][]string{"new_password": {"8 caractères minimum."}})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeMsg(writer, http.StatusInternalServerError, i18n.ErrGeneric)
		return
	}
	s.store.mu.Lock()
	acct.PasswordHash = hash
	s.store.mu.Unlock()
	writer.WriteHeader(http.StatusNoContent)
}

// # Catalogue & customer resources

func (s *Server) handleBooks(writer http.ResponseWriter, request *http.Request) {
	s.store.mu.Lock()
	books := append([]api.Book{}, s.store.books...)
	s.store.mu.Unlock()
	writeJSON(writer, http.StatusOK, api.Envelope[[]api.Book]{Data: books})
}

func (s *Server) handleInventory(writer http.ResponseWriter, request *http.Request) {
	acct := accountFrom(request.Context())
	customerID := acct.ID
	if raw := request.URL.Query().Get("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeMsg(writer, http.StatusBadRequest, msgNotFound)
			return
		}
		// id 0 means "self"; customers may only read their own inventory.
		if id > 0 {
			if acct.Role != "admin" && id != acct.ID {
				writeMsg(writer, http.StatusForbidden, msgForbidden)
				return
			}
			customerID = id
		}
	}

	s.store.mu.Lock()
	rows := s.store.inventory(customerID)
	s.store.mu.Unlock()
	writeJSON(writer, http.StatusOK, api.Envelope[[]api.InventoryRow]{Data: rows})
}

func (s *Server) handleStats(writer http.ResponseWriter, request *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(request, "id"), 10, 64)
	if err != nil {
		writeMsg(writer, http.StatusBadRequest, msgNotFound)
		return
	}
	acct := accountFrom(request.Context())
	if acct.Role != "admin" && id != acct.ID {
		writeMsg(writer, http.StatusForbidden, msgForbidden)
		return
	}

	s.store.mu.Lock()
	stats := s.store.stats(id)
	s.store.mu.Unlock()
	writeJSON(writer, http.StatusOK, api.Envelope[api.Stats]{Data: stats})
}

func (s *Server) handleOperations(writer http.ResponseWriter, request *http.Request) {
	acct := accountFrom(request.Context())
	typeFilter := request.URL.Query().Get("type")

	s.store.mu.Lock()
	ops := s.store.customerOperations(acct.ID, typeFilter)
	s.store.mu.Unlock()
	writeJSON(writer, http.StatusOK, api.Envelope[[]api.Operation]{Data: ops})
}

// # Customer mutations

// operationBody is the shared payload of order and sale submissions.
type operationBody struct {
	Items []api.OperationItem `json:"items"`
}

func (s *Server) decodeItems(writer http.ResponseWriter, request *http.Request) ([]api.OperationItem, bool) {
	var body operationBody
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil || len(body.Items) == 0 {
		writeErrors(writer, map[string][]string{"items": {"Sélectionne au moins un livre."}})
		return nil, false
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for _, item := range body.Items {
		if _, ok := s.store.bookByID(item.BookID); !ok || item.Quantity <= 0 {
			writeErrors(writer, map[string][]string{"items": {"Article invalide."}})
			return nil, false
		}
	}
	return body.Items, true
}

func (s *Server) handleCreateOrder(writer http.ResponseWriter, request *http.Request) {
	acct := accountFrom(request.Context())
	items, ok := s.decodeItems(writer, request)
	if !ok {
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if reason := s.store.blockedReason(acct.ID); reason != "" {
		writeMsg(writer, http.StatusForbidden, reason)
		return
	}
	op := s.store.addOperation(acct.ID, api.TypeOrder, api.StatusPending, items, time.Now())
	writeJSON(writer, http.StatusCreated, api.Envelope[api.Operation]{Data: *op})
}

func (s *Server) handleCreateSale(writer http.ResponseWriter, request *http.Request) {
	acct := accountFrom(request.Context())
	items, ok := s.decodeItems(writer, request)
	if !ok {
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	stock := s.store.stockByBook(acct.ID)
	fieldErrors := map[string][]string{}
	for _, item := range items {
		if item.Quantity > stock[item.BookID] {
			field := "qty-" + strconv.FormatInt(item.BookID, 10)
			fieldErrors[field] = append(fieldErrors[field], i18n.ValidationExceedsStock(stock[item.BookID]))
		}
	}
	if len(fieldErrors) > 0 {
		writeErrors(writer, fieldErrors)
		return
	}
	op := s.store.addOperation(acct.ID, api.TypeReport, api.StatusRecorded, items, time.Now())
	writeJSON(writer, http.StatusCreated, api.Envelope[api.Operation]{Data: *op})
}

func (s *Server) handleCancelOrder(writer http.ResponseWriter, request *http.Request) {
	acct := accountFrom(request.Context())
	id, err := strconv.ParseInt(chi.URLParam(request, "id"), 10, 64)
	if err != nil {
		writeMsg(writer, http.StatusNotFound, msgNotFound)
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	op, _ := s.store.operationByID(id)
	if op == nil || op.Customer.ID != acct.ID || op.Type != api.TypeOrder {
		writeMsg(writer, http.StatusNotFound, msgNotFound)
		return
	}
	if op.Status != api.StatusPending {
		writeMsg(writer, http.StatusUnprocessableEntity, msgNotCancellable)
		return
	}
	op.Status = api.StatusCancelled
	writer.WriteHeader(http.StatusNoContent)
}

// # Admin

func (s *Server) handleAdminOperations(writer http.ResponseWriter, request *http.Request) {
	s.store.mu.Lock()
	buckets := s.store.adminBuckets()
	s.store.mu.Unlock()
	writeJSON(writer, http.StatusOK, buckets)
}

func (s *Server) handleConfirmOrder(writer http.ResponseWriter, request *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(request, "id"), 10, 64)
	if err != nil {
		writeMsg(writer, http.StatusNotFound, msgNotFound)
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	op, _ := s.store.operationByID(id)
	if op == nil || op.Type != api.TypeOrder {
		writeMsg(writer, http.StatusNotFound, msgNotFound)
		return
	}
	switch op.Status {
	case api.StatusPending:
		op.Status = api.StatusApproved
	case api.StatusApproved:
		op.Status = api.StatusDelivered
	default:
		writeMsg(writer, http.StatusUnprocessableEntity, msgNotConfirmable)
		return
	}
	writeJSON(writer, http.StatusOK, api.Envelope[api.Operation]{Data: *op})
}

func (s *Server) handleDeleteOperation(writer http.ResponseWriter, request *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(request, "id"), 10, 64)
	if err != nil {
		writeMsg(writer, http.StatusNotFound, msgNotFound)
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	op, index := s.store.operationByID(id)
	if op == nil {
		writeMsg(writer, http.StatusNotFound, msgNotFound)
		return
	}
	s.store.operations = append(s.store.operations[:index], s.store.operations[index+1:]...)
	writer.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddBook(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Title     string  `json:"title"`
		UnitPrice float64 `json:"unit_price"`
	}
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		writeErrors(writer, map[string][]string{"body": {i18n.ErrGeneric}})
		return
	}
	fieldErrors := map[string][]string{}
	if body.Title == "" {
		fieldErrors["title"] = append(fieldErrors["title"], i18n.ErrTitle)
	}
	if body.UnitPrice <= 0 {
		fieldErrors["unit_price"] = append(fieldErrors["unit_price"], "Le prix doit être positif.")
	}
	if len(fieldErrors) > 0 {
		writeErrors(writer, fieldErrors)
		return
	}

	s.store.mu.Lock()
	book := s.store.addBook(body.Title, strconv.FormatFloat(body.UnitPrice, 'f', -1, 64))
	s.store.mu.Unlock()
	writeJSON(writer, http.StatusCreated, book)
}

// # Response helpers

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}

func writeMsg(writer http.ResponseWriter, status int, message string) {
	writeJSON(writer, status, map[string]string{"msg": message})
}

func writeErrors(writer http.ResponseWriter, fieldErrors map[string][]string) {
	writeJSON(writer, http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrors})
}
