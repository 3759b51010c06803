package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hoteldesk/internal/chat"
	"hoteldesk/internal/loyalty"
	"hoteldesk/internal/messaging"
	"hoteldesk/internal/metrics"
	"hoteldesk/internal/registration"
	"hoteldesk/internal/repo"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies exposes core services to the HTTP handlers.
type Dependencies struct {
	Store        repo.Store
	Chat         *chat.Engine
	Registration *registration.Service
	Messaging    *messaging.Service
}

// Server wraps an http.Server with predefined routes.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	metrics    *metrics.Metrics
	deps       Dependencies
	basePath   string
}

// New creates a new HTTP server listening on addr with health, metrics, chat
// and admin endpoints.
func New(addr string, logger *slog.Logger, metricRegistry *metrics.Metrics, deps Dependencies, basePath string) *Server {
	server := &Server{
		logger:   logger.With("component", "http"),
		metrics:  metricRegistry,
		deps:     deps,
		basePath: normaliseBasePath(basePath),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", server.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/chat/auth", server.handleChatAuth)
	mux.HandleFunc("/chat/message", server.handleChatMessage)
	mux.HandleFunc("/chat/session", server.handleChatSession)

	mux.HandleFunc("/admin/clients", server.adminOnly(server.handleClients))
	mux.HandleFunc("/admin/clients/", server.adminOnly(server.handleClientHistory))
	mux.HandleFunc("/admin/rooms", server.adminOnly(server.handleRooms))
	mux.HandleFunc("/admin/room-types", server.adminOnly(server.handleRoomTypes))
	mux.HandleFunc("/admin/messages/send", server.adminOnly(server.handleSendMessage))
	mux.HandleFunc("/admin/notifications", server.adminOnly(server.handleNotifications))
	mux.HandleFunc("/admin/notifications/read", server.adminOnly(server.handleNotificationRead))

	handler := mountWithBasePath(server.basePath, mux)

	server.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if server.basePath != "" {
		server.logger.Info("http server configured with base path", "base_path", server.basePath)
	}

	return server
}

// Start begins listening for incoming HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}

// adminOnly gates a handler behind the admins allow-list. The caller
// identifies with the X-Admin-Phone header.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := strings.TrimSpace(r.Header.Get("X-Admin-Phone"))
		if phone == "" {
			writeError(w, http.StatusUnauthorized, "missing X-Admin-Phone header")
			return
		}
		ok, err := s.deps.Store.IsAdminPhone(r.Context(), phone)
		if err != nil {
			s.logger.Error("admin check failed", "error", err)
			writeError(w, http.StatusInternalServerError, "admin check failed")
			return
		}
		if !ok {
			writeError(w, http.StatusForbidden, "not an admin")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

type chatAuthRequest struct {
	WhatsappNumber string `json:"whatsapp_number"`
	CountryCode    string `json:"country_code"`
}

func (s *Server) handleChatAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req chatAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.WhatsappNumber) == "" {
		writeError(w, http.StatusBadRequest, "whatsapp_number is required")
		return
	}

	session, welcome, err := s.deps.Chat.Authenticate(r.Context(), req.WhatsappNumber, req.CountryCode)
	if err != nil {
		if errors.Is(err, chat.ErrUnknownNumber) {
			writeError(w, http.StatusNotFound, "Aucun client trouvé avec ce numéro. Veuillez vous enregistrer à la réception.")
			return
		}
		s.logger.Error("chat auth failed", "error", err)
		writeError(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	writeJSON(w, map[string]any{
		"session_id": session.ID,
		"welcome":    welcome,
		"client": map[string]any{
			"full_name":      session.FullName,
			"fidelite_score": session.Score,
			"is_vip":         session.IsVIP,
		},
	})
}

type chatMessageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.SessionID == "" || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "session_id and message are required")
		return
	}

	reply, intentName, err := s.deps.Chat.HandleMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrSessionExpired) {
			writeError(w, http.StatusGone, "session expired, authenticate again")
			return
		}
		s.logger.Error("chat message failed", "error", err)
		writeError(w, http.StatusInternalServerError, "message handling failed")
		return
	}

	writeJSON(w, map[string]string{
		"reply":  reply,
		"intent": intentName,
	})
}

func (s *Server) handleChatSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	session, err := s.deps.Chat.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, chat.ErrSessionExpired) {
			writeError(w, http.StatusGone, "session expired, authenticate again")
			return
		}
		s.logger.Error("session fetch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "session fetch failed")
		return
	}

	writeJSON(w, map[string]any{
		"session_id": session.ID,
		"messages":   session.Messages,
	})
}

type registerRequest struct {
	Nom                 string `json:"nom"`
	Postnom             string `json:"postnom"`
	Prenom              string `json:"prenom"`
	Adresse             string `json:"adresse"`
	PaysOrigine         string `json:"pays_origine"`
	PhoneNumber         string `json:"phone_number"`
	WhatsappNumber      string `json:"whatsapp_number"`
	WhatsappCountryCode string `json:"whatsapp_country_code"`
	Email               string `json:"email"`
	DocumentType        string `json:"document_type"`
	Commentaire         string `json:"commentaire"`
	NumberOfDays        int    `json:"number_of_days"`
	RoomID              string `json:"room_id"`
	ByReceptionist      bool   `json:"by_receptionist"`
}

func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleRegisterClient(w, r)
	case http.MethodGet:
		s.handleListClients(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRegisterClient(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	result, err := s.deps.Registration.Register(r.Context(), registration.Input{
		Nom:                 req.Nom,
		Postnom:             req.Postnom,
		Prenom:              req.Prenom,
		Adresse:             req.Adresse,
		PaysOrigine:         req.PaysOrigine,
		PhoneNumber:         req.PhoneNumber,
		WhatsappNumber:      req.WhatsappNumber,
		WhatsappCountryCode: req.WhatsappCountryCode,
		Email:               req.Email,
		DocumentType:        req.DocumentType,
		Commentaire:         req.Commentaire,
		NumberOfDays:        req.NumberOfDays,
		RoomID:              req.RoomID,
		ByReceptionist:      req.ByReceptionist,
	})
	if err != nil {
		switch {
		case errors.Is(err, registration.ErrMissingName),
			errors.Is(err, registration.ErrMissingWhatsapp),
			errors.Is(err, registration.ErrMissingRoom):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, registration.ErrRoomUnavailable):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, repo.ErrNotFound):
			writeError(w, http.StatusNotFound, "room not found")
		default:
			s.logger.Error("registration failed", "error", err)
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	writeJSONStatus(w, http.StatusCreated, map[string]any{
		"client":      clientView(*result.Client),
		"reservation": reservationView(result.Reservation),
		"returning":   result.Returning,
	})
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.deps.Store.ListClients(r.Context())
	if err != nil {
		s.logger.Error("failed listing clients", "error", err)
		writeError(w, http.StatusInternalServerError, "failed listing clients")
		return
	}

	views := make([]map[string]any, 0, len(clients))
	for _, c := range clients {
		// Listings recompute the score from the stay aggregates so stale
		// stored values never reach the admin UI.
		c.FideliteScore = loyalty.Score(c.TotalSejours, c.TotalNuits, c.HasEmail())
		views = append(views, clientView(c))
	}
	writeJSON(w, map[string]any{"clients": views, "count": len(views)})
}

// handleClientHistory serves /admin/clients/{id}/reservations and
// /admin/clients/{id}/messages.
func (s *Server) handleClientHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/admin/clients/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	clientID, resource := parts[0], parts[1]

	if _, err := s.deps.Store.GetClientByID(r.Context(), clientID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "client not found")
			return
		}
		s.logger.Error("client lookup failed", "client_id", clientID, "error", err)
		writeError(w, http.StatusInternalServerError, "client lookup failed")
		return
	}

	switch resource {
	case "reservations":
		reservations, err := s.deps.Store.ListClientReservations(r.Context(), clientID)
		if err != nil {
			s.logger.Error("failed listing reservations", "client_id", clientID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed listing reservations")
			return
		}
		views := make([]map[string]any, 0, len(reservations))
		for i := range reservations {
			views = append(views, reservationView(&reservations[i]))
		}
		writeJSON(w, map[string]any{"reservations": views, "count": len(views)})
	case "messages":
		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}
		logs, err := s.deps.Store.ListClientMessageLogs(r.Context(), clientID, limit)
		if err != nil {
			s.logger.Error("failed listing message logs", "client_id", clientID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed listing message logs")
			return
		}
		views := make([]map[string]any, 0, len(logs))
		for _, l := range logs {
			views = append(views, messageLogView(l))
		}
		writeJSON(w, map[string]any{"messages": views, "count": len(views)})
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var (
		rooms []repo.Room
		err   error
	)
	if r.URL.Query().Get("available") == "true" {
		rooms, err = s.deps.Store.ListAvailableRooms(r.Context(), r.URL.Query().Get("room_type_id"))
	} else {
		rooms, err = s.deps.Store.ListRooms(r.Context())
	}
	if err != nil {
		s.logger.Error("failed listing rooms", "error", err)
		writeError(w, http.StatusInternalServerError, "failed listing rooms")
		return
	}

	writeJSON(w, map[string]any{"rooms": rooms, "count": len(rooms)})
}

func (s *Server) handleRoomTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	roomTypes, err := s.deps.Store.ListRoomTypes(r.Context())
	if err != nil {
		s.logger.Error("failed listing room types", "error", err)
		writeError(w, http.StatusInternalServerError, "failed listing room types")
		return
	}
	writeJSON(w, map[string]any{"room_types": roomTypes, "count": len(roomTypes)})
}

type sendMessageRequest struct {
	ClientID string `json:"client_id"`
	Trigger  string `json:"trigger"`
	WithLink bool   `json:"with_link"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.ClientID == "" {
		writeError(w, http.StatusBadRequest, "client_id is required")
		return
	}

	result, err := s.deps.Messaging.SendSmart(r.Context(), messaging.SendRequest{
		ClientID: req.ClientID,
		Trigger:  req.Trigger,
		WithLink: req.WithLink,
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "client not found")
			return
		}
		s.logger.Error("smart message send failed", "client_id", req.ClientID, "error", err)
		if result != nil {
			// Send failed but was logged; report the composed payload.
			writeJSONStatus(w, http.StatusBadGateway, map[string]any{
				"category": string(result.Category),
				"statut":   result.Statut,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "send failed")
		return
	}

	writeJSON(w, map[string]any{
		"category": string(result.Category),
		"message":  result.Text,
		"statut":   result.Statut,
	})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	notifications, err := s.deps.Store.ListNotifications(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed listing notifications", "error", err)
		writeError(w, http.StatusInternalServerError, "failed listing notifications")
		return
	}
	writeJSON(w, map[string]any{"notifications": notifications, "count": len(notifications)})
}

type notificationReadRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req notificationReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := s.deps.Store.MarkNotificationRead(r.Context(), req.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		s.logger.Error("failed marking notification read", "id", req.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed marking notification read")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func clientView(c repo.Client) map[string]any {
	return map[string]any{
		"id":             c.ID,
		"matricule":      c.Matricule,
		"full_name":      c.FullName,
		"whatsapp":       c.WhatsappNumber,
		"email":          c.Email,
		"total_sejours":  c.TotalSejours,
		"total_nuits":    c.TotalNuits,
		"fidelite_score": c.FideliteScore,
		"tier":           loyalty.TierFor(c.FideliteScore),
		"is_vip":         c.IsVIP,
		"is_duplicate":   c.IsDuplicate,
		"tags":           c.Tags,
		"statut":         c.Statut,
	}
}

func messageLogView(l repo.MessageLog) map[string]any {
	return map[string]any{
		"id":          l.ID,
		"template_id": l.TemplateID,
		"canal":       l.Canal,
		"statut":      l.Statut,
		"content":     l.Content,
		"created_at":  l.CreatedAt.Format(time.RFC3339),
	}
}

func reservationView(res *repo.Reservation) map[string]any {
	return map[string]any{
		"id":             res.ID,
		"room_id":        res.RoomID,
		"check_in_date":  res.CheckInDate.Format("2006-01-02"),
		"check_out_date": res.CheckOutDate.Format("2006-01-02"),
		"number_of_days": res.NumberOfDays,
		"total_price":    res.TotalPrice,
		"status":         res.Status,
	}
}

func mountWithBasePath(basePath string, handler http.Handler) http.Handler {
	if basePath == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, basePath) {
			http.NotFound(w, r)
			return
		}
		if len(r.URL.Path) > len(basePath) && r.URL.Path[len(basePath)] != '/' {
			http.NotFound(w, r)
			return
		}
		trimmed := strings.TrimPrefix(r.URL.Path, basePath)
		if trimmed == "" {
			trimmed = "/"
		}
		r.URL.Path = trimmed
		if r.URL.RawPath != "" {
			rawTrimmed := strings.TrimPrefix(r.URL.RawPath, basePath)
			if rawTrimmed == "" {
				rawTrimmed = "/"
			}
			r.URL.RawPath = rawTrimmed
		}
		handler.ServeHTTP(w, r)
	})
}

func normaliseBasePath(base string) string {
	base = strings.TrimSpace(base)
	if base == "" || base == "/" {
		return ""
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return strings.TrimSuffix(base, "/")
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode json", http.StatusInternalServerError)
	}
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
