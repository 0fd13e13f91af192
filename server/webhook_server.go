package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tablevox/tablevox/call"
	"github.com/tablevox/tablevox/config"
	"github.com/tablevox/tablevox/dialog"
	"github.com/tablevox/tablevox/store"
	"github.com/tablevox/tablevox/twiml"
)

// WebhookServer receives the telephony provider's voice webhooks and
// serves the operational endpoints.
type WebhookServer struct {
	httpServer *http.Server
	controller *dialog.Controller
	registry   *call.Registry
	store      *store.Store
	config     *config.Config
}

// NewWebhookServer wires the HTTP routes to the dialogue controller.
func NewWebhookServer(cfg *config.Config, controller *dialog.Controller, registry *call.Registry, st *store.Store) *WebhookServer {
	s := &WebhookServer{
		controller: controller,
		registry:   registry,
		store:      st,
		config:     cfg,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/voice/incoming", s.handleIncoming)
	mux.HandleFunc("/voice/gather", s.handleGather)
	mux.HandleFunc("/voice/confirm", s.handleConfirm)
	mux.HandleFunc("/voice/status", s.handleStatus)
	mux.HandleFunc("/stats/early-disconnections", s.handleEarlyDisconnects)
	mux.HandleFunc("/reservations/today", s.handleTodaysReservations)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	return s
}

// Start begins listening for webhooks
func (s *WebhookServer) Start() error {
	addr := s.httpServer.Addr
	log.Printf("📞 Voice webhook server starting on %s", addr)
	log.Printf("📡 Incoming call endpoint: http://localhost%s/voice/incoming", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *WebhookServer) Shutdown(ctx context.Context) error {
	log.Println("Shutting down webhook server...")
	return s.httpServer.Shutdown(ctx)
}

// GetAddr returns the server's listen address (for logging in main)
func (s *WebhookServer) GetAddr() string {
	return s.httpServer.Addr
}

func (s *WebhookServer) handleIncoming(w http.ResponseWriter, r *http.Request) {
	callID := r.FormValue("CallSid")
	from := r.FormValue("From")
	if callID == "" {
		http.Error(w, "missing CallSid", http.StatusBadRequest)
		return
	}
	log.Printf("📞 Incoming call from %s with CallSid %s", from, callID)

	directive := s.controller.HandleIncoming(callID, from)
	writeTwiML(w, twiml.Render(directive))
}

func (s *WebhookServer) handleGather(w http.ResponseWriter, r *http.Request) {
	callID := r.FormValue("CallSid")
	speech := r.FormValue("SpeechResult")
	if callID == "" {
		http.Error(w, "missing CallSid", http.StatusBadRequest)
		return
	}

	directive := s.controller.HandleSpeech(r.Context(), callID, speech)
	writeTwiML(w, twiml.Render(directive))
}

func (s *WebhookServer) handleConfirm(w http.ResponseWriter, r *http.Request) {
	callID := r.FormValue("CallSid")
	digits := r.FormValue("Digits")
	speech := r.FormValue("SpeechResult")
	if callID == "" {
		http.Error(w, "missing CallSid", http.StatusBadRequest)
		return
	}
	log.Printf("🔢 Confirmation for call %s: digits=%q speech=%q", callID, digits, speech)

	directive := s.controller.HandleConfirmation(r.Context(), callID, digits, speech)
	writeTwiML(w, twiml.Render(directive))
}

func (s *WebhookServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	callID := r.FormValue("CallSid")
	status := r.FormValue("CallStatus")
	duration := r.FormValue("CallDuration")
	log.Printf("📋 Call %s status: %s, duration: %s", callID, status, duration)

	if callID != "" {
		s.controller.HandleStatus(callID, status, duration)
	}
	writeTwiML(w, twiml.Empty())
}

func (s *WebhookServer) handleEarlyDisconnects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.registry.EarlyDisconnects())
}

func (s *WebhookServer) handleTodaysReservations(w http.ResponseWriter, r *http.Request) {
	today := time.Now().Format("2006-01-02")
	entries, err := s.store.ReservationsOn(r.Context(), today)
	if err != nil {
		log.Printf("❌ Failed to list today's reservations: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"date":         today,
		"reservations": entries,
	})
}

func (s *WebhookServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","server":"voice","active_calls":%d}`, s.registry.ActiveCount())
}

func writeTwiML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/xml")
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
