// Package http exposes the tab, expense, settlement and notification services
// as a JSON API.
package http

import (
	"fmt"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gorilla/mux"

	"partytab-backend/internal/metrics"
	"partytab-backend/internal/security"
	"partytab-backend/internal/service"
)

type Server struct {
	tabs          service.TabService
	expenses      service.ExpenseService
	settlements   service.SettlementService
	notifications service.NotificationService
	tokens        security.TokenManager
	metrics       *metrics.Metrics

	validator  *validator.Validate
	translator ut.Translator
}

func NewServer(
	tabs service.TabService,
	expenses service.ExpenseService,
	settlements service.SettlementService,
	notifications service.NotificationService,
	tokens security.TokenManager,
	m *metrics.Metrics,
) (*Server, error) {
	v := validator.New()
	eng := en.New()
	uni := ut.New(eng, eng)
	trans, found := uni.GetTranslator("en")
	if !found {
		return nil, fmt.Errorf("translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("failed to register validator translations: %w", err)
	}

	return &Server{
		tabs:          tabs,
		expenses:      expenses,
		settlements:   settlements,
		notifications: notifications,
		tokens:        tokens,
		metrics:       m,
		validator:     v,
		translator:    trans,
	}, nil
}

// Router builds the route table. Route names double as security config keys.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestID, s.observe, s.authenticate)

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet).Name("Healthz")
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet).Name("Metrics")

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/tabs", s.createTab).Methods(http.MethodPost).Name("CreateTab")
	api.HandleFunc("/tabs", s.listTabs).Methods(http.MethodGet).Name("ListTabs")
	api.HandleFunc("/tabs/{tabID:[0-9]+}", s.getTab).Methods(http.MethodGet).Name("GetTab")
	api.HandleFunc("/tabs/{tabID:[0-9]+}/close", s.closeTab).Methods(http.MethodPost).Name("CloseTab")
	api.HandleFunc("/tabs/{tabID:[0-9]+}/participants", s.addParticipant).Methods(http.MethodPost).Name("AddParticipant")
	api.HandleFunc("/tabs/{tabID:[0-9]+}/participants/{participantID:[0-9]+}/claim", s.claimParticipant).
		Methods(http.MethodPost).Name("ClaimParticipant")

	api.HandleFunc("/tabs/{tabID:[0-9]+}/expenses", s.listExpenses).Methods(http.MethodGet).Name("ListExpenses")
	api.HandleFunc("/tabs/{tabID:[0-9]+}/expenses", s.createExpense).Methods(http.MethodPost).Name("CreateExpense")
	api.HandleFunc("/tabs/{tabID:[0-9]+}/expenses/{expenseID:[0-9]+}", s.getExpense).Methods(http.MethodGet).Name("GetExpense")
	api.HandleFunc("/tabs/{tabID:[0-9]+}/expenses/{expenseID:[0-9]+}", s.updateExpense).Methods(http.MethodPut).Name("UpdateExpense")
	api.HandleFunc("/tabs/{tabID:[0-9]+}/expenses/{expenseID:[0-9]+}", s.deleteExpense).Methods(http.MethodDelete).Name("DeleteExpense")

	api.HandleFunc("/tabs/{tabID:[0-9]+}/settlement", s.getSettlement).Methods(http.MethodGet).Name("GetSettlement")
	api.HandleFunc("/tabs/{tabID:[0-9]+}/acknowledgements", s.listAcknowledgements).Methods(http.MethodGet).Name("ListAcknowledgements")
	api.HandleFunc("/tabs/{tabID:[0-9]+}/settlement/mark-paid", s.markPaid).Methods(http.MethodPost).Name("MarkPaid")
	api.HandleFunc("/tabs/{tabID:[0-9]+}/settlement/confirm-received", s.confirmReceived).Methods(http.MethodPost).Name("ConfirmReceived")

	api.HandleFunc("/notifications", s.getNotifications).Methods(http.MethodGet).Name("GetNotifications")
	api.HandleFunc("/notifications/{notificationID:[0-9]+}/read", s.markNotificationRead).Methods(http.MethodPost).Name("MarkNotificationRead")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondWithError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// actor returns the authenticated user id. The auth middleware guarantees it
// for every protected route.
func actor(r *http.Request) int32 {
	id, _ := UserIDFromContext(r.Context())
	return id
}
