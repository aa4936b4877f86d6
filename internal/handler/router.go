package handler

import (
	"net/http"

	"trustmap/internal/metrics"
	"trustmap/internal/middleware"
	"trustmap/pkg/logger"

	"github.com/gorilla/mux"
)

// Routes groups the handlers mounted by NewRouter.
type Routes struct {
	Graph        *GraphHandler
	Participants *ParticipantHandler
	Preferences  *PreferencesHandler
	System       *SystemHandler
	Metrics      *metrics.Collector
	Logger       logger.Logger
	CORSOrigins  []string
}

// NewRouter mounts every route. CORS wraps the router itself because mux
// only runs middleware on matched routes, and preflight requests match none.
func NewRouter(rt Routes) http.Handler {
	log := rt.Logger
	if log == nil {
		log = logger.NewNop()
	}

	r := mux.NewRouter()
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.NewLoggingMiddleware(log).Log)
	r.Use(middleware.Metrics(rt.Metrics))

	r.HandleFunc("/health", rt.System.Health).Methods(http.MethodGet)
	r.Handle("/metrics", rt.Metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/graph", rt.Graph.GetGraph).Methods(http.MethodGet)
	api.HandleFunc("/focus", rt.Graph.GetFocus).Methods(http.MethodGet)
	api.HandleFunc("/search", rt.Graph.Search).Methods(http.MethodGet)

	api.HandleFunc("/participants/{pid}/analytics", rt.Participants.GetAnalytics).Methods(http.MethodGet)
	api.HandleFunc("/participants/{pid}/connections", rt.Participants.GetConnections).Methods(http.MethodGet)
	api.HandleFunc("/participants/{pid}/cycles", rt.Participants.GetCycles).Methods(http.MethodGet)

	api.HandleFunc("/preferences/{user}", rt.Preferences.Get).Methods(http.MethodGet)
	api.HandleFunc("/preferences/{user}", rt.Preferences.Put).Methods(http.MethodPut)

	api.HandleFunc("/snapshot/refresh", rt.System.RefreshSnapshot).Methods(http.MethodPost)

	return middleware.CORS(rt.CORSOrigins)(r)
}
