package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/voidshard/era5d/internal/utils"
	"github.com/voidshard/era5d/pkg/api"
	"github.com/voidshard/era5d/pkg/api/http/common"
	"github.com/voidshard/era5d/pkg/errors"
	"github.com/voidshard/era5d/pkg/metrics"
	"github.com/voidshard/era5d/pkg/structs"
)

const (
	wait = 30 * time.Second

	// downloads & uploads can be large
	ioTimeout = 15 * time.Minute
)

// DefaultOrigins are the local front end dev servers.
var DefaultOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

type Server struct {
	addr       string
	origins    []string
	svc        api.API
	exit       chan os.Signal
	httpserver *http.Server

	metrics  *metrics.Middleware
	registry *prometheus.Registry
}

func (s *Server) ServeForever(svc api.API) error {
	log := zap.S().Named("server")

	s.httpserver = &http.Server{
		Handler:           s.Handler(svc),
		Addr:              s.addr,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       ioTimeout,
		WriteTimeout:      ioTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", s.httpserver.Addr)
		errs <- s.httpserver.ListenAndServe()
	}()

	signal.Notify(s.exit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s.exit)

	select {
	case err := <-errs:
		return err
	case <-s.exit:
	}

	log.Infow("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	return s.httpserver.Shutdown(ctx)
}

// Handler returns the routed & wrapped http handler serving svc.
func (s *Server) Handler(svc api.API) http.Handler {
	s.svc = svc

	router := mux.NewRouter()
	router.HandleFunc(common.API_HEALTH, s.Health).Methods(http.MethodGet)
	router.HandleFunc(common.API_CDS_STATUS, s.CredentialStatus).Methods(http.MethodGet)
	router.HandleFunc(common.API_VARIABLES, s.Variables).Methods(http.MethodGet)
	router.HandleFunc(common.API_REQUEST, s.SubmitRequest).Methods(http.MethodPost)
	router.HandleFunc(common.API_GENERATE_CODE, s.GenerateCode).Methods(http.MethodPost)
	router.HandleFunc(common.API_JOBS, s.Jobs).Methods(http.MethodGet)
	router.HandleFunc(common.API_JOB, s.Job).Methods(http.MethodGet)
	router.HandleFunc(common.API_DOWNLOAD+"/{id}", s.Download).Methods(http.MethodGet)
	router.HandleFunc(common.API_GRID_PARSE, s.ParseGrid).Methods(http.MethodPost)
	router.HandleFunc(common.API_GRID_EXTRACT, s.ExtractSlice).Methods(http.MethodPost)
	router.Handle(common.API_METRICS, promhttp.HandlerFor(
		prometheus.Gatherers{prometheus.DefaultGatherer, s.registry},
		promhttp.HandlerOpts{},
	)).Methods(http.MethodGet)

	// route aware, so it has to sit inside the router
	router.Use(s.metrics.Handler)

	var h http.Handler = router
	h = loggingMiddleware(h)
	h = chimw.Recoverer(h)
	h = chimw.RequestID(h)
	h = cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	})(h)
	return h
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &common.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) CredentialStatus(w http.ResponseWriter, r *http.Request) {
	st := s.svc.CredentialStatus(r.Context())
	code := http.StatusOK
	if !st.Connected {
		code = http.StatusBadRequest
	}
	writeJSON(w, code, st)
}

func (s *Server) Variables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Variables())
}

func (s *Server) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	req := &structs.RetrievalRequest{}
	err := unmarshalJson(w, r, req)
	if err != nil {
		return
	}

	job, err := s.svc.SubmitRequest(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (s *Server) GenerateCode(w http.ResponseWriter, r *http.Request) {
	req := &structs.RetrievalRequest{}
	err := unmarshalJson(w, r, req)
	if err != nil {
		return
	}

	code, err := s.svc.GenerateCode(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &common.CodeResponse{Code: code})
}

func (s *Server) Jobs(w http.ResponseWriter, r *http.Request) {
	q := &structs.Query{}
	err := unmarshalQuery(w, r, q)
	if err != nil {
		return
	}

	items, err := s.svc.Jobs(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	zap.S().Named("server").Debugw("listed jobs", "url", r.URL.String(), "count", len(items))
	writeJSON(w, http.StatusOK, items)
}

// jobID reads the {id} path var; ids that can't exist are reported as not found.
func jobID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["id"]
	if !utils.IsValidID(id) {
		writeError(w, fmt.Errorf("%w: job %s", errors.ErrNotFound, id))
		return "", false
	}
	return id, true
}

func (s *Server) Job(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}

	job, err := s.svc.Job(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}

	f, err := s.svc.Download(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, err)
		return
	}

	name := filepath.Base(f.Name())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) ParseGrid(w http.ResponseWriter, r *http.Request) {
	path, cleanup, err := saveUpload(w, r)
	if err != nil {
		return
	}
	defer cleanup()

	meta, err := s.svc.ParseGrid(path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &common.ParseResponse{Success: true, Metadata: meta})
}

// ExtractSlice reads a slice either from an uploaded file (multipart, with form
// fields) or from a completed job's file (JSON body naming the job).
func (s *Server) ExtractSlice(w http.ResponseWriter, r *http.Request) {
	var (
		slice *structs.SliceResult
		err   error
	)

	if isMultipart(r) {
		path, cleanup, uerr := saveUpload(w, r)
		if uerr != nil {
			return
		}
		defer cleanup()

		req, ferr := extractForm(r)
		if ferr != nil {
			writeError(w, ferr)
			return
		}
		slice, err = s.svc.ExtractFile(path, req)
	} else {
		req := &structs.ExtractRequest{}
		if unmarshalJson(w, r, req) != nil {
			return
		}
		if req.JobID != "" && !utils.IsValidID(req.JobID) {
			writeError(w, fmt.Errorf("%w: job %s", errors.ErrNotFound, req.JobID))
			return
		}
		slice, err = s.svc.ExtractSlice(r.Context(), req)
	}

	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &common.ExtractResponse{Success: true, SliceResult: slice})
}

func (s *Server) Close() error {
	s.exit <- os.Interrupt
	return nil
}

// NewServer returns a server for addr allowing browser requests from origins
// (DefaultOrigins if empty).
func NewServer(addr string, origins []string) *Server {
	if len(origins) == 0 {
		origins = DefaultOrigins
	}
	s := &Server{
		addr:     addr,
		origins:  origins,
		exit:     make(chan os.Signal, 1),
		metrics:  metrics.NewMiddleware("era5d"),
		registry: prometheus.NewRegistry(),
	}
	s.metrics.MustRegister(s.registry)
	return s
}
