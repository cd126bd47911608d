// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/outrigdev/iniedit/pkg/gensearch"
	"github.com/outrigdev/iniedit/pkg/logutil"
	"github.com/outrigdev/iniedit/pkg/settings"
	"github.com/outrigdev/iniedit/pkg/workspace"
	"github.com/sirupsen/logrus"
)

var log = logutil.Component("web")

// Header constants
const (
	CacheControlHeaderKey     = "Cache-Control"
	CacheControlHeaderNoCache = "no-cache"

	ContentTypeHeaderKey = "Content-Type"
	ContentTypeJson      = "application/json"
)

const HttpReadTimeout = 5 * time.Second
const HttpWriteTimeout = 21 * time.Second
const HttpMaxHeaderBytes = 60000
const HttpTimeoutDuration = 21 * time.Second
const HttpShutdownTimeout = 5 * time.Second
const MaxRequestBodyBytes = 4 * 1024 * 1024

type WebFnType = func(http.ResponseWriter, *http.Request)

type WebFnOpts struct {
	AllowCaching bool
	JsonErrors   bool
}

// Server serves the HTTP API and the live search websocket for one workspace
type Server struct {
	ws    *workspace.Workspace
	store *settings.Store // may be nil
	isDev bool

	connLock sync.Mutex
	conns    map[string]*websocket.Conn // connId => conn
}

func NewServer(ws *workspace.Workspace, store *settings.Store, isDev bool) *Server {
	return &Server{
		ws:    ws,
		store: store,
		isDev: isDev,
		conns: make(map[string]*websocket.Conn),
	}
}

func WriteJsonError(w http.ResponseWriter, errVal error) {
	w.Header().Set(ContentTypeHeaderKey, ContentTypeJson)
	w.WriteHeader(http.StatusOK)
	errMap := make(map[string]interface{})
	errMap["error"] = errVal.Error()
	barr, _ := json.Marshal(errMap)
	w.Write(barr)
}

func WriteJsonSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set(ContentTypeHeaderKey, ContentTypeJson)
	rtnMap := make(map[string]interface{})
	rtnMap["success"] = true
	if data != nil {
		rtnMap["data"] = data
	}
	barr, err := json.Marshal(rtnMap)
	if err != nil {
		WriteJsonError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(barr)
}

func readJsonBody(w http.ResponseWriter, r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// Simple health check endpoint
func handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJsonSuccess(w, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UnixMilli(),
	})
}

func WebFnWrap(opts WebFnOpts, fn WebFnType) WebFnType {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("panic in handler")
				if opts.JsonErrors {
					WriteJsonError(w, fmt.Errorf("internal server error"))
				} else {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}
		}()
		if !opts.AllowCaching {
			w.Header().Set(CacheControlHeaderKey, CacheControlHeaderNoCache)
		}
		fn(w, r)
	}
}

func MakeTCPListener(serviceName string, addr string) (net.Listener, error) {
	if addr == "" {
		addr = "127.0.0.1:0" // Use any available port
	}
	rtn, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("error creating listener at %v: %v", addr, err)
	}
	log.Infof("server [%s] listening on %s", serviceName, rtn.Addr())
	return rtn, nil
}

// Handler builds the routing tree. /ws is outside the timeout handler since
// it hijacks the connection.
func (s *Server) Handler() http.Handler {
	api := mux.NewRouter()
	jsonOpts := WebFnOpts{AllowCaching: false, JsonErrors: true}
	api.HandleFunc("/health", WebFnWrap(jsonOpts, handleHealth)).Methods(http.MethodGet)
	api.HandleFunc("/api/files", WebFnWrap(jsonOpts, s.handleFiles)).Methods(http.MethodGet)
	api.HandleFunc("/api/root", WebFnWrap(jsonOpts, s.handleSetRoot)).Methods(http.MethodPost)
	api.HandleFunc("/api/open", WebFnWrap(jsonOpts, s.handleOpen)).Methods(http.MethodPost)
	api.HandleFunc("/api/doc/{id}", WebFnWrap(jsonOpts, s.handleGetDoc)).Methods(http.MethodGet)
	api.HandleFunc("/api/doc/{id}/highlight", WebFnWrap(jsonOpts, s.handleHighlight)).Methods(http.MethodGet)
	api.HandleFunc("/api/doc/{id}/edits", WebFnWrap(jsonOpts, s.handleEdits)).Methods(http.MethodPost)
	api.HandleFunc("/api/doc/{id}/save", WebFnWrap(jsonOpts, s.handleSave)).Methods(http.MethodPost)
	api.HandleFunc("/api/doc/{id}/close", WebFnWrap(jsonOpts, s.handleClose)).Methods(http.MethodPost)

	gr := mux.NewRouter()
	gr.HandleFunc("/ws", s.HandleWs)
	gr.PathPrefix("/").Handler(http.TimeoutHandler(api, HttpTimeoutDuration, "Timeout"))

	var handler http.Handler = gr
	// In development mode, enable CORS and request logging
	if s.isDev {
		handler = handlers.CORS(handlers.AllowedOrigins([]string{"*"}))(handler)
		handler = handlers.LoggingHandler(log.WriterLevel(logrus.DebugLevel), handler)
	}
	return handler
}

// Run serves on listener until ctx is cancelled
func (s *Server) Run(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		ReadTimeout:    HttpReadTimeout,
		WriteTimeout:   HttpWriteTimeout,
		MaxHeaderBytes: HttpMaxHeaderBytes,
		Handler:        s.Handler(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), HttpShutdownTimeout)
		defer cancel()
		s.closeAllConns()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("web server shutdown")
		}
	}()
	err := server.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) querySyntax(name string) (gensearch.Syntax, error) {
	if name == "" && s.store != nil {
		name = string(s.store.Get().QuerySyntax)
	}
	return gensearch.ParseSyntax(name)
}
