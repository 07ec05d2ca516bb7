// Package http serves the dashboard UI and the ledger API.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"moneta/internal/cache"
	"moneta/internal/core"
	"moneta/internal/identity"
	applog "moneta/internal/log"
	"moneta/internal/services"
	"moneta/internal/ws"
	appweb "moneta/web"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

type Server struct {
	http.Server
	templates    *template.Template
	svc          *services.LedgerService
	identity     *identity.Provider
	broadcaster  *ws.Broadcaster
	defaultOwner string
	limiter      *mutationLimiter
	metrics      securityMetrics
	upgrader     websocket.Upgrader

	// Per-owner caches for aggregate and listing reads, invalidated
	// on every mutation.
	snapshotCache *cache.LRUCache[core.Snapshot]
	listCache     *cache.LRUCache[[]core.Transaction]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// server. The identity provider and broadcaster may be nil; requests
// then fall back to the default owner and live updates are disabled.
// writeLimit caps POST/DELETE requests per client IP per writeWindow.
func NewServer(addr string, svc *services.LedgerService, ident *identity.Provider, bc *ws.Broadcaster, defaultOwner string, writeLimit int, writeWindow time.Duration) *Server {
	mux := http.NewServeMux()
	httpLogger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: applog.Middleware(httpLogger)(mux),
		},
		svc:          svc,
		identity:     ident,
		broadcaster:  bc,
		defaultOwner: defaultOwner,
		limiter:      newMutationLimiter(writeLimit, writeWindow),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		snapshotCache: cache.NewLRUCache[core.Snapshot](100, 5*time.Minute),
		listCache:     cache.NewLRUCache[[]core.Transaction](200, 5*time.Minute),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.snapshotCache)
	s.cacheManager.Register(s.listCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/transactions", s.withSecurityHeaders(s.handleCreateTransaction))
	mux.HandleFunc("/transactions/", s.withSecurityHeaders(s.handleDeleteTransaction))
	mux.HandleFunc("/ui/overview", s.withSecurityHeaders(s.handleOverview))
	mux.HandleFunc("/export.csv", s.withSecurityHeaders(s.handleExportCSV))
	mux.HandleFunc("/register", s.withSecurityHeaders(s.handleRegister))
	mux.HandleFunc("/login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("/logout", s.withSecurityHeaders(s.handleLogout))
	mux.HandleFunc("/reward/claim", s.withSecurityHeaders(s.handleClaimReward))
	mux.HandleFunc("/ws", s.handleWebSocket)

	return s
}

// withSecurityHeaders adds security headers, rate limiting, and
// request logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := "req_" + uuid.NewString()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)
		logger := applog.FromContext(ctx)

		logger.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Mutations are rate limited per client.
		if (r.Method == http.MethodPost || r.Method == http.MethodDelete) && !s.limiter.allow(clientIP, &s.metrics) {
			logger.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(s.limiter.window/time.Second)))
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self' ws: wss:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logger.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// currentOwner resolves the owner key for a request: the session's
// username when a valid session cookie is present, the default owner
// otherwise.
func (s *Server) currentOwner(r *http.Request) string {
	if s.identity == nil {
		return s.defaultOwner
	}
	if token := sessionToken(r); token != "" {
		if username, ok := s.identity.CurrentUser(token); ok {
			return username
		}
	}
	return s.defaultOwner
}

func (s *Server) getSnapshot(ctx context.Context, owner string) (core.Snapshot, error) {
	if snap, found := s.snapshotCache.Get(owner); found {
		slog.DebugContext(ctx, "Snapshot cache hit", "owner", owner)
		return snap, nil
	}
	snap, err := s.svc.Snapshot(ctx, owner)
	if err != nil {
		return core.Snapshot{}, err
	}
	s.snapshotCache.Set(owner, snap)
	return snap, nil
}

func (s *Server) getList(ctx context.Context, owner string) ([]core.Transaction, error) {
	if items, found := s.listCache.Get(owner); found {
		slog.DebugContext(ctx, "List cache hit", "owner", owner, "count", len(items))
		result := make([]core.Transaction, len(items))
		copy(result, items)
		return result, nil
	}
	items, err := s.svc.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	s.listCache.Set(owner, items)
	return items, nil
}

func (s *Server) invalidateOwner(owner string) {
	s.snapshotCache.Delete(owner)
	s.listCache.Delete(owner)
}

// Shutdown gracefully shuts down the server and all cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.limiter != nil {
			s.limiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
