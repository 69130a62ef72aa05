package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cvpa-audit/internal/auth"
	"github.com/sells-group/cvpa-audit/internal/model"
	"github.com/sells-group/cvpa-audit/internal/pipeline"
	"github.com/sells-group/cvpa-audit/internal/store"
)

var servePort int

// serverDeps carries everything the HTTP handlers need. runCtx outlives
// individual requests; async audit runs are bound to it, not to the request.
type serverDeps struct {
	store    store.Store
	pipeline *pipeline.Pipeline
	jwt      *auth.JWTManager
	origins  []string
	runCtx   context.Context
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the audit HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		jwtMgr, err := auth.NewJWTManager(cfg.Auth)
		if err != nil {
			return err
		}

		router := newRouter(serverDeps{
			store:    env.Store,
			pipeline: env.Pipeline,
			jwt:      jwtMgr,
			origins:  cfg.Server.AllowedOrigins,
			runCtx:   ctx,
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func newRouter(deps serverDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/auth/login", deps.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(deps.jwt.RequireAuth)

		r.Get("/companies", deps.handleListCompanies)
		r.Post("/companies", deps.handleCreateCompany)
		r.Get("/companies/{companyID}/audits", deps.handleListAudits)
		r.Post("/companies/{companyID}/audits", deps.handleStartAudit)
		r.Post("/companies/{companyID}/audits/{auditID}/regenerate-gaps", deps.handleRegenerateGaps)
		r.Get("/audits/{auditID}", deps.handleGetAudit)
		r.Get("/audits/{auditID}/score", deps.handleGetScore)
		r.Get("/audits/{auditID}/gaps", deps.handleGetGaps)
	})

	return r
}

func (d serverDeps) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := d.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil || user == nil {
		auth.DummyVerify()
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	valid, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !valid {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, expiresAt, err := d.jwt.IssueToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": expiresAt,
	})
}

func (d serverDeps) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := d.store.ListCompanies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list companies")
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

func (d serverDeps) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		WebsiteURL string `json:"website_url"`
		Industry   string `json:"industry"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	company, err := d.store.CreateCompany(r.Context(), &model.Company{
		Name:       req.Name,
		WebsiteURL: req.WebsiteURL,
		Industry:   req.Industry,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "create company")
		return
	}
	writeJSON(w, http.StatusCreated, company)
}

func (d serverDeps) handleListAudits(w http.ResponseWriter, r *http.Request) {
	audits, err := d.store.ListAudits(r.Context(), chi.URLParam(r, "companyID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list audits")
		return
	}
	writeJSON(w, http.StatusOK, audits)
}

// handleStartAudit kicks off an audit in the background and returns 202.
// The audit row becomes visible under GET /companies/{id}/audits as soon as
// the pipeline creates it.
func (d serverDeps) handleStartAudit(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	if _, err := d.store.GetCompany(r.Context(), companyID); err != nil {
		writeError(w, http.StatusNotFound, "company not found")
		return
	}

	go func() {
		result, err := d.pipeline.Run(d.runCtx, companyID)
		if err != nil {
			zap.L().Error("background audit failed",
				zap.String("company_id", companyID),
				zap.Error(err),
			)
			return
		}
		zap.L().Info("background audit complete",
			zap.String("audit_id", result.Audit.ID),
			zap.Float64("overall_score", result.Score.OverallScore),
		)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":     "accepted",
		"company_id": companyID,
	})
}

func (d serverDeps) handleRegenerateGaps(w http.ResponseWriter, r *http.Request) {
	auditID := chi.URLParam(r, "auditID")

	gaps, err := d.pipeline.RegenerateGaps(r.Context(), auditID)
	if err != nil {
		writeError(w, http.StatusNotFound, "audit not found")
		return
	}

	// Gap identification degrades to an empty list rather than failing, so
	// an empty result is still a 200.
	writeJSON(w, http.StatusOK, map[string]any{
		"audit_id":   auditID,
		"gaps_count": len(gaps),
		"gaps":       gaps,
	})
}

func (d serverDeps) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	audit, err := d.store.GetAudit(r.Context(), chi.URLParam(r, "auditID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "audit not found")
		return
	}
	writeJSON(w, http.StatusOK, audit)
}

func (d serverDeps) handleGetScore(w http.ResponseWriter, r *http.Request) {
	auditID := chi.URLParam(r, "auditID")
	score, err := d.store.GetAuditScore(r.Context(), auditID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load score")
		return
	}
	if score == nil {
		writeError(w, http.StatusNotFound, "audit has not been scored")
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (d serverDeps) handleGetGaps(w http.ResponseWriter, r *http.Request) {
	gaps, err := d.store.ListGaps(r.Context(), chi.URLParam(r, "auditID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list gaps")
		return
	}
	if gaps == nil {
		gaps = []model.Gap{}
	}
	writeJSON(w, http.StatusOK, gaps)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
