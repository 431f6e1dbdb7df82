package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/apperror"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/delivery/http/request"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/delivery/http/response"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/usecase"
)

// Pinger is a dependency checked by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the connector API.
type Handler struct {
	sync      usecase.SyncEngine
	importer  usecase.ContentImporter
	jobs      usecase.JobService
	sites     usecase.SiteService
	redirects usecase.RedirectManager
	pingers   map[string]Pinger
	logger    *zap.Logger
}

// Deps groups the use cases the handler serves.
type Deps struct {
	Sync      usecase.SyncEngine
	Importer  usecase.ContentImporter
	Jobs      usecase.JobService
	Sites     usecase.SiteService
	Redirects usecase.RedirectManager
	Pingers   map[string]Pinger
}

func NewHandler(d Deps, logger *zap.Logger) *Handler {
	return &Handler{
		sync:      d.Sync,
		importer:  d.Importer,
		jobs:      d.Jobs,
		sites:     d.Sites,
		redirects: d.Redirects,
		pingers:   d.Pingers,
		logger:    logger,
	}
}

func (h *Handler) HandleSyncPage(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.pageID(w, r)
	if !ok {
		return
	}
	outcome, err := h.sync.SyncPage(r.Context(), pageID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, outcome)
}

// HandlePageSaved is called by the host CMS after a page is saved.
func (h *Handler) HandlePageSaved(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.pageID(w, r)
	if !ok {
		return
	}
	outcome, err := h.sync.HandlePageSaved(r.Context(), pageID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) HandleSyncBatch(w http.ResponseWriter, r *http.Request) {
	var req request.SyncBatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	summary, err := h.sync.SyncAllPages(r.Context(), req.Offset, req.BatchSize)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) HandleSyncOutdated(w http.ResponseWriter, r *http.Request) {
	var req request.SyncOutdatedRequest
	if !h.decode(w, r, &req) {
		return
	}
	summary, err := h.sync.SyncOutdatedPages(r.Context(), req.Limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.pageID(w, r)
	if !ok {
		return
	}
	var req request.ImportRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.importer.ImportFromJob(r.Context(), pageID, req.JobID, entity.ImportOptions{Action: req.Action})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.pageID(w, r)
	if !ok {
		return
	}
	result, err := h.importer.RestoreBackup(r.Context(), pageID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.pageID(w, r)
	if !ok {
		return
	}
	backups, err := h.importer.ListBackups(r.Context(), pageID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if backups == nil {
		backups = []*entity.Backup{}
	}
	h.writeJSON(w, http.StatusOK, backups)
}

func (h *Handler) HandleCreateJob(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.pageID(w, r)
	if !ok {
		return
	}
	job, err := h.jobs.CreateContentJob(r.Context(), pageID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, job)
}

func (h *Handler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.GetJobStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, job)
}

func (h *Handler) HandleTestConnection(w http.ResponseWriter, r *http.Request) {
	var req request.ConnectionTestRequest
	if !h.decode(w, r, &req) {
		return
	}
	persist := req.Persist == nil || *req.Persist
	info, err := h.sites.TestConnection(r.Context(), req.APIURL, req.APIKey, persist)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, info)
}

func (h *Handler) HandleGetBusinessProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.sites.GetBusinessProfile(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if profile == nil {
		profile = entity.BusinessProfile{}
	}
	h.writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) HandleSaveBusinessProfile(w http.ResponseWriter, r *http.Request) {
	var profile entity.BusinessProfile
	if !h.decode(w, r, &profile) {
		return
	}
	if err := h.sites.SaveBusinessProfile(r.Context(), profile); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) HandleListRedirects(w http.ResponseWriter, r *http.Request) {
	redirects, err := h.redirects.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if redirects == nil {
		redirects = []*entity.Redirect{}
	}
	h.writeJSON(w, http.StatusOK, redirects)
}

// HandleResolveRedirect returns the most recent redirect registered for ?path=.
func (h *Handler) HandleResolveRedirect(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		h.writeError(w, apperror.New(apperror.KindValidation, "http", "path is required"))
		return
	}
	redirect, err := h.redirects.Resolve(r.Context(), path)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, redirect)
}

func (h *Handler) HandleCreateRedirect(w http.ResponseWriter, r *http.Request) {
	var req request.RedirectRequest
	if !h.decode(w, r, &req) {
		return
	}
	redirect, err := h.redirects.Create(r.Context(), req.Source, req.Target, req.StatusCode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, redirect)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := response.HealthResponse{Status: "ok", Components: map[string]string{}}
	for name, p := range h.pingers {
		if err := p.Ping(ctx); err != nil {
			h.logger.Error("health check failed", zap.String("component", name), zap.Error(err))
			resp.Components[name] = "unhealthy"
			resp.Status = "degraded"
			continue
		}
		resp.Components[name] = "healthy"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) pageID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, apperror.New(apperror.KindValidation, "http", "Invalid page id"))
		return 0, false
	}
	return id, true
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, apperror.Wrap(apperror.KindValidation, "http", "Invalid request body", err))
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	response.WriteJSON(w, h.logger, status, data)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	response.WriteError(w, h.logger, err)
}
