package bulkupload

import (
	"net/http"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/httpx"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 5 << 20

type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/supplier/bulk-uploads", func(r chi.Router) {
		r.Use(session.Required)
		r.Post("/", h.upload)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
}

var statusMap = []httpx.StatusMapping{
	{Err: ErrNotFound, Status: http.StatusNotFound},
	{Err: ErrInvalidFile, Status: http.StatusBadRequest},
	{Err: ErrNotAllowed, Status: http.StatusForbidden},
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()
	if header.Size == 0 {
		httpx.Fail(w, ErrInvalidFile, statusMap...)
		return
	}

	job, err := h.service.Upload(r.Context(), sess, header.Filename, file)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusAccepted, job)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	jobs, err := h.service.ListJobs(r.Context(), sess.UserID)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, jobs)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	job, err := h.service.GetJob(r.Context(), sess, id)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, job)
}
