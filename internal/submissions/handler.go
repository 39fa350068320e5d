package submissions

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"hairalyzer-backend/internal/analyses"
	"hairalyzer-backend/internal/shared/server/middleware"
	"hairalyzer-backend/internal/shared/server/respond"
	"hairalyzer-backend/internal/shared/storage/object"
)

// Whole-request cap: every allowed file at the per-file limit plus form fields.
const maxRequestBytes = (MaxHairPhotos+MaxProductPhotos)*object.MaxObjectBytes + 1<<20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches submission routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/submit", h.submit)
	rg.GET("/submissions", h.list)
	rg.GET("/submissions/:id", h.get)
}

type submitResponse struct {
	Message            string           `json:"message"`
	SubmissionID       string           `json:"submissionId,omitempty"`
	HairAnalysis       string           `json:"hairAnalysis"`
	Metrics            analyses.Metrics `json:"metrics"`
	HaircareRoutine    analyses.Routine `json:"haircareRoutine"`
	ProductSuggestions []string         `json:"productSuggestions"`
	AIBonusTips        []string         `json:"aiBonusTips"`
	Warning            string           `json:"warning,omitempty"`
}

func (h *Handler) submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBytes)
	form, err := c.MultipartForm()
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid multipart form", nil)
		return
	}

	productNames, err := ParseProductNames(c.PostForm("productNames"))
	if err != nil {
		writeValidation(c, err)
		return
	}

	in := SubmitInput{
		UserID: middleware.UserIDFromContext(c),
		Answers: Answers{
			HairProblem:        c.PostForm("hairProblem"),
			Allergies:          c.PostForm("allergies"),
			Medication:         c.PostForm("medication"),
			Dyed:               c.PostForm("dyed"),
			WashFrequency:      c.PostForm("washFrequency"),
			AdditionalConcerns: c.PostForm("additionalConcerns"),
		},
		ProductNames:  productNames,
		HairPhotos:    formPhotos(form, "hairPhotos"),
		ProductPhotos: formPhotos(form, "productImages"),
	}

	res, err := h.Svc.Submit(c.Request.Context(), in)
	if err != nil {
		var verr *ValidationError
		var step *StepError
		switch {
		case errors.As(err, &verr):
			writeValidation(c, err)
		case errors.As(err, &step) && step.Step == StepUpload:
			respond.Error(c, http.StatusInternalServerError, "upload_failed", "failed to upload photos", nil)
		case errors.As(err, &step) && step.Step == StepAnalyze:
			respond.Error(c, http.StatusInternalServerError, "analysis_failed", "failed to analyze image due to an API error", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process submission", nil)
		}
		return
	}

	if res.SubmissionID != "" {
		c.Set(middleware.SubmissionIDKey, res.SubmissionID)
	}
	a := res.Submission.Analysis
	resp := submitResponse{
		Message:            "Submission processed successfully",
		SubmissionID:       res.SubmissionID,
		HairAnalysis:       a.Summary(),
		Metrics:            a.Metrics,
		HaircareRoutine:    a.HaircareRoutine,
		ProductSuggestions: a.ProductSuggestions,
		AIBonusTips:        a.AIBonusTips,
		Warning:            res.Warning,
	}
	if res.Warning != "" {
		resp.Message = "Analysis completed but could not be saved"
	}
	respond.OK(c, resp)
}

func (h *Handler) list(c *gin.Context) {
	subs, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch submissions", nil)
		return
	}
	respond.OK(c, subs)
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	sub, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "submission not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch submission", nil)
		}
		return
	}
	c.Set(middleware.SubmissionIDKey, sub.ID)
	respond.OK(c, sub)
}

func writeValidation(c *gin.Context, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid submission", verr.Fields)
		return
	}
	respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
}

func formPhotos(form *multipart.Form, field string) []Photo {
	if form == nil {
		return nil
	}
	headers := form.File[field]
	photos := make([]Photo, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		photos = append(photos, Photo{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open:        func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return photos
}
