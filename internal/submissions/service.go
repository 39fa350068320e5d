package submissions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"hairalyzer-backend/internal/analyses"
	"hairalyzer-backend/internal/llm"
	"hairalyzer-backend/internal/shared/metrics"
	"hairalyzer-backend/internal/shared/storage/object"
	"hairalyzer-backend/internal/shared/telemetry"
)

const (
	// NoHairPhotosAnalysis stands in for the vision answer when no hair photo was accepted.
	NoHairPhotosAnalysis = "No hair photos were provided, so no image analysis was performed."
	// ProductPhotoPlaceholder is attached to every stored product photo.
	ProductPhotoPlaceholder = "Product image analysis is currently unavailable."
	// WarningNotSaved is returned when the analysis could not be stored.
	WarningNotSaved = "could not save to database"

	sniffBytes = 3072
)

// Service runs the intake pipeline.
type Service struct {
	Repo  Repo
	Store object.Store
	LLM   llm.Client
	Now   func() time.Time
	NewID func() string
}

// NewService constructs a Service with wall-clock time and UUID ids.
func NewService(repo Repo, store object.Store, client llm.Client) *Service {
	return &Service{Repo: repo, Store: store, LLM: client}
}

// Submit validates, uploads hair photos, runs one vision call, uploads product
// photos, parses the answer and stores the submission. Steps run in order and
// the first upload or analysis failure aborts the request. A storage failure
// still returns the analysis with a warning.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	in.Answers = TrimAnswers(in.Answers)
	if err := Validate(in); err != nil {
		return SubmitResult{}, err
	}

	started := s.now()
	metrics.IncSubmissionStarted()
	fail := func(err error) (SubmitResult, error) {
		metrics.IncSubmissionFailed()
		return SubmitResult{}, err
	}

	hairURLs, err := s.uploadAll(ctx, in.UserID, in.HairPhotos)
	if err != nil {
		return fail(&StepError{Step: StepUpload, Err: err})
	}

	text := NoHairPhotosAnalysis
	if len(hairURLs) > 0 {
		text, err = s.LLM.AnalyzeHair(ctx, llm.HairInput{
			PhotoURLs:          hairURLs,
			HairProblem:        in.Answers.HairProblem,
			Allergies:          in.Answers.Allergies,
			Medication:         in.Answers.Medication,
			Dyed:               in.Answers.Dyed,
			WashFrequency:      in.Answers.WashFrequency,
			AdditionalConcerns: in.Answers.AdditionalConcerns,
			ProductNames:       in.ProductNames,
		})
		if err != nil {
			telemetry.Error("submission.analyze_failed", map[string]any{
				"user_id":     in.UserID,
				"photo_count": len(hairURLs),
				"timeout":     errors.Is(err, llm.ErrTimeout),
				"err":         err.Error(),
			})
			return fail(&StepError{Step: StepAnalyze, Err: err})
		}
	}

	productURLs, err := s.uploadAll(ctx, in.UserID, in.ProductPhotos)
	if err != nil {
		return fail(&StepError{Step: StepUpload, Err: err})
	}
	productAnalyses := make([]string, len(productURLs))
	for i := range productAnalyses {
		productAnalyses[i] = ProductPhotoPlaceholder
	}

	now := s.now()
	sub := Submission{
		ID:                   s.newID(),
		UserID:               in.UserID,
		Answers:              in.Answers,
		ProductNames:         in.ProductNames,
		HairPhotoURLs:        hairURLs,
		ProductPhotoURLs:     productURLs,
		ProductPhotoAnalyses: productAnalyses,
		Analysis:             analyses.Parse(text, in.Answers.UserData()),
		CreatedAt:            now,
		UpdatedAt:            now,
	}.normalize()
	metrics.ObserveSubmissionDuration(s.now().Sub(started))

	stored, err := s.Repo.Create(ctx, sub)
	if err != nil {
		metrics.IncSubmissionUnsaved()
		telemetry.Error("submission.persist_failed", map[string]any{
			"user_id":       in.UserID,
			"submission_id": sub.ID,
			"err":           (&StepError{Step: StepPersist, Err: err}).Error(),
		})
		sub.ID = ""
		return SubmitResult{Submission: sub, Warning: WarningNotSaved}, nil
	}

	metrics.IncSubmissionCompleted()
	telemetry.Info("submission.created", map[string]any{
		"user_id":        in.UserID,
		"submission_id":  stored.ID,
		"hair_photos":    len(hairURLs),
		"product_photos": len(productURLs),
		"duration_ms":    s.now().Sub(started).Milliseconds(),
	})
	return SubmitResult{SubmissionID: stored.ID, Submission: stored}, nil
}

// List returns the caller's submissions, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Submission, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Get returns one submission owned by userID. Other owners' records are
// reported as not found.
func (s *Service) Get(ctx context.Context, userID, id string) (Submission, error) {
	sub, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	if sub.UserID == "" || sub.UserID != userID {
		return Submission{}, ErrNotFound
	}
	return sub, nil
}

// uploadAll stores accepted photos one at a time. Files that are not JPEG or
// PNG are skipped.
func (s *Service) uploadAll(ctx context.Context, userID string, photos []Photo) ([]string, error) {
	urls := make([]string, 0, len(photos))
	for _, p := range photos {
		url, ok, err := s.upload(ctx, userID, p)
		if err != nil {
			telemetry.Error("submission.upload_failed", map[string]any{
				"user_id":   userID,
				"file_name": p.FileName,
				"err":       err.Error(),
			})
			return nil, err
		}
		if ok {
			urls = append(urls, url)
		}
	}
	metrics.IncPhotosStored(len(urls))
	return urls, nil
}

func (s *Service) upload(ctx context.Context, userID string, p Photo) (string, bool, error) {
	if p.Open == nil {
		return "", false, fmt.Errorf("open %s: no reader", p.FileName)
	}
	rc, err := p.Open()
	if err != nil {
		return "", false, fmt.Errorf("open %s: %w", p.FileName, err)
	}
	defer rc.Close()

	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", false, fmt.Errorf("read %s: %w", p.FileName, err)
	}
	head = head[:n]
	contentType, ok := acceptedImageType(head)
	if !ok {
		telemetry.Debug("submission.photo_skipped", map[string]any{
			"user_id":   userID,
			"file_name": p.FileName,
			"declared":  p.ContentType,
		})
		return "", false, nil
	}

	obj, err := s.Store.Put(ctx, userID, p.FileName, contentType, io.MultiReader(bytes.NewReader(head), rc))
	if err != nil {
		return "", false, fmt.Errorf("store %s: %w", p.FileName, err)
	}
	return obj.URL, true, nil
}

func acceptedImageType(head []byte) (string, bool) {
	mt := mimetype.Detect(head)
	switch {
	case mt.Is("image/jpeg"):
		return "image/jpeg", true
	case mt.Is("image/png"):
		return "image/png", true
	default:
		return "", false
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
