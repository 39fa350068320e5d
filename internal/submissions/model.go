package submissions

import (
	"io"
	"time"

	"hairalyzer-backend/internal/analyses"
)

// Answers are the questionnaire fields of one intake.
type Answers struct {
	HairProblem        string `json:"hairProblem" bson:"hairProblem"`
	Allergies          string `json:"allergies" bson:"allergies"`
	Medication         string `json:"medication" bson:"medication"`
	Dyed               string `json:"dyed" bson:"dyed"`
	WashFrequency      string `json:"washFrequency" bson:"washFrequency"`
	AdditionalConcerns string `json:"additionalConcerns" bson:"additionalConcerns"`
}

// UserData selects the answers that influence metric scoring.
func (a Answers) UserData() analyses.UserData {
	return analyses.UserData{
		PrimaryConcern: a.HairProblem,
		Allergies:      a.Allergies,
		Medications:    a.Medication,
		DyeStatus:      a.Dyed,
		WashFrequency:  a.WashFrequency,
	}
}

// Submission is one user's intake and its computed analysis. Photo URL lists
// never change after creation; only Analysis may be rewritten.
type Submission struct {
	ID     string `json:"id" bson:"_id"`
	UserID string `json:"userId,omitempty" bson:"userId,omitempty"`

	Answers `bson:",inline"`

	ProductNames         []string          `json:"productNames" bson:"productNames"`
	HairPhotoURLs        []string          `json:"hairPhotoUrls" bson:"hairPhotoUrls"`
	ProductPhotoURLs     []string          `json:"productPhotoUrls" bson:"productPhotoUrls"`
	ProductPhotoAnalyses []string          `json:"productPhotoAnalyses" bson:"productPhotoAnalyses"`
	Analysis             analyses.Analysis `json:"analysis" bson:"analysis"`
	CreatedAt            time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time         `json:"updatedAt" bson:"updatedAt"`
}

func (s Submission) normalize() Submission {
	if s.ProductNames == nil {
		s.ProductNames = []string{}
	}
	if s.HairPhotoURLs == nil {
		s.HairPhotoURLs = []string{}
	}
	if s.ProductPhotoURLs == nil {
		s.ProductPhotoURLs = []string{}
	}
	if s.ProductPhotoAnalyses == nil {
		s.ProductPhotoAnalyses = []string{}
	}
	s.Analysis = s.Analysis.Normalize()
	return s
}

// Photo is one uploaded file. Open may be called more than once.
type Photo struct {
	FileName    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// SubmitInput is a parsed intake request.
type SubmitInput struct {
	UserID        string
	Answers       Answers
	ProductNames  []string
	HairPhotos    []Photo
	ProductPhotos []Photo
}

// SubmitResult is what the caller sees after an intake. SubmissionID is empty
// and Warning set when the record could not be stored.
type SubmitResult struct {
	SubmissionID string
	Submission   Submission
	Warning      string
}
