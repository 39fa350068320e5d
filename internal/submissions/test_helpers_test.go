package submissions

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"hairalyzer-backend/internal/llm"
	"hairalyzer-backend/internal/shared/storage/object"
	"hairalyzer-backend/internal/shared/storage/object/local"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 64)...)
	textBytes = []byte("just some notes about my hair")
)

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) AnalyzeHair(ctx context.Context, input llm.HairInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *mockLLM) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

// countingStore wraps a real store and records every Put.
type countingStore struct {
	object.Store
	mu   sync.Mutex
	puts []string
	err  error
}

func (s *countingStore) Put(ctx context.Context, userID, fileName, contentType string, r io.Reader) (object.Object, error) {
	s.mu.Lock()
	s.puts = append(s.puts, fileName)
	s.mu.Unlock()
	if s.err != nil {
		return object.Object{}, s.err
	}
	return s.Store.Put(ctx, userID, fileName, contentType, r)
}

func (s *countingStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.puts)
}

type failingRepo struct {
	*MemoryRepo
}

func (failingRepo) Create(context.Context, Submission) (Submission, error) {
	return Submission{}, errors.New("connection refused")
}

func newTestStore(t *testing.T) *countingStore {
	t.Helper()
	return &countingStore{Store: local.New(t.TempDir(), "http://api.test")}
}

func newTestService(t *testing.T, repo Repo, store object.Store, client llm.Client) *Service {
	t.Helper()
	n := 0
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &Service{
		Repo:  repo,
		Store: store,
		LLM:   client,
		Now:   func() time.Time { return fixed },
		NewID: func() string {
			n++
			return "sub-" + string(rune('0'+n))
		},
	}
}

func photo(name string, data []byte) Photo {
	return Photo{
		FileName: name,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func photos(n int, data []byte) []Photo {
	out := make([]Photo, n)
	for i := range out {
		out[i] = photo("photo"+string(rune('a'+i))+".png", data)
	}
	return out
}

const sampleAnalysis = "**AI Description**\nDry and brittle, split ends.\n" +
	"**Hair Care Routine**\n1. **Cleansing:** wash twice weekly\n" +
	"**Product Suggestions**\n- Moisturizing shampoo\n" +
	"**AI Bonus Tips**\n1. Trim regularly"
