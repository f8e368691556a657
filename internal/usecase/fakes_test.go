package usecase

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/user/cloner-service/internal/entity"
	"github.com/user/cloner-service/internal/repository"
	"github.com/user/cloner-service/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

type fakeCapturer struct {
	capture *entity.PageCapture
	err     error
	calls   []string
}

func (f *fakeCapturer) Capture(ctx context.Context, url string) (*entity.PageCapture, error) {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return nil, f.err
	}
	c := *f.capture
	c.URL = url
	return &c, nil
}

type fakeGenerator struct {
	out       string
	err       error
	failFirst int // calls that fail with err before succeeding
	params    []repository.GenerateParams
}

func (f *fakeGenerator) Generate(ctx context.Context, params repository.GenerateParams) (string, error) {
	f.params = append(f.params, params)
	if f.failFirst > 0 {
		f.failFirst--
		return "", f.err
	}
	if f.err != nil && f.out == "" {
		return "", f.err
	}
	return f.out, nil
}

func (f *fakeGenerator) Provider() string { return "fake" }

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]entity.CloneResult
	getErr  error
	pingErr error
	ttl     time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]entity.CloneResult{}}
}

func (f *fakeCache) Get(ctx context.Context, url string) (*entity.CloneResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.entries[url]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return &r, nil
}

func (f *fakeCache) Set(ctx context.Context, url string, result *entity.CloneResult, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[url] = *result
	f.ttl = ttl
	return nil
}

func (f *fakeCache) Ping(ctx context.Context) error { return f.pingErr }

type fakeHistory struct {
	records   []*entity.CloneRecord
	saveErr   error
	lastLimit int
}

func (f *fakeHistory) Save(ctx context.Context, record *entity.CloneRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeHistory) ListRecent(ctx context.Context, limit int) ([]*entity.CloneRecord, error) {
	f.lastLimit = limit
	out := make([]*entity.CloneRecord, 0, limit)
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.records[i])
	}
	return out, nil
}

func (f *fakeHistory) Ping(ctx context.Context) error { return errors.New("down") }
