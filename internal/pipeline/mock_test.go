package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/invoice-cli/internal/model"
)

// mockRemote is a testify mock of RemoteExtractor.
type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) Extract(ctx context.Context, text string) (model.FieldSet, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(model.FieldSet), args.Error(1)
}

// mockRecognizer is a testify mock of ocr.Recognizer.
type mockRecognizer struct {
	mock.Mock
}

func (m *mockRecognizer) Recognize(ctx context.Context, path string) ([]string, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// fakeText returns a fixed text layer keyed by file name.
type fakeText struct {
	texts map[string]string
	err   error
	panic bool
}

func (f *fakeText) ExtractText(_ context.Context, path string) (string, error) {
	if f.panic {
		panic("corrupt xref table")
	}
	if f.err != nil {
		return "", f.err
	}
	return f.texts[filepath.Base(path)], nil
}

// ctxText returns a fixed text layer unless ctx is done.
type ctxText struct {
	text string
}

func (c ctxText) ExtractText(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.text, nil
}

// cancellingProcessor cancels the batch once a document is in flight and
// then delegates to next.
type cancellingProcessor struct {
	cancel context.CancelFunc
	next   Processor
}

func (c *cancellingProcessor) Process(ctx context.Context, path string) *model.Outcome {
	c.cancel()
	return c.next.Process(ctx, path)
}

// fakePages reports a fixed page count.
type fakePages struct {
	n   int
	err error
}

func (f fakePages) PageCount(context.Context, string) (int, error) {
	return f.n, f.err
}

// fakeProcessor returns canned outcomes by file name.
type fakeProcessor struct {
	mu       sync.Mutex
	outcomes map[string]*model.Outcome
	seen     []string
}

func (f *fakeProcessor) Process(_ context.Context, path string) *model.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, path)
	if out, ok := f.outcomes[filepath.Base(path)]; ok {
		cp := *out
		cp.Path = path
		return &cp
	}
	return model.ErrorOutcome(path, model.DocTypeUnknown, "sem resultado")
}

// memorySink collects appended outcomes.
type memorySink struct {
	mu   sync.Mutex
	outs []*model.Outcome
	err  error
}

func (s *memorySink) Append(out *model.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outs = append(s.outs, out)
	return s.err
}

// writePDF creates a placeholder file so the pipeline can open it.
func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"+name), 0o644))
	return path
}
