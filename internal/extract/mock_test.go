package extract

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/invoice-cli/pkg/anthropic"
	"github.com/sells-group/invoice-cli/pkg/deepseek"
)

// --- Completer Mock ---

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

// --- DeepSeek Mock ---

type mockDeepSeekClient struct {
	mock.Mock
}

func (m *mockDeepSeekClient) ChatCompletion(ctx context.Context, req deepseek.ChatCompletionRequest) (*deepseek.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deepseek.ChatCompletionResponse), args.Error(1)
}

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}
