package llm

import "context"

// MockClient is a canned-response Client for tests.
type MockClient struct {
	Response string
	Err      error

	// Captured from the last Generate call.
	LastSystemMessage string
	LastPrompt        string
	Calls             int
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) Generate(ctx context.Context, systemMessage, prompt string) (string, error) {
	m.Calls++
	m.LastSystemMessage = systemMessage
	m.LastPrompt = prompt
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockClient) Model() string {
	return "mock-model"
}
