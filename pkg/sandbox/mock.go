package sandbox

import "context"

// MockClient is a configurable mock for testing sandbox flows.
// Set the function fields to control behavior in tests.
type MockClient struct {
	StartFunc      func(ctx context.Context) (string, error)
	WriteFilesFunc func(ctx context.Context, sessionID string, files []File) error
	ExecuteFunc    func(ctx context.Context, sessionID, code string) (*ExecResult, error)
	StopFunc       func(ctx context.Context, sessionID string) error

	// Call tracking for verification
	StartCalls   int
	WrittenFiles []File
	ExecutedCode []string
	StopCalls    []string
}

// Start implements Client.
func (m *MockClient) Start(ctx context.Context) (string, error) {
	m.StartCalls++
	if m.StartFunc != nil {
		return m.StartFunc(ctx)
	}
	return "mock-session", nil
}

// WriteFiles implements Client.
func (m *MockClient) WriteFiles(ctx context.Context, sessionID string, files []File) error {
	m.WrittenFiles = append(m.WrittenFiles, files...)
	if m.WriteFilesFunc != nil {
		return m.WriteFilesFunc(ctx, sessionID, files)
	}
	return nil
}

// Execute implements Client.
func (m *MockClient) Execute(ctx context.Context, sessionID, code string) (*ExecResult, error) {
	m.ExecutedCode = append(m.ExecutedCode, code)
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, sessionID, code)
	}
	return &ExecResult{ExitCode: 0}, nil
}

// Stop implements Client.
func (m *MockClient) Stop(ctx context.Context, sessionID string) error {
	m.StopCalls = append(m.StopCalls, sessionID)
	if m.StopFunc != nil {
		return m.StopFunc(ctx, sessionID)
	}
	return nil
}

// Ensure MockClient implements Client at compile time.
var _ Client = (*MockClient)(nil)
