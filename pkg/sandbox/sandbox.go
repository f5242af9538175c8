// Package sandbox drives the managed code-execution sessions used by the
// segmentation agent.
package sandbox

import "context"

// File is one file written into a sandbox session.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ExecResult is the outcome of executing code inside a session.
type ExecResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// Client is the code-interpreter collaborator: start a session, stage
// files into it, execute code, and stop it. Stop must be called for
// every started session, including failed ones.
type Client interface {
	Start(ctx context.Context) (sessionID string, err error)
	WriteFiles(ctx context.Context, sessionID string, files []File) error
	Execute(ctx context.Context, sessionID, code string) (*ExecResult, error)
	Stop(ctx context.Context, sessionID string) error
}
