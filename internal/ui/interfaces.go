package ui

import "github.com/ryo246912/gh-pr-report/internal/models"

// Prompter defines interface for user interaction
type Prompter interface {
	PromptRepository() (models.Repository, error)
}

// DefaultPrompter implements the actual prompting logic
type DefaultPrompter struct{}

// PromptRepository asks for the repository interactively
func (p *DefaultPrompter) PromptRepository() (models.Repository, error) {
	return PromptRepository()
}

// MockPrompter for testing
type MockPrompter struct {
	Repository models.Repository
	Err        error

	// Call tracking
	PromptRepositoryCalled bool
}

// PromptRepository mocks the repository prompt
func (m *MockPrompter) PromptRepository() (models.Repository, error) {
	m.PromptRepositoryCalled = true
	return m.Repository, m.Err
}
