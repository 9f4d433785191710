package ui

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/ryo246912/gh-pr-report/internal/models"
)

// PromptRepository asks for an "owner/repo" pair on the terminal
func PromptRepository() (models.Repository, error) {
	prompt := promptui.Prompt{
		Label: "Repository (owner/repo)",
		Validate: func(input string) error {
			_, err := ParseRepository(input)
			return err
		},
	}

	input, err := prompt.Run()
	if err != nil {
		return models.Repository{}, fmt.Errorf("prompt failed: %w", err)
	}
	return ParseRepository(input)
}

// ParseRepository parses an "owner/repo" string
func ParseRepository(input string) (models.Repository, error) {
	parts := strings.Split(strings.TrimSpace(input), "/")
	if len(parts) != 2 {
		return models.Repository{}, fmt.Errorf("expected owner/repo, got %q", input)
	}

	owner := strings.TrimSpace(parts[0])
	name := strings.TrimSpace(parts[1])
	if owner == "" || name == "" {
		return models.Repository{}, fmt.Errorf("expected owner/repo, got %q", input)
	}
	return models.Repository{Owner: owner, Name: name}, nil
}
