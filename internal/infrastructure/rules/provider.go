// Package rules loads the documents fed to the two analysis passes: the
// internal compliance rules and the legal-reference summary.
package rules

import (
	"context"
	"fmt"
	"os"
	"strings"
)

type FileProvider struct {
	internalRules string
	legalSummary  string
}

// NewFileProvider reads both documents at startup. A missing or empty
// document is a configuration error, not something to paper over with a
// fallback string.
func NewFileProvider(internalRulesPath, legalSummaryPath string) (*FileProvider, error) {
	internal, err := readDocument(internalRulesPath)
	if err != nil {
		return nil, fmt.Errorf("load internal rules: %w", err)
	}
	legal, err := readDocument(legalSummaryPath)
	if err != nil {
		return nil, fmt.Errorf("load legal summary: %w", err)
	}
	return &FileProvider{internalRules: internal, legalSummary: legal}, nil
}

func (p *FileProvider) InternalRules(context.Context) (string, error) {
	return p.internalRules, nil
}

func (p *FileProvider) LegalSummary(context.Context) (string, error) {
	return p.legalSummary, nil
}

func readDocument(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", fmt.Errorf("document %s is empty", path)
	}
	return text, nil
}
