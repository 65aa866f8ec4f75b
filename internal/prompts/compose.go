package prompts

import (
	"context"
	"fmt"
	"strings"
	"text/template"
)

// ClassifyData is the template data for the classify stage.
type ClassifyData struct {
	Text        string
	SourceType  string
	CompanyType string
	Company     string
}

// DispatchData is the template data for the dispatch stage.
type DispatchData struct {
	Company         string
	CustomerContext string
	CompanyType     string
	UpdateType      string
	UpdateCategory  string
	Text            string
	Title           string
	KeyInsights     string
	AgentCatalogue  string
}

// SynthesizeData is the template data for the synthesize stage.
type SynthesizeData struct {
	Company         string
	CompanyType     string
	UpdateCategory  string
	UpdateType      string
	AgentName       string
	AgentOutput     string
	CustomerContext string
}

// Source resolves the effective instructions and spec for a stage.
type Source interface {
	Instructions(ctx context.Context, stage Stage) (string, error)
	Spec(ctx context.Context, stage Stage) (string, error)
}

type defaults struct{}

func (defaults) Instructions(_ context.Context, stage Stage) (string, error) {
	return Instructions(stage)
}

func (defaults) Spec(_ context.Context, stage Stage) (string, error) {
	return Spec(stage)
}

// Defaults returns a Source that serves the hardcoded instructions.
func Defaults() Source {
	return defaults{}
}

// Compose renders the stage instructions with data and appends the stage spec.
func Compose(ctx context.Context, src Source, stage Stage, data any) (string, error) {
	text, err := src.Instructions(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("%w: load %s instructions: %w", ErrRender, stage, err)
	}

	tmpl, err := parse(stage, text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("%w: execute %s: %w", ErrRender, stage, err)
	}

	spec, err := src.Spec(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("%w: load %s spec: %w", ErrRender, stage, err)
	}

	return b.String() + "\n\n" + spec, nil
}

// ValidateTemplate reports whether instructions parse as a template.
func ValidateTemplate(stage Stage, instructions string) error {
	if _, err := parse(stage, instructions); err != nil {
		return err
	}
	return nil
}

func parse(stage Stage, text string) (*template.Template, error) {
	tmpl, err := template.New(string(stage)).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	return tmpl, nil
}
