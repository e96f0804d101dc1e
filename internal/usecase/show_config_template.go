package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/runoshun/whatstask/internal/domain"
)

// ShowConfigTemplateInput contains the input for the ShowConfigTemplate use case.
type ShowConfigTemplateInput struct {
	Config   *domain.Config // Values rendered into the template
	Sections []string       // Limit output to these tables, e.g. "notify.rate_limit"
}

// ShowConfigTemplateOutput contains the output of the ShowConfigTemplate use case.
type ShowConfigTemplateOutput struct {
	Template string   // Configuration template content
	Sections []string // Tables present in Template, in file order
}

// ShowConfigTemplate renders the commented config file, whole or in part.
type ShowConfigTemplate struct{}

// NewShowConfigTemplate creates a new ShowConfigTemplate use case.
func NewShowConfigTemplate() *ShowConfigTemplate {
	return &ShowConfigTemplate{}
}

// Execute renders in.Config into the template. With in.Sections set only
// those tables are kept, without the file preamble.
func (uc *ShowConfigTemplate) Execute(_ context.Context, in ShowConfigTemplateInput) (*ShowConfigTemplateOutput, error) {
	if in.Config == nil {
		return nil, domain.ErrConfigNil
	}

	preamble, blocks := splitTables(domain.RenderConfigTemplate(in.Config))
	names := make([]string, 0, len(blocks))
	for _, b := range blocks {
		names = append(names, b.name)
	}
	if len(in.Sections) == 0 {
		var sb strings.Builder
		sb.WriteString(preamble)
		for _, b := range blocks {
			sb.WriteString(b.body)
		}
		return &ShowConfigTemplateOutput{Template: sb.String(), Sections: names}, nil
	}

	for _, want := range in.Sections {
		if !slices.Contains(names, want) {
			return nil, fmt.Errorf("unknown config section %q (known: %s): %w",
				want, strings.Join(names, ", "), domain.ErrValidationFailed)
		}
	}
	var sb strings.Builder
	var kept []string
	for _, b := range blocks {
		if !slices.Contains(in.Sections, b.name) {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.TrimRight(b.body, "\n") + "\n")
		kept = append(kept, b.name)
	}
	return &ShowConfigTemplateOutput{Template: sb.String(), Sections: kept}, nil
}

type tableBlock struct {
	name string
	body string
}

// splitTables cuts a rendered TOML file at each [table] header. Text before
// the first header is returned as the preamble.
func splitTables(rendered string) (string, []tableBlock) {
	var preamble string
	var blocks []tableBlock
	for _, line := range strings.SplitAfter(rendered, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			blocks = append(blocks, tableBlock{name: strings.Trim(trimmed, "[]")})
		}
		if len(blocks) == 0 {
			preamble += line
			continue
		}
		blocks[len(blocks)-1].body += line
	}
	return preamble, blocks
}
