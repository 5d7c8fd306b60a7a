package rules

import (
	"fmt"
	"strings"

	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

// EndpointType requires every endpoint to declare at least one named NODE.
func EndpointType() domain.Rule {
	return domain.Rule{
		ID:          IDEndpointType,
		Title:       "Endpoint structure",
		Description: "Endpoints must declare a NODE; Forward rejects endpoint files without one.",
		AppliesTo:   []domain.ResourceKind{domain.KindEndpoint},
		Severity:    domain.SeverityBlocking,
		Fixable:     true,
		Check:       checkEndpointType,
		Propose:     proposeEndpointType,
	}
}

func hasNode(v domain.ParsedView) bool {
	for _, d := range v.Find("NODE") {
		if d.FirstValue() != "" {
			return true
		}
	}
	return false
}

func checkEndpointType(res domain.Resource) ([]domain.Finding, error) {
	if hasNode(res.View) {
		return nil, nil
	}
	return []domain.Finding{{
		Scope:   domain.ScopeResource,
		Message: "endpoint has no NODE declaration",
		Locator: domain.Locator{Line: 1, EndLine: 1},
	}}, nil
}

func proposeEndpointType(f domain.Finding, s domain.FixSettings) *domain.FixProposal {
	node := "NODE " + s.DefaultNode
	return &domain.FixProposal{
		Finding:     f,
		Description: fmt.Sprintf("Insert %q at the top of the file", node),
		Transform: func(text string) string {
			if hasNode(domain.Parse(text)) {
				return text
			}
			body, bom := strings.CutPrefix(text, domain.BOM)
			line := node + domain.LineEnding(text)
			if bom {
				return domain.BOM + line + body
			}
			return line + body
		},
	}
}
