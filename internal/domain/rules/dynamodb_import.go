package rules

import (
	"strings"

	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

// DynamoDbImport flags datasources fed by the DynamoDB connector. There is
// no automatic fix; the connection has to be recreated by hand.
func DynamoDbImport() domain.Rule {
	return domain.Rule{
		ID:          IDDynamoDbImport,
		Title:       "DynamoDB imports",
		Description: "DynamoDB import services need a manual migration plan in Forward.",
		AppliesTo:   []domain.ResourceKind{domain.KindDatasource},
		Severity:    domain.SeverityWarning,
		Check:       checkDynamoDb,
	}
}

func checkDynamoDb(res domain.Resource) ([]domain.Finding, error) {
	var out []domain.Finding
	for _, d := range res.View.Find("IMPORT_SERVICE") {
		if !strings.EqualFold(d.FirstValue(), "dynamodb") {
			continue
		}
		out = append(out, declFinding(res, d, "DynamoDB import service may have limitations in Forward; plan a manual migration"))
	}
	return out, nil
}
