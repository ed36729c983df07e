package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-formkit/pkg/model"
)

// Family names used to key blueprints and suggestions.
const (
	FamilyABA        = "aba"
	FamilyHIPAA      = "hipaa"
	FamilyAutism     = "autism"
	FamilyAssessment = "assessment"
	FamilyIntake     = "intake"
	FamilyConsent    = "consent"
	FamilyDefault    = "default"
)

// FallbackTitle names a generated form when no blueprint is available.
const FallbackTitle = "Generated Form"

type familyRule struct {
	family   string
	keywords []string
}

// Rules are checked in order; the first rule with a keyword contained in the
// lower-cased input wins.
var describeRules = []familyRule{
	{family: FamilyABA, keywords: []string{"aba", "behavior", "applied behavior analysis"}},
	{family: FamilyHIPAA, keywords: []string{"hipaa", "consent"}},
	{family: FamilyAutism, keywords: []string{"autism", "screening", "questionnaire"}},
	{family: FamilyAssessment, keywords: []string{"assessment", "evaluation"}},
	{family: FamilyIntake, keywords: []string{"intake", "registration"}},
}

var suggestRules = []familyRule{
	{family: FamilyABA, keywords: []string{"aba", "behavior", "applied behavior analysis"}},
	{family: FamilyConsent, keywords: []string{"consent", "hipaa"}},
	{family: FamilyAssessment, keywords: []string{"assessment", "evaluation"}},
	{family: FamilyIntake, keywords: []string{"intake", "registration"}},
}

func matchFamily(rules []familyRule, text, fallback string) string {
	text = strings.ToLower(text)
	for _, rule := range rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.family
			}
		}
	}
	return fallback
}

// Family reports which blueprint family a free-text description maps to.
func Family(description string) string {
	return matchFamily(describeRules, description, FamilyAssessment)
}

// FromDescription builds a schema from a free-text description using the
// keyword rules. It never fails: an unmatched description yields the
// assessment blueprint.
func (c *Catalog) FromDescription(description string) model.FormSchema {
	family := Family(description)
	if form, ok := c.blueprints[family]; ok {
		return form.Clone()
	}
	if form, ok := c.blueprints[FamilyAssessment]; ok {
		return form.Clone()
	}
	for _, tpl := range c.List() {
		if matchFamily([]familyRule{{family: tpl.ID, keywords: tpl.Keywords}}, description, "") != "" {
			return tpl.Schema()
		}
	}
	return model.FormSchema{Title: FallbackTitle, Fields: []model.Field{}}
}

// Suggest returns extra fields that fit a form with the given title. Ids are
// minted as field-<unix millis>-<n> from now.
func (c *Catalog) Suggest(title string, now time.Time) []model.Field {
	family := matchFamily(suggestRules, title, FamilyDefault)
	fields, ok := c.suggestions[family]
	if !ok {
		fields = c.suggestions[FamilyDefault]
	}

	stamp := now.UnixMilli()
	out := make([]model.Field, len(fields))
	for i, field := range fields {
		out[i] = field.Clone()
		out[i].ID = fmt.Sprintf("field-%d-%d", stamp, i+1)
	}
	return out
}
