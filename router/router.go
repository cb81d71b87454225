// Package router maps free-text queries onto building tools with an ordered
// keyword table. The first matching rule wins, so table order is priority.
package router

import (
	"strings"
	"unicode"

	"github.com/va6996/ecochat/plugins/building"
	"golang.org/x/text/cases"
)

// Group names a keyword rule.
type Group string

const (
	GroupHelp           Group = "help"
	GroupEnergy         Group = "energy"
	GroupSustainability Group = "sustainability"
	GroupCarbon         Group = "carbon"
	GroupWater          Group = "water"
	GroupEnvironmental  Group = "environmental"
)

// Rule routes queries containing any of Keywords to Tool. A rule without a
// Tool is informational. WholeWord restricts matches to complete words.
type Rule struct {
	Group     Group
	Keywords  []string
	Tool      string
	Params    map[string]any
	WholeWord bool
}

// Decision is the outcome of a successful route.
type Decision struct {
	Group  Group
	Tool   string
	Params map[string]any
}

// Help reports whether the decision is the static informational answer.
func (d Decision) Help() bool { return d.Tool == "" }

// DefaultRules is the bilingual (English and Arabic) keyword table.
func DefaultRules() []Rule {
	return []Rule{
		{
			Group:    GroupHelp,
			Keywords: []string{"list", "buildings", "available", "help", "hello", "hi", "مساعدة", "مرحبا", "معلومات", "ساعدني"},
		},
		{
			Group:    GroupEnergy,
			Keywords: []string{"energy", "stats", "consumption", "طاقة", "إحصائيات", "استهلاك", "احصل"},
			Tool:     building.EnergyStatsTool,
		},
		{
			Group:    GroupSustainability,
			Keywords: []string{"sustainability", "metrics", "استدامة", "مقاييس", "بيئة"},
			Tool:     building.SustainabilityTool,
		},
		{
			Group:    GroupCarbon,
			Keywords: []string{"carbon", "footprint", "eco", "impact", "كربون", "بصمة", "احسب"},
			Tool:     building.EcoImpactTool,
			Params:   map[string]any{"metric_type": building.CarbonFootprint},
		},
		{
			Group:    GroupWater,
			Keywords: []string{"water", "ماء", "مياه"},
			Tool:     building.EcoImpactTool,
			Params:   map[string]any{"metric_type": building.WaterUsage},
		},
		{
			Group:    GroupEnvironmental,
			Keywords: []string{"temperature", "humidity", "co2", "air", "حرارة", "رطوبة", "هواء"},
			Tool:     building.EnergyStatsTool,
		},
	}
}

// Router matches queries against an ordered rule table. It is safe for
// concurrent use.
type Router struct {
	rules []Rule
}

// New builds a router over rules, or over DefaultRules when none are given.
func New(rules ...Rule) *Router {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	folded := make([]Rule, len(rules))
	for i, r := range rules {
		r.Keywords = foldAll(r.Keywords)
		folded[i] = r
	}
	return &Router{rules: folded}
}

// Rules returns a copy of the rule table.
func (r *Router) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Route returns the first rule matching query.
func (r *Router) Route(query string) (Decision, bool) {
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return Decision{}, false
	}
	var words map[string]bool
	for _, rule := range r.rules {
		if rule.WholeWord && words == nil {
			words = wordSet(q)
		}
		if matches(rule, q, words) {
			return Decision{Group: rule.Group, Tool: rule.Tool, Params: copyParams(rule.Params)}, true
		}
	}
	return Decision{}, false
}

func matches(rule Rule, q string, words map[string]bool) bool {
	for _, kw := range rule.Keywords {
		if rule.WholeWord {
			if words[kw] {
				return true
			}
			continue
		}
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// Casers carry state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

func foldAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fold(s)
	}
	return out
}

func wordSet(q string) map[string]bool {
	fields := strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.Is(unicode.Mn, r)
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

func copyParams(p map[string]any) map[string]any {
	if p == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
