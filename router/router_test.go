package router_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/va6996/ecochat/plugins/building"
	"github.com/va6996/ecochat/router"
)

func TestRoute(t *testing.T) {
	r := router.New()

	tests := []struct {
		name   string
		query  string
		group  router.Group
		tool   string
		metric string
	}{
		{"Help", "hello there", router.GroupHelp, "", ""},
		{"HelpArabic", "مرحبا", router.GroupHelp, "", ""},
		{"HelpUpperCase", "HELP", router.GroupHelp, "", ""},
		{"Energy", "show me the energy stats", router.GroupEnergy, building.EnergyStatsTool, ""},
		{"EnergyArabic", "احصل على إحصائيات الطاقة للمبنى", router.GroupEnergy, building.EnergyStatsTool, ""},
		{"Sustainability", "Sustainability report please", router.GroupSustainability, building.SustainabilityTool, ""},
		{"Carbon", "what's the carbon footprint", router.GroupCarbon, building.EcoImpactTool, building.CarbonFootprint},
		{"CarbonArabic", "احسب البصمة الكربونية", router.GroupCarbon, building.EcoImpactTool, building.CarbonFootprint},
		{"Water", "how much water do we use", router.GroupWater, building.EcoImpactTool, building.WaterUsage},
		{"Environmental", "current temperature", router.GroupEnvironmental, building.EnergyStatsTool, ""},
		{"EnvironmentalArabic", "حالة الرطوبة", router.GroupEnvironmental, building.EnergyStatsTool, ""},
		{"CO2", "What are the CO2 levels?", router.GroupEnvironmental, building.EnergyStatsTool, ""},
		// Keywords match inside words, so prefixed Arabic forms still route.
		{"HelpArabicPrefixed", "أريد المساعدة", router.GroupHelp, "", ""},
		{"HelpSubstring", "is this humidity ok", router.GroupHelp, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := r.Route(tt.query)
			require.True(t, ok)
			assert.Equal(t, tt.group, d.Group)
			assert.Equal(t, tt.tool, d.Tool)
			assert.Equal(t, tt.tool == "", d.Help())
			if tt.metric != "" {
				assert.Equal(t, tt.metric, d.Params["metric_type"])
			}
		})
	}
}

func TestRoute_PriorityOrder(t *testing.T) {
	r := router.New()

	d, ok := r.Route("energy impact on water")
	require.True(t, ok)
	assert.Equal(t, router.GroupEnergy, d.Group)

	d, ok = r.Route("carbon and water metrics")
	require.True(t, ok)
	assert.Equal(t, router.GroupSustainability, d.Group)

	d, ok = r.Route("water and humidity")
	require.True(t, ok)
	assert.Equal(t, router.GroupWater, d.Group)

	groups := make([]router.Group, 0)
	for _, rule := range r.Rules() {
		groups = append(groups, rule.Group)
	}
	assert.Equal(t, []router.Group{
		router.GroupHelp,
		router.GroupEnergy,
		router.GroupSustainability,
		router.GroupCarbon,
		router.GroupWater,
		router.GroupEnvironmental,
	}, groups)
}

func TestRoute_NoMatch(t *testing.T) {
	r := router.New()
	for _, q := range []string{"", "   ", "tell me a joke", "قصيدة"} {
		_, ok := r.Route(q)
		assert.False(t, ok, q)
	}
}

func TestRoute_ParamsAreCopied(t *testing.T) {
	r := router.New()
	d, ok := r.Route("carbon")
	require.True(t, ok)
	d.Params["metric_type"] = "changed"

	d, _ = r.Route("carbon")
	assert.Equal(t, building.CarbonFootprint, d.Params["metric_type"])
}

func TestNew_WholeWordRule(t *testing.T) {
	r := router.New(router.Rule{Group: "greeting", Keywords: []string{"hi"}, WholeWord: true})

	_, ok := r.Route("is this ok")
	assert.False(t, ok)

	d, ok := r.Route("hi, there")
	require.True(t, ok)
	assert.True(t, d.Help())
}

func TestNew_CustomRules(t *testing.T) {
	r := router.New(router.Rule{Group: "lights", Keywords: []string{"Light"}, Tool: building.DataSummaryTool})
	d, ok := r.Route("LIGHT levels")
	require.True(t, ok)
	assert.Equal(t, building.DataSummaryTool, d.Tool)

	_, ok = r.Route("energy")
	assert.False(t, ok)
}
