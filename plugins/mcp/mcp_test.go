package mcp_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/va6996/ecochat/dataset"
	"github.com/va6996/ecochat/plugins/building"
	"github.com/va6996/ecochat/plugins/mcp"
	"github.com/va6996/ecochat/tools"
)

func testRegistry() *tools.Registry {
	s := dataset.Some
	data := dataset.New([]dataset.Reading{
		{Timestamp: time.Date(2024, 10, 7, 9, 0, 0, 0, time.UTC), CO2: s(450), Humidity: s(50), PIR: s(2), BuildingID: 413},
		{Timestamp: time.Date(2024, 10, 8, 9, 0, 0, 0, time.UTC), CO2: s(1250), Humidity: s(50), PIR: s(3), BuildingID: 413},
	})
	reg := tools.NewRegistry()
	building.NewClient(data, nil, reg)
	return reg
}

func inMemoryClient(t *testing.T, server *mcp.Server) *mcp.Client {
	t.Helper()
	ctx := context.Background()
	client, err := mcp.NewClient(ctx, mcp.ClientConfig{
		Transport: func() sdk.Transport {
			st, ct := sdk.NewInMemoryTransports()
			_, err := server.MCP().Connect(ctx, st, nil)
			require.NoError(t, err)
			return ct
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClient_ListTools(t *testing.T) {
	reg := testRegistry()
	client := inMemoryClient(t, mcp.NewServer(reg, "test"))

	remote, err := client.ListTools(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(remote))
	for _, tool := range remote {
		names = append(names, tool.Name)
	}
	for _, m := range reg.Manifests() {
		assert.Contains(t, names, m.Name)
	}
}

func TestClient_Invoke(t *testing.T) {
	client := inMemoryClient(t, mcp.NewServer(testRegistry(), "test"))
	ctx := context.Background()

	t.Run("OK", func(t *testing.T) {
		res, err := client.Invoke(ctx, building.EcoImpactTool, map[string]any{"metric_type": building.WaterUsage})
		require.NoError(t, err)
		require.Equal(t, tools.StatusOK, res.Status)

		var impact building.WaterUsageImpact
		require.NoError(t, res.Decode(&impact))
		require.NotNil(t, impact.EstimatedLiters)
		assert.InDelta(t, 50.0, *impact.EstimatedLiters, 0.001)
	})

	t.Run("MatchesLocalResult", func(t *testing.T) {
		local, err := testRegistry().ExecuteTool(ctx, building.CO2AnalysisTool, nil)
		require.NoError(t, err)
		remote, err := client.Invoke(ctx, building.CO2AnalysisTool, nil)
		require.NoError(t, err)

		assert.Equal(t, local.Status, remote.Status)
		assert.Equal(t, local.Recommendations, remote.Recommendations)
		var want, got building.CO2Analysis
		require.NoError(t, local.Decode(&want))
		require.NoError(t, remote.Decode(&got))
		assert.Equal(t, want, got)
	})

	t.Run("ToolErrorStatus", func(t *testing.T) {
		res, err := client.Invoke(ctx, building.EnergyStatsTool, map[string]any{"start_date": "yesterday-ish"})
		require.NoError(t, err)
		assert.Equal(t, tools.StatusError, res.Status)
		assert.Contains(t, res.Message, building.EnergyStatsTool)
	})

	t.Run("UnknownTool", func(t *testing.T) {
		_, err := client.Invoke(ctx, "get_weather", nil)
		assert.True(t, errors.Is(err, tools.ErrToolNotFound))
	})

	t.Run("SchemaValidation", func(t *testing.T) {
		_, err := client.Invoke(ctx, building.EnergyStatsTool, map[string]any{"start_date": 20241001})
		assert.True(t, errors.Is(err, mcp.ErrInvalidArguments))
	})
}

func TestServer_StreamableHTTP(t *testing.T) {
	srv := httptest.NewServer(mcp.NewServer(testRegistry(), "test").Handler())
	defer srv.Close()

	ctx := context.Background()
	client, err := mcp.NewClient(ctx, mcp.ClientConfig{Endpoint: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	defer client.Close()

	res, err := client.Invoke(ctx, building.DataSummaryTool, nil)
	require.NoError(t, err)
	require.Equal(t, tools.StatusOK, res.Status)

	var summary building.DataSummary
	require.NoError(t, res.Decode(&summary))
	assert.Equal(t, 2, summary.TotalRecords)
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := mcp.NewClient(context.Background(), mcp.ClientConfig{})
	assert.Error(t, err)
}
