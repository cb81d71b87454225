package agents

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/va6996/ecochat/orm"
	"github.com/va6996/ecochat/plugins"
	"github.com/va6996/ecochat/plugins/building"
	"github.com/va6996/ecochat/router"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newDirect(t *testing.T) *DirectResponder {
	t.Helper()
	d := NewDirectResponder(nil, newRegistry(t))
	d.Now = func() time.Time { return testNow }
	return d
}

func TestChatService_EmptyMessage(t *testing.T) {
	svc := NewChatService(nil, nil, newDirect(t), nil)
	for _, msg := range []string{"", "   \n"} {
		_, err := svc.Chat(context.Background(), msg)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
}

func TestChatService_HelpIsLocal(t *testing.T) {
	agent := new(MockResponder)
	svc := NewChatService(nil, agent, newDirect(t), nil)

	ans, err := svc.Chat(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, ans.Source)
	assert.Equal(t, router.HelpMessage, ans.Text)
	agent.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything)
}

func TestChatService_Agent(t *testing.T) {
	agent := new(MockResponder)
	agent.On("Respond", mock.Anything, "how is the air quality?").
		Return(&Answer{Text: "CO2 is fine", Source: SourceAgent, Tools: []string{building.CO2AnalysisTool}}, nil)
	svc := NewChatService(nil, agent, newDirect(t), nil)

	ans, err := svc.Chat(context.Background(), "  how is the air quality?  ")
	require.NoError(t, err)
	assert.Equal(t, SourceAgent, ans.Source)
	assert.Equal(t, "CO2 is fine", ans.Text)
	agent.AssertExpectations(t)
}

func TestChatService_AgentFailureFallsBack(t *testing.T) {
	agent := new(MockResponder)
	agent.On("Respond", mock.Anything, mock.Anything).
		Return(nil, &plugins.UpstreamError{Service: "ollama", Err: errBoom})
	svc := NewChatService(nil, agent, newDirect(t), nil)

	ans, err := svc.Chat(context.Background(), "show energy stats")
	require.NoError(t, err)
	assert.Equal(t, SourceToolDirect, ans.Source)
	assert.Equal(t, []string{building.EnergyStatsTool}, ans.Tools)
	assert.Contains(t, ans.Text, "# Building Energy Statistics")
}

func TestChatService_AgentTimeoutFallsBack(t *testing.T) {
	svc := NewChatService(nil, blockingResponder{}, newDirect(t), nil)
	svc.Timeout = 10 * time.Millisecond

	ans, err := svc.Chat(context.Background(), "what is our carbon footprint")
	require.NoError(t, err)
	assert.Equal(t, SourceToolDirect, ans.Source)
	require.Len(t, ans.Results, 1)
	assert.Equal(t, building.EcoImpactTool, ans.Results[0].Tool)
	assert.Contains(t, ans.Text, "# Carbon Footprint Analysis")
}

func TestChatService_AgentUnavailable(t *testing.T) {
	svc := NewChatService(nil, NewEcoAgent(nil, nil, nil), newDirect(t), nil)

	ans, err := svc.Chat(context.Background(), "water usage please")
	require.NoError(t, err)
	assert.Equal(t, SourceToolDirect, ans.Source)
	assert.Contains(t, ans.Text, "# Water Usage Analysis")
}

func TestChatService_RouterMiss(t *testing.T) {
	svc := NewChatService(nil, nil, newDirect(t), nil)

	ans, err := svc.Chat(context.Background(), "tell me a joke")
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, ans.Source)
	assert.Equal(t, router.FallbackMessage, ans.Text)
}

func TestChatService_Unrecoverable(t *testing.T) {
	upstream := &plugins.UpstreamError{Service: "mcp", StatusCode: 500, Err: errBoom}
	svc := NewChatService(nil, nil, NewDirectResponder(nil, failingInvoker{err: upstream}), nil)

	ans, err := svc.Chat(context.Background(), "energy")
	require.Error(t, err)
	require.NotNil(t, ans)
	assert.Equal(t, SourceError, ans.Source)
	assert.Contains(t, ans.Text, "Sorry")

	ue, ok := plugins.AsUpstream(err)
	require.True(t, ok)
	assert.Equal(t, 502, ue.HTTPStatus())
}

func TestChatService_RecordsExchanges(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, orm.Migrate(db))

	svc := NewChatService(nil, nil, newDirect(t), NewDBRecorder(db))
	_, err = svc.Chat(context.Background(), "hi")
	require.NoError(t, err)
	_, err = svc.Chat(context.Background(), "energy stats")
	require.NoError(t, err)

	counts, err := orm.CountChatExchangesBySource(db)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"local": 1, "tool_direct": 1}, counts)

	recent, err := orm.RecentChatExchanges(db, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, building.EnergyStatsTool, recent[0].Tools)
}

func TestNewDBRecorder_Nil(t *testing.T) {
	assert.Nil(t, NewDBRecorder(nil))
}
