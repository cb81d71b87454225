package agents

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/va6996/ecochat/dataset"
	"github.com/va6996/ecochat/plugins/building"
	"github.com/va6996/ecochat/tools"
)

var testNow = time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)

// 2024-10-07 is a Monday.
func fixture() *dataset.Dataset {
	s := dataset.Some
	at := func(day, hour int) time.Time { return time.Date(2024, time.October, day, hour, 0, 0, 0, time.UTC) }
	return dataset.New([]dataset.Reading{
		{Timestamp: at(7, 9), CO2: s(450), Temperature: s(22), Humidity: s(45), Light: s(300), PIR: s(1), BuildingID: 413},
		{Timestamp: at(7, 10), CO2: s(800), Temperature: s(23), Humidity: s(50), Light: s(320), PIR: s(3), BuildingID: 413},
		{Timestamp: at(8, 9), CO2: s(1200), Temperature: s(26), Humidity: s(65), Light: s(310), PIR: s(2), BuildingID: 413},
		{Timestamp: at(8, 14), CO2: s(380), Temperature: s(19), Humidity: s(35), PIR: s(0), BuildingID: 413},
		{Timestamp: at(9, 10), Temperature: s(21), Humidity: s(55), PIR: s(1), BuildingID: 413},
	})
}

func newRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry()
	c := building.NewClient(fixture(), nil, reg)
	c.Now = func() time.Time { return testNow }
	return reg
}

// MockResponder
type MockResponder struct {
	mock.Mock
}

func (m *MockResponder) Respond(ctx context.Context, query string) (*Answer, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Answer), args.Error(1)
}

// blockingResponder waits for its context to end.
type blockingResponder struct{}

func (blockingResponder) Respond(ctx context.Context, _ string) (*Answer, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type failingInvoker struct{ err error }

func (f failingInvoker) Invoke(context.Context, string, map[string]any) (*tools.Result, error) {
	return nil, f.err
}

var errBoom = errors.New("boom")

type stubLLM struct {
	calls atomic.Int32
	text  string
	err   error
	last  string
}

func (s *stubLLM) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.calls.Add(1)
	s.last = prompt
	return s.text, s.err
}
