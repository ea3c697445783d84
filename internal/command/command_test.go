package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-chaldean-clock/internal/config"
	"github.com/tartampluch/go-chaldean-clock/internal/engine"
	"github.com/tartampluch/go-chaldean-clock/internal/session"
)

// MockTarget records the calls made by command handlers.
type MockTarget struct {
	mock.Mock
}

func (m *MockTarget) SetHour(n int) error { return m.Called(n).Error(0) }
func (m *MockTarget) SetDay(n int) error  { return m.Called(n).Error(0) }
func (m *MockTarget) AdvanceHour(times int) {
	m.Called(times)
}
func (m *MockTarget) Pause()  { m.Called() }
func (m *MockTarget) Resume() { m.Called() }
func (m *MockTarget) RegisterHandler(label string, eventID int) error {
	return m.Called(label, eventID).Error(0)
}
func (m *MockTarget) HideDisplay()    { m.Called() }
func (m *MockTarget) ShowDisplay()    { m.Called() }
func (m *MockTarget) RefreshDisplay() { m.Called() }

var _ Target = (*session.Session)(nil)

func TestHandlersCoverEveryKind(t *testing.T) {
	kinds := Kinds()
	require.Len(t, kinds, int(kindCount))

	for _, k := range kinds {
		_, ok := handlers[k]
		assert.True(t, ok, "no handler for %s", k)
		assert.NotContains(t, k.String(), "Kind(", "no name for %d", int(k))
	}
	assert.Len(t, handlers, int(kindCount))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Command
	}{
		{"SetHour", "SetHour 5", Command{Kind: KindSetHour, N: 5}},
		{"Lower case name", "sethour 7", Command{Kind: KindSetHour, N: 7}},
		{"SetDay", "SETDAY 3", Command{Kind: KindSetDay, N: 3}},
		{"AdvanceHour default", "AdvanceHour", Command{Kind: KindAdvanceHour, N: 1}},
		{"AdvanceHour count", "advancehour 24", Command{Kind: KindAdvanceHour, N: 24}},
		{"PauseTime", "PauseTime", Command{Kind: KindPauseTime}},
		{"ResumeTime", "  resumetime  ", Command{Kind: KindResumeTime}},
		{"RegisterEvent", "RegisterEvent mars 12", Command{Kind: KindRegisterEvent, Planet: engine.Mars, EventID: 12}},
		{"HideClock", "HideClock", Command{Kind: KindHideClock}},
		{"ShowClock extra args", "ShowClock now please", Command{Kind: KindShowClock}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"Empty", "   ", ErrUnknownCommand},
		{"Unknown", "StopTime", ErrUnknownCommand},
		{"SetHour without value", "SetHour", ErrMissingArgument},
		{"SetDay not a number", "SetDay three", ErrInvalidArgument},
		{"AdvanceHour negative", "AdvanceHour -2", ErrInvalidArgument},
		{"RegisterEvent missing id", "RegisterEvent Sun", ErrMissingArgument},
		{"RegisterEvent bad planet", "RegisterEvent Pluto 3", ErrInvalidArgument},
		{"RegisterEvent bad id", "RegisterEvent Sun x", ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.line)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_BadPlanetKeepsLabelError(t *testing.T) {
	_, err := Parse("RegisterEvent Pluto 3")
	assert.ErrorIs(t, err, engine.ErrInvalidLabel)
}

func TestExecute_DispatchesToTarget(t *testing.T) {
	tests := []struct {
		line  string
		setup func(m *MockTarget)
	}{
		{"SetHour 4", func(m *MockTarget) { m.On("SetHour", 4).Return(nil) }},
		{"SetDay 2", func(m *MockTarget) { m.On("SetDay", 2).Return(nil) }},
		{"AdvanceHour 3", func(m *MockTarget) { m.On("AdvanceHour", 3).Return() }},
		{"PauseTime", func(m *MockTarget) { m.On("Pause").Return() }},
		{"ResumeTime", func(m *MockTarget) { m.On("Resume").Return() }},
		{"RegisterEvent moon 9", func(m *MockTarget) { m.On("RegisterHandler", "Moon", 9).Return(nil) }},
		{"HideClock", func(m *MockTarget) { m.On("HideDisplay").Return() }},
		{"ShowClock", func(m *MockTarget) { m.On("ShowDisplay").Return() }},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			m := new(MockTarget)
			tt.setup(m)
			m.On("RefreshDisplay").Return().Once()

			require.NoError(t, Run(m, tt.line))
			m.AssertExpectations(t)
		})
	}
}

func TestExecute_RejectedStillRefreshes(t *testing.T) {
	m := new(MockTarget)
	m.On("SetHour", 0).Return(engine.ErrOutOfRangeSet)
	m.On("RefreshDisplay").Return().Once()

	err := Run(m, "SetHour 0")

	assert.ErrorIs(t, err, engine.ErrOutOfRangeSet)
	assert.ErrorContains(t, err, config.ErrCommandRejected)
	m.AssertExpectations(t)
}

func TestRun_ParseErrorTouchesNothing(t *testing.T) {
	m := new(MockTarget)

	err := Run(m, "SetHour")

	assert.ErrorIs(t, err, ErrMissingArgument)
	m.AssertNotCalled(t, "RefreshDisplay")
}

func TestRun_AgainstSession(t *testing.T) {
	p := config.DefaultParams()
	s := session.New(p)

	require.NoError(t, Run(s, "RegisterEvent Jupiter 4"))
	require.NoError(t, Run(s, "AdvanceHour"))
	assert.Equal(t, "Jupiter", s.RulerLabel())
	assert.Equal(t, []int{4}, s.Reserved())

	require.NoError(t, Run(s, "PauseTime"))
	require.NoError(t, Run(s, "AdvanceHour 5"))
	assert.Equal(t, 2, s.CurrentHour())

	require.NoError(t, Run(s, "ResumeTime"))
	require.NoError(t, Run(s, "SetDay 3"))
	require.NoError(t, Run(s, "SetHour 99"))
	assert.Equal(t, 3, s.CurrentDay())
	assert.Equal(t, p.HoursPerDay, s.CurrentHour())
}

func TestKindString_Unknown(t *testing.T) {
	assert.Equal(t, "Kind(42)", Kind(42).String())
	assert.Equal(t, "RegisterEvent Sun 2", Command{Kind: KindRegisterEvent, Planet: engine.Sun, EventID: 2}.String())
}
