package factory

import (
	"time"

	"github.com/mcoot/gomoku-go/internal/dependencies/mocks"
	"github.com/mcoot/gomoku-go/internal/events"
	"github.com/mcoot/gomoku-go/internal/events/sse"
	"github.com/mcoot/gomoku-go/internal/services/game"
	"github.com/mcoot/gomoku-go/internal/storage"
	"github.com/mcoot/gomoku-go/internal/storage/memory"
	"github.com/mcoot/gomoku-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Events     *events.Recorder
}

// NewTestApp creates an App on in-memory storage with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage creates an App on the given storage with mocked dependencies
func NewTestAppWithStorage(store storage.Storage) *TestApp {
	logger := testutil.NopLogger()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	recorder := events.NewRecorder()
	hubManager := sse.NewHubManager(logger)

	app := newWithDependencies(
		store,
		mockClock,
		mockRandom,
		game.DefaultDomainConfig(),
		hubManager,
		events.Multi{hubManager, recorder},
		logger,
	)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Events:     recorder,
	}
}
