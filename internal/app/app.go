// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
	"math/rand/v2"
	"os"
	"strconv"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/tejashwikalptaru/tunewave/internal/adapter/audio/beep"
	"github.com/tejashwikalptaru/tunewave/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/tunewave/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunewave/internal/adapter/metadata"
	fyneui "github.com/tejashwikalptaru/tunewave/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/tunewave/internal/domain"
	"github.com/tejashwikalptaru/tunewave/internal/dsp"
	"github.com/tejashwikalptaru/tunewave/internal/logger"
	"github.com/tejashwikalptaru/tunewave/internal/ports"
	"github.com/tejashwikalptaru/tunewave/internal/service"
	"github.com/tejashwikalptaru/tunewave/internal/visualizer"
)

// Environment overrides read by LoadConfig.
const (
	EnvMockAudio  = "TUNEWAVE_MOCK_AUDIO"
	EnvFFTSize    = "TUNEWAVE_FFT_SIZE"
	EnvSampleRate = "TUNEWAVE_SAMPLE_RATE"
)

// pcgStream derives the second PCG word from the seed.
const pcgStream = 0x9e3779b97f4a7c15

// FFT size limits accepted by the analysis tap.
const (
	MinFFTSize = dsp.MinFFTSize
	MaxFFTSize = dsp.MaxFFTSize
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App

	// Infrastructure
	eventBus    *eventbus.SyncEventBus
	audioEngine ports.AudioEngine

	// Services
	playbackService *service.PlaybackService
	playlistService *service.PlaylistService
	libraryService  *service.LibraryService

	// Visualizer
	activity *visualizer.ActivityTracker
	loop     *visualizer.Loop

	// UI
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	shutdownOnce sync.Once
	shutdownErr  error
}

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier
	AppID string

	// AppName is the display name
	AppName string

	// SampleRate is the output sample rate in Hz
	SampleRate int

	// FFTSize is the analysis window; it must be a power of two
	FFTSize int

	// UseMockAudio selects the silent mock engine (for testing)
	UseMockAudio bool

	// LogLevel controls logging verbosity
	LogLevel slog.Level

	// Visualizer holds every visual constant
	Visualizer visualizer.Config

	// Seed makes the particle field reproducible; zero picks a random seed
	Seed uint64

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	return Config{
		AppID:        "com.tunewave.app",
		AppName:      fyneui.AppName,
		SampleRate:   44100,
		FFTSize:      512,
		UseMockAudio: false,
		LogLevel:     loggerCfg.Level,
		Visualizer:   visualizer.DefaultConfig(),
	}
}

// LoadConfig returns DefaultConfig with the environment overrides applied.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv(EnvMockAudio); ok {
		mockAudio, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, domain.NewValidationError("mock_audio", v, "must be a boolean")
		}
		cfg.UseMockAudio = mockAudio
	}
	if v, ok := os.LookupEnv(EnvFFTSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, domain.NewValidationError("fft_size", v, "must be an integer")
		}
		cfg.FFTSize = n
	}
	if v, ok := os.LookupEnv(EnvSampleRate); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, domain.NewValidationError("sample_rate", v, "must be an integer")
		}
		cfg.SampleRate = n
	}

	return cfg, cfg.Validate()
}

// Validate checks the audio settings and the visualizer constants.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return domain.NewValidationError("sample_rate", c.SampleRate, "must be positive")
	}
	if c.FFTSize < MinFFTSize || c.FFTSize > MaxFFTSize || bits.OnesCount(uint(c.FFTSize)) != 1 {
		return domain.NewValidationError("fft_size", c.FFTSize,
			fmt.Sprintf("must be a power of two between %d and %d", MinFFTSize, MaxFFTSize))
	}
	return c.Visualizer.Validate()
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(config Config) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{}

	// Step 1: Create Fyne application
	if config.TestFyneApp != nil {
		app.fyneApp = config.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(config.AppID)
	}

	// Step 1.5: Create logger
	app.logger = logger.NewLogger(logger.Config{
		Level:  config.LogLevel,
		Format: "text",
	})
	app.logger.Info("initializing application",
		slog.String("app_id", config.AppID),
		slog.String("app_name", config.AppName),
		slog.String("version", GetVersionInfo().FullString()),
		slog.Int("sample_rate", config.SampleRate),
		slog.Int("fft_size", config.FFTSize))

	// Step 2: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus()
	app.eventBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))

	// Step 3: Create an audio engine
	engine, err := newAudioEngine(config, app.logger)
	if err != nil {
		return nil, err
	}
	app.audioEngine = engine

	// Step 4: Create services (with dependency injection)
	app.playbackService = service.NewPlaybackService(
		app.logger.With(slog.String("service", "playback")),
		app.audioEngine,
		app.eventBus,
	)

	app.playlistService = service.NewPlaylistService(
		app.logger.With(slog.String("service", "playlist")),
		app.playbackService,
		app.eventBus,
		nil,
	)

	app.libraryService = service.NewLibraryService(
		app.logger.With(slog.String("service", "library")),
		metadata.NewReader(app.logger.With(slog.String("component", "metadata"))),
		app.eventBus,
	)

	// Step 5: Create the visualizer loop; the window supplies the renderer and anchor
	seed := config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	state := visualizer.NewState(
		config.Visualizer,
		visualizer.Viewport{Width: fyneui.WindowWidth, Height: fyneui.WindowHeight},
		rand.New(rand.NewPCG(seed, seed^pcgStream)),
	)
	app.activity = visualizer.NewActivityTracker(app.eventBus)
	app.loop = visualizer.NewLoop(
		state,
		visualizer.NewSampler(app.audioEngine.Analysis()),
		app.activity,
		nil,
		nil,
		app.logger.With(slog.String("component", "visualizer")),
	)

	// Step 6: Create UI
	app.mainWindow = fyneui.NewMainWindow(
		app.fyneApp,
		app.loop,
		GetVersionInfo().Short(),
		app.logger.With(slog.String("component", "window")),
	)
	app.presenter = fyneui.NewPresenter(
		app.logger.With(slog.String("component", "presenter")),
		app.playbackService,
		app.playlistService,
		app.libraryService,
		app.eventBus,
		app.mainWindow,
	)
	app.mainWindow.SetPresenter(app.presenter)

	app.logger.Info("application initialized successfully")
	return app, nil
}

// newAudioEngine creates and initializes the configured engine.
func newAudioEngine(config Config, log *slog.Logger) (ports.AudioEngine, error) {
	if config.UseMockAudio {
		engine := mock.NewEngine()
		engine.SetLogger(log.With(slog.String("engine", "mock")))
		if err := engine.Initialize(config.SampleRate, config.FFTSize); err != nil {
			return nil, fmt.Errorf("failed to initialize audio engine: %w", err)
		}
		return engine, nil
	}

	engine := beep.NewEngine()
	engine.SetLogger(log.With(slog.String("engine", "beep")))
	if err := engine.Initialize(config.SampleRate, config.FFTSize); err != nil {
		return nil, fmt.Errorf("failed to initialize audio engine: %w", err)
	}
	return engine, nil
}

// Run starts the application and blocks until the window is closed.
func (app *Application) Run() error {
	app.logger.Info("starting application")
	return app.mainWindow.Run()
}

// Shutdown releases everything in reverse creation order. It is safe to call
// more than once; later calls return the first result.
func (app *Application) Shutdown() error {
	app.shutdownOnce.Do(func() {
		app.logger.Info("shutting down application")

		var errs []error
		if app.presenter != nil {
			app.presenter.Shutdown()
		}
		if app.activity != nil {
			app.activity.Close()
		}
		if app.libraryService != nil {
			errs = append(errs, app.libraryService.Shutdown())
		}
		if app.playlistService != nil {
			errs = append(errs, app.playlistService.Shutdown())
		}
		if app.playbackService != nil {
			errs = append(errs, app.playbackService.Shutdown())
		}
		if app.audioEngine != nil {
			errs = append(errs, app.audioEngine.Shutdown())
		}
		if app.eventBus != nil {
			errs = append(errs, app.eventBus.Close())
		}

		app.shutdownErr = errors.Join(errs...)
		if app.shutdownErr != nil {
			app.logger.Error("shutdown finished with errors", slog.Any("error", app.shutdownErr))
		} else {
			app.logger.Info("application shutdown complete")
		}
	})
	return app.shutdownErr
}

// GetServices returns all services (for testing).
func (app *Application) GetServices() (*service.PlaybackService, *service.PlaylistService, *service.LibraryService) {
	return app.playbackService, app.playlistService, app.libraryService
}

// GetEventBus returns the event bus (for testing).
func (app *Application) GetEventBus() ports.EventBus {
	return app.eventBus
}

// GetFyneApp returns the Fyne app (for testing).
func (app *Application) GetFyneApp() fyne.App {
	return app.fyneApp
}

// GetVisualizer returns the visualizer loop (for testing).
func (app *Application) GetVisualizer() *visualizer.Loop {
	return app.loop
}
