package fyne

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // album art decoders
	_ "image/png"
	"log/slog"
	"sync"
	"time"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	viswidget "github.com/tejashwikalptaru/tunewave/internal/adapter/ui/fyne/widgets/visualizer"
	"github.com/tejashwikalptaru/tunewave/internal/domain"
	"github.com/tejashwikalptaru/tunewave/internal/ports"
	"github.com/tejashwikalptaru/tunewave/internal/visualizer"
)

const (
	// AppName is the window title.
	AppName = "TuneWave"

	// WindowWidth and WindowHeight are the initial window size.
	WindowWidth  = 1200
	WindowHeight = 760

	artSize = 280
)

// panelColor is the translucent backing of the sidebar and the controls.
var panelColor = color.NRGBA{R: 10, G: 10, B: 15, A: 170}

// MainWindow is the main UI window implementing the ports.UI interface.
// It handles all UI rendering and user interactions.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All business logic is in the Presenter
// - User interactions are forwarded to the Presenter
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window
	logger *slog.Logger

	// Background
	visual       *viswidget.Widget
	cornerRadius float64

	// Sidebar
	trackList  *TrackList
	scanBox    *fyneapp.Container
	scanLabel  *widget.Label
	scanBar    *widget.ProgressBarInfinite
	scanCancel *widget.Button

	// Now playing
	artFrame      *fyneapp.Container
	albumArt      *canvas.Image
	titleLabel    *widget.Label
	subtitleLabel *widget.Label

	// Controls
	prevButton     *widget.Button
	playButton     *widget.Button
	nextButton     *widget.Button
	shuffleButton  *widget.Button
	loopButton     *widget.Button
	muteButton     *widget.Button
	currentTime    *widget.Label
	endTime        *widget.Label
	progressSlider *widget.Slider
	volumeSlider   *widget.Slider
	bassSlider     *widget.Slider
	midSlider      *widget.Slider
	trebleSlider   *widget.Slider
	gainSlider     *widget.Slider
	eqResetButton  *widget.Button

	// Lifecycle management
	closeOnce sync.Once

	// Presenter (set after construction)
	presenter *Presenter
	version   string
}

// NewMainWindow creates the main window around a visualizer loop. The window
// becomes the loop's anchor source: the rings follow the album art.
func NewMainWindow(app fyneapp.App, loop *visualizer.Loop, version string, logger *slog.Logger) *MainWindow {
	cfg := loop.State().Config()

	w := &MainWindow{
		app:          app,
		logger:       logger,
		cornerRadius: cfg.CornerRadius,
		version:      version,
	}

	w.window = app.NewWindow(AppName)
	w.visual = viswidget.New(loop)
	loop.SetAnchorSource(w)

	w.buildUI(cfg)
	w.window.SetOnDropped(w.handleDrop)

	w.window.Resize(fyneapp.NewSize(WindowWidth, WindowHeight))

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.wirePresenterHandlers()
	w.addShortcuts()
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI(cfg visualizer.Config) {
	// Sidebar
	w.trackList = NewTrackList()
	w.scanLabel = widget.NewLabel("")
	w.scanLabel.Truncation = fyneapp.TextTruncateEllipsis
	w.scanBar = widget.NewProgressBarInfinite()
	w.scanBar.Stop()
	w.scanCancel = widget.NewButtonWithIcon("", theme.CancelIcon(), nil)
	w.scanBox = container.NewBorder(nil, w.scanBar, nil, w.scanCancel, w.scanLabel)
	w.scanBox.Hide()

	sidebar := container.NewStack(
		canvas.NewRectangle(panelColor),
		container.NewPadded(container.NewBorder(nil, w.scanBox, nil, nil, w.trackList.Content())),
	)

	// Album art, the anchor of the rings
	w.albumArt = canvas.NewImageFromResource(theme.MediaMusicIcon())
	w.albumArt.FillMode = canvas.ImageFillContain
	artBackground := canvas.NewRectangle(panelColor)
	artBackground.CornerRadius = float32(w.cornerRadius)
	w.artFrame = container.NewGridWrap(fyneapp.NewSize(artSize, artSize),
		container.NewStack(artBackground, w.albumArt))

	w.titleLabel = widget.NewLabel("No track loaded")
	w.titleLabel.Alignment = fyneapp.TextAlignCenter
	w.titleLabel.TextStyle = fyneapp.TextStyle{Bold: true}
	w.titleLabel.Truncation = fyneapp.TextTruncateEllipsis
	w.subtitleLabel = widget.NewLabel("Open a file or folder to start")
	w.subtitleLabel.Alignment = fyneapp.TextAlignCenter
	w.subtitleLabel.Truncation = fyneapp.TextTruncateEllipsis

	nowPlaying := container.NewCenter(container.NewVBox(
		container.NewCenter(w.artFrame),
		w.titleLabel,
		w.subtitleLabel,
	))

	// Control buttons
	w.prevButton = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), nil)
	w.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)
	w.playButton.Importance = widget.HighImportance
	w.nextButton = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), nil)
	w.shuffleButton = widget.NewButton("Shuffle", nil)
	w.loopButton = widget.NewButtonWithIcon("", theme.MediaReplayIcon(), nil)
	w.muteButton = widget.NewButtonWithIcon("", theme.VolumeUpIcon(), nil)

	// Volume slider
	w.volumeSlider = widget.NewSlider(0, 100)
	w.volumeSlider.Orientation = widget.Horizontal
	volumeHolder := container.NewBorder(nil, nil, w.muteButton, nil, w.volumeSlider)

	buttonsHBox := container.NewHBox(
		w.shuffleButton, w.prevButton, w.playButton, w.nextButton, w.loopButton,
	)
	buttonsHolder := container.NewGridWithColumns(2, container.NewCenter(buttonsHBox), volumeHolder)

	// Progress slider
	w.progressSlider = widget.NewSlider(0, 1)
	w.progressSlider.Step = 0.1
	w.currentTime = widget.NewLabel(formatDuration(0))
	w.endTime = widget.NewLabel(formatDuration(0))
	sliderHolder := container.NewBorder(nil, nil, w.currentTime, w.endTime, w.progressSlider)

	// Equalizer
	w.bassSlider = newEQSlider()
	w.midSlider = newEQSlider()
	w.trebleSlider = newEQSlider()
	w.gainSlider = widget.NewSlider(domain.MinGainPct, domain.MaxGainPct)
	w.gainSlider.Value = domain.DefaultGainPct
	w.eqResetButton = widget.NewButtonWithIcon("Reset", theme.ViewRefreshIcon(), nil)
	eqHolder := container.NewBorder(nil, nil, nil, w.eqResetButton, container.NewGridWithColumns(4,
		labeledSlider("Bass", w.bassSlider),
		labeledSlider("Mid", w.midSlider),
		labeledSlider("Treble", w.trebleSlider),
		labeledSlider("Gain", w.gainSlider),
	))

	controls := container.NewStack(
		canvas.NewRectangle(panelColor),
		container.NewPadded(container.NewVBox(sliderHolder, buttonsHolder, eqHolder)),
	)

	// Main layout
	mainPanel := container.NewBorder(nil, controls, nil, nil, nowPlaying)
	foreground := container.New(&sidebarLayout{
		width:      float32(cfg.SidebarWidth),
		breakpoint: float32(cfg.NarrowBreakpoint),
	}, sidebar, mainPanel)

	w.window.SetContent(container.NewStack(w.visual, foreground))

	// Menu
	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

func newEQSlider() *widget.Slider {
	s := widget.NewSlider(domain.MinEQGainDB, domain.MaxEQGainDB)
	s.Step = 0.5
	return s
}

func labeledSlider(name string, s *widget.Slider) fyneapp.CanvasObject {
	return container.NewBorder(nil, nil, widget.NewLabel(name), nil, s)
}

// wirePresenterHandlers connects UI events to presenter handlers.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}
	p := w.presenter

	// Button handlers
	w.playButton.OnTapped = p.OnPlayPauseClicked
	w.nextButton.OnTapped = p.OnNextClicked
	w.prevButton.OnTapped = p.OnPreviousClicked
	w.shuffleButton.OnTapped = p.OnShuffleClicked
	w.loopButton.OnTapped = p.OnLoopClicked
	w.muteButton.OnTapped = p.OnMuteClicked
	w.scanCancel.OnTapped = p.OnCancelImport

	// Sliders
	w.volumeSlider.OnChanged = func(value float64) {
		p.OnVolumeChanged(value / 100.0)
	}
	w.progressSlider.OnChangeEnded = func(value float64) {
		p.OnSeekRequested(time.Duration(value * float64(time.Second)))
	}
	w.bassSlider.OnChanged = func(value float64) { p.OnEQChanged(domain.EQBass, value) }
	w.midSlider.OnChanged = func(value float64) { p.OnEQChanged(domain.EQMid, value) }
	w.trebleSlider.OnChanged = func(value float64) { p.OnEQChanged(domain.EQTreble, value) }
	w.gainSlider.OnChanged = p.OnGainChanged
	w.eqResetButton.OnTapped = p.OnEQResetClicked

	// Track list
	w.trackList.SetHandlers(p.Search, p.OnTrackSelected)
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	openFile := fyneapp.NewMenuItem("Open File...", w.handleOpenFile)
	openFolder := fyneapp.NewMenuItem("Open Folder...", w.handleOpenFolder)

	exitMenu := fyneapp.NewMenuItem("Exit", w.Quit)
	exitMenu.IsQuit = true

	fileMenu := fyneapp.NewMenu("File", openFile, openFolder, fyneapp.NewMenuItemSeparator(), exitMenu)

	about := fyneapp.NewMenuItem("About", func() {
		ShowAboutDialog(w.window, w.version)
	})
	helpMenu := fyneapp.NewMenu("Help", about)

	return []*fyneapp.Menu{fileMenu, helpMenu}
}

// handleOpenFile handles the "Open File" menu action.
func (w *MainWindow) handleOpenFile() {
	if w.presenter == nil {
		return
	}

	NewFileDialog(w.window, supportedExtensions(), func(filePath string) {
		w.presenter.OnFilesOpened([]string{filePath})
	}, w.logger).Show()
}

// handleOpenFolder handles the "Open Folder" menu action.
func (w *MainWindow) handleOpenFolder() {
	if w.presenter == nil {
		return
	}

	NewFolderDialog(w.window, w.presenter.OnFolderOpened, w.logger).Show()
}

// handleDrop imports files and folders dropped anywhere on the window.
func (w *MainWindow) handleDrop(_ fyneapp.Position, uris []fyneapp.URI) {
	if w.presenter == nil {
		return
	}

	if paths := droppedPaths(uris); len(paths) > 0 {
		w.presenter.OnDropped(paths)
	}
}

// droppedPaths keeps the local file system paths of uris.
func droppedPaths(uris []fyneapp.URI) []string {
	paths := make([]string, 0, len(uris))
	for _, uri := range uris {
		if uri == nil || uri.Scheme() != "file" {
			continue
		}
		paths = append(paths, uri.Path())
	}
	return paths
}

// addShortcuts adds keyboard shortcuts. Keys typed into a focused entry
// (the search box) never reach the canvas.
func (w *MainWindow) addShortcuts() {
	w.window.Canvas().SetOnTypedKey(func(event *fyneapp.KeyEvent) {
		w.handleKey(event.Name)
	})
}

func (w *MainWindow) handleKey(key fyneapp.KeyName) {
	if w.presenter == nil {
		return
	}

	switch key {
	case fyneapp.KeySpace:
		w.presenter.OnPlayPauseClicked()
	case fyneapp.KeyLeft:
		w.presenter.OnSeekStep(-SeekStep)
	case fyneapp.KeyRight:
		w.presenter.OnSeekStep(SeekStep)
	case fyneapp.KeyUp:
		w.presenter.OnVolumeStep(VolumeStep)
	case fyneapp.KeyDown:
		w.presenter.OnVolumeStep(-VolumeStep)
	}
}

// Anchor reports the album art rectangle in visualizer coordinates.
func (w *MainWindow) Anchor() (visualizer.Anchor, bool) {
	if !w.artFrame.Visible() {
		return visualizer.Anchor{}, false
	}

	size := w.artFrame.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return visualizer.Anchor{}, false
	}

	drv := w.app.Driver()
	art := drv.AbsolutePositionForObject(w.artFrame)
	origin := drv.AbsolutePositionForObject(w.visual)

	return visualizer.AnchorFromRect(
		float64(art.X-origin.X),
		float64(art.Y-origin.Y),
		float64(size.Width),
		float64(size.Height),
		w.cornerRadius,
	), true
}

// Run shows the window, starts the visualizer and blocks until the window closes.
func (w *MainWindow) Run() error {
	w.visual.Start()
	w.window.ShowAndRun()
	return nil
}

// Quit stops the visualizer and closes the window.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Quit() {
	w.closeOnce.Do(func() {
		w.visual.Stop()
		w.window.Close()
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// ports.UI implementation

// SetTrackInfo updates the displayed track information.
func (w *MainWindow) SetTrackInfo(title, subtitle string) {
	if title == "" {
		title = "No track loaded"
	}
	w.titleLabel.SetText(title)
	w.subtitleLabel.SetText(subtitle)
}

// SetAlbumArt updates the album artwork.
func (w *MainWindow) SetAlbumArt(imageData []byte) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		// If decode fails, use default
		w.logger.Debug("album art decode failed", slog.Any("error", err))
		w.ClearAlbumArt()
		return
	}

	w.albumArt.Resource = nil
	w.albumArt.Image = roundCorners(img, w.cornerRadius)
	w.albumArt.FillMode = canvas.ImageFillStretch
	w.albumArt.Refresh()
}

// ClearAlbumArt resets the album artwork to default.
func (w *MainWindow) ClearAlbumArt() {
	w.albumArt.Image = nil
	w.albumArt.Resource = theme.MediaMusicIcon()
	w.albumArt.FillMode = canvas.ImageFillContain
	w.albumArt.Refresh()
}

// SetPlayState updates the play/pause button state.
func (w *MainWindow) SetPlayState(playing bool) {
	if playing {
		w.playButton.SetIcon(theme.MediaPauseIcon())
	} else {
		w.playButton.SetIcon(theme.MediaPlayIcon())
	}
}

// SetProgress updates the seek slider and the time labels.
func (w *MainWindow) SetProgress(position, duration time.Duration) {
	w.currentTime.SetText(formatDuration(position))
	w.endTime.SetText(formatDuration(duration))

	if duration <= 0 {
		w.progressSlider.Max = 1
		w.progressSlider.Value = 0
	} else {
		w.progressSlider.Max = duration.Seconds()
		w.progressSlider.Value = min(position.Seconds(), w.progressSlider.Max)
	}
	w.progressSlider.Refresh()
}

// SetVolume updates the volume slider.
func (w *MainWindow) SetVolume(volume float64) {
	// Convert from 0.0-1.0 to 0-100
	w.volumeSlider.Value = volume * 100.0
	w.volumeSlider.Refresh()
}

// SetMuteState updates the mute button state.
func (w *MainWindow) SetMuteState(muted bool) {
	if muted {
		w.muteButton.SetIcon(theme.VolumeMuteIcon())
	} else {
		w.muteButton.SetIcon(theme.VolumeUpIcon())
	}
}

// SetLoopMode updates the loop button state.
func (w *MainWindow) SetLoopMode(mode domain.LoopMode) {
	switch mode {
	case domain.LoopAll:
		w.loopButton.SetText("All")
		w.loopButton.Importance = widget.HighImportance
	case domain.LoopOne:
		w.loopButton.SetText("One")
		w.loopButton.Importance = widget.HighImportance
	default:
		w.loopButton.SetText("")
		w.loopButton.Importance = widget.MediumImportance
	}
	w.loopButton.Refresh()
}

// SetShuffle updates the shuffle button state.
func (w *MainWindow) SetShuffle(enabled bool) {
	if enabled {
		w.shuffleButton.Importance = widget.HighImportance
	} else {
		w.shuffleButton.Importance = widget.MediumImportance
	}
	w.shuffleButton.Refresh()
}

// SetEqualizer moves the equalizer sliders without firing their callbacks.
func (w *MainWindow) SetEqualizer(settings domain.EqualizerSettings) {
	for _, s := range []struct {
		slider *widget.Slider
		value  float64
	}{
		{w.bassSlider, settings.BassDB},
		{w.midSlider, settings.MidDB},
		{w.trebleSlider, settings.TrebleDB},
		{w.gainSlider, settings.GainPct},
	} {
		s.slider.Value = s.value
		s.slider.Refresh()
	}
}

// ShowTrackList replaces the sidebar list.
func (w *MainWindow) ShowTrackList(tracks []domain.MusicTrack, currentIndex int) {
	w.trackList.Show(tracks, currentIndex)
}

// ShowScanProgress shows the import indicator.
func (w *MainWindow) ShowScanProgress(path string) {
	w.scanLabel.SetText(fmt.Sprintf("Importing %s", path))
	w.scanBar.Start()
	w.scanBox.Show()
}

// HideScanProgress hides the import indicator.
func (w *MainWindow) HideScanProgress() {
	w.scanBar.Stop()
	w.scanBox.Hide()
}

// ShowError displays an error dialog.
func (w *MainWindow) ShowError(title, message string) {
	dialog.ShowInformation(title, message, w.window)
}

// ShowNotification displays a system notification.
func (w *MainWindow) ShowNotification(title, message string) {
	w.app.SendNotification(fyneapp.NewNotification(title, message))
}

// formatDuration renders d as mm:ss.
func formatDuration(d time.Duration) string {
	seconds := max(int(d.Seconds()), 0)
	return fmt.Sprintf("%.2d:%.2d", seconds/60, seconds%60)
}

// supportedExtensions returns the dotted extensions the file dialog offers.
func supportedExtensions() []string {
	exts := make([]string, len(domain.SupportedFormats))
	for i, f := range domain.SupportedFormats {
		exts[i] = "." + f
	}
	return exts
}

// Verify interface implementations
var (
	_ ports.UI                = (*MainWindow)(nil)
	_ visualizer.AnchorSource = (*MainWindow)(nil)
)
