package fyne

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/tunewave/res"
)

// FileDialog is a helper for creating file open dialogs limited to audio files.
type FileDialog struct {
	window     fyne.Window
	extensions []string
	callback   func(string)
	logger     *slog.Logger
}

// NewFileDialog creates a new file dialog. extensions carry their leading dot.
func NewFileDialog(window fyne.Window, extensions []string, callback func(string), logger *slog.Logger) *FileDialog {
	return &FileDialog{
		window:     window,
		extensions: extensions,
		callback:   callback,
		logger:     logger,
	}
}

// Show displays the file dialog.
func (d *FileDialog) Show() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			d.logger.Error("file dialog error", slog.Any("error", err))
			return
		}
		if reader == nil {
			return // User cancelled
		}
		filePath := reader.URI().Path()
		_ = reader.Close()

		if d.callback != nil {
			d.callback(filePath)
		}
	}, d.window)

	if len(d.extensions) > 0 {
		fd.SetFilter(storage.NewExtensionFileFilter(d.extensions))
	}
	fd.Show()
}

// FolderDialog is a helper for creating folder open dialogs.
type FolderDialog struct {
	window   fyne.Window
	callback func(string)
	logger   *slog.Logger
}

// NewFolderDialog creates a new folder dialog.
func NewFolderDialog(window fyne.Window, callback func(string), logger *slog.Logger) *FolderDialog {
	return &FolderDialog{
		window:   window,
		callback: callback,
		logger:   logger,
	}
}

// Show displays the folder dialog.
func (d *FolderDialog) Show() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			d.logger.Error("folder dialog error", slog.Any("error", err))
			return
		}
		if uri == nil {
			return // User cancelled
		}

		if d.callback != nil {
			d.callback(uri.Path())
		}
	}, d.window)
}

// ShowAboutDialog shows the application description and version.
func ShowAboutDialog(window fyne.Window, version string) {
	body := widget.NewRichTextFromMarkdown(res.AboutContent)
	body.Wrapping = fyne.TextWrapWord

	versionLabel := widget.NewLabel(version)
	versionLabel.Importance = widget.LowImportance

	content := container.NewBorder(nil, versionLabel, nil, nil, body)
	d := dialog.NewCustom("About "+AppName, "Close", content, window)
	d.Resize(fyne.NewSize(420, 360))
	d.Show()
}
