package service

import (
	"cmp"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tejashwikalptaru/tunewave/internal/domain"
	"github.com/tejashwikalptaru/tunewave/internal/ports"
)

// readWorkers bounds the number of files whose tags are read at once.
const readWorkers = 4

// LibraryService imports audio files and reads their metadata.
// All operations are thread-safe via sync.RWMutex.
type LibraryService struct {
	// Dependencies (injected)
	logger *slog.Logger
	reader ports.MetadataReader
	bus    ports.EventBus

	// State
	scanning   bool
	cancelScan context.CancelFunc

	// Concurrency control
	mu sync.RWMutex
}

// NewLibraryService creates a new library service.
func NewLibraryService(
	logger *slog.Logger,
	reader ports.MetadataReader,
	bus ports.EventBus,
) *LibraryService {
	return &LibraryService{
		logger: logger,
		reader: reader,
		bus:    bus,
	}
}

// ImportFolder walks folderPath recursively and returns a track for every supported
// audio file, ordered by file name the way a person would number them.
// Files whose tags cannot be read are skipped.
func (s *LibraryService) ImportFolder(ctx context.Context, folderPath string) ([]domain.MusicTrack, error) {
	ctx, done, err := s.beginScan(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	s.bus.Publish(domain.NewScanStartedEvent(folderPath))

	files, err := s.collectAudioFiles(ctx, folderPath)
	if err != nil {
		return nil, s.scanFailed(err)
	}
	sortByName(files)

	return s.readAll(ctx, files)
}

// ImportFiles returns a track for every supported path in the given order.
func (s *LibraryService) ImportFiles(filePaths []string) ([]domain.MusicTrack, error) {
	ctx, done, err := s.beginScan(context.Background())
	if err != nil {
		return nil, err
	}
	defer done()

	var from string
	if len(filePaths) > 0 {
		from = filepath.Dir(filePaths[0])
	}
	s.bus.Publish(domain.NewScanStartedEvent(from))

	files := slices.DeleteFunc(slices.Clone(filePaths), func(p string) bool {
		return !s.IsFormatSupported(p)
	})

	return s.readAll(ctx, files)
}

// beginScan marks a scan as running and returns its cancellable context.
func (s *LibraryService) beginScan(parent context.Context) (context.Context, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scanning {
		return nil, nil, domain.ErrScanInProgress
	}

	ctx, cancel := context.WithCancel(parent)
	s.scanning = true
	s.cancelScan = cancel

	return ctx, func() {
		cancel()
		s.mu.Lock()
		s.scanning = false
		s.cancelScan = nil
		s.mu.Unlock()
	}, nil
}

// readAll reads metadata with a bounded worker pool, keeping the order of files.
func (s *LibraryService) readAll(ctx context.Context, files []string) ([]domain.MusicTrack, error) {
	results := make([]*domain.MusicTrack, len(files))
	var scanned atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(readWorkers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			track, err := s.reader.Read(path)
			scanned.Add(1)
			if err != nil {
				s.logger.Warn("skipping unreadable file", slog.String("file_path", path), slog.Any("error", err))
				return nil
			}
			results[i] = &track
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.scanFailed(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, s.scanFailed(err)
	}

	tracks := make([]domain.MusicTrack, 0, len(files))
	for _, track := range results {
		if track != nil {
			tracks = append(tracks, *track)
		}
	}

	progress := domain.ScanProgress{FilesScanned: int(scanned.Load()), TotalFiles: len(files)}
	if len(files) > 0 {
		progress.CurrentFile = files[len(files)-1]
	}
	s.logger.Info("import finished", slog.Int("files", len(files)), slog.Int("tracks", len(tracks)))
	s.bus.Publish(domain.NewScanCompletedEvent(tracks, progress))

	return tracks, nil
}

// scanFailed turns a cancellation into ErrScanCancelled and announces it.
func (s *LibraryService) scanFailed(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.bus.Publish(domain.NewScanCancelledEvent(err.Error()))
		return domain.ErrScanCancelled
	}
	return err
}

// CancelScan cancels the currently running import.
func (s *LibraryService) CancelScan() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.scanning {
		return domain.NewServiceError("LibraryService", "CancelScan", "no scan in progress", nil)
	}

	s.cancelScan()

	return nil
}

// IsScanning returns true if an import is running.
func (s *LibraryService) IsScanning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanning
}

// IsFormatSupported checks if a file has a decodable extension.
func (s *LibraryService) IsFormatSupported(filePath string) bool {
	return domain.IsSupportedFormat(filePath)
}

// GetSupportedFormats returns the supported extensions with their leading dot.
func (s *LibraryService) GetSupportedFormats() []string {
	formats := make([]string, len(domain.SupportedFormats))
	for i, f := range domain.SupportedFormats {
		formats[i] = "." + f
	}
	return formats
}

// collectAudioFiles recursively collects all supported files in a directory.
func (s *LibraryService) collectAudioFiles(ctx context.Context, folderPath string) ([]string, error) {
	if folderPath == "" {
		return nil, domain.ErrInvalidFilePath
	}

	var files []string
	err := filepath.WalkDir(folderPath, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == folderPath {
				return err
			}
			// Skip entries we can't access
			s.logger.Debug("skipping entry", slog.String("path", path), slog.Any("error", err))
			return nil
		}

		if !d.IsDir() && s.IsFormatSupported(path) {
			files = append(files, path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrFileNotFound
	}

	return files, err
}

// sortByName orders paths by file name with numbers compared by value ("2" before "10"),
// ignoring case. Equal names fall back to the full path.
func sortByName(paths []string) {
	c := collate.New(language.Und, collate.Numeric, collate.IgnoreCase)
	slices.SortStableFunc(paths, func(a, b string) int {
		if n := c.CompareString(filepath.Base(a), filepath.Base(b)); n != 0 {
			return n
		}
		return cmp.Compare(a, b)
	})
}

// Shutdown cancels a running import.
func (s *LibraryService) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scanning && s.cancelScan != nil {
		s.cancelScan()
	}

	return nil
}

// Verify that LibraryService implements the expected interface patterns
var _ interface {
	ImportFolder(context.Context, string) ([]domain.MusicTrack, error)
	ImportFiles([]string) ([]domain.MusicTrack, error)
	CancelScan() error
	IsScanning() bool
	IsFormatSupported(string) bool
	GetSupportedFormats() []string
	Shutdown() error
} = (*LibraryService)(nil)
