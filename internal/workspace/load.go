package workspace

import (
	"context"
	"os"
	"runtime"
	"sync"

	"github.com/viant/afs"
	"golang.org/x/sync/errgroup"

	"github.com/Lightwood13/msc/internal/debug"
	"github.com/Lightwood13/msc/internal/errors"
	"github.com/Lightwood13/msc/internal/security"
)

// Loader reads declaration files through an afs storage service.
type Loader struct {
	fs          afs.Service
	maxFileSize int64
	limit       int
	content     *security.ContentValidator
}

// NewLoader creates a loader bounded by opts.MaxGoroutines concurrent reads.
func NewLoader(opts Options) *Loader {
	limit := opts.MaxGoroutines
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	return &Loader{
		fs:          afs.New(),
		maxFileSize: opts.MaxFileSize,
		limit:       limit,
		content:     security.NewContentValidator(),
	}
}

// ReadFile returns the content of one file, enforcing the size limit and
// rejecting binary content.
func (l *Loader) ReadFile(ctx context.Context, path string) (string, error) {
	if l.maxFileSize > 0 {
		if info, err := os.Stat(path); err == nil && info.Size() > l.maxFileSize {
			return "", errors.NewFileTooLargeError(path, info.Size(), l.maxFileSize)
		}
	}
	data, err := l.fs.DownloadWithURL(ctx, path)
	if err != nil {
		if _, statErr := os.Stat(path); statErr != nil {
			return "", errors.NewFileError("read", path, statErr)
		}
		return "", errors.NewFileError("read", path, err)
	}
	if err := l.content.Validate(data); err != nil {
		return "", errors.NewFileError("validate", path, err)
	}
	return string(data), nil
}

// Load reads files concurrently and returns their contents keyed by
// absolute path. Unreadable files are left out and reported together in
// the returned error; only context cancellation aborts the load.
func (l *Loader) Load(ctx context.Context, files []File) (map[string]string, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)

	var (
		mu       sync.Mutex
		contents = make(map[string]string, len(files))
		failures []error
	)
	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := l.ReadFile(ctx, f.Path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				debug.LogWorkspace("%v", err)
				failures = append(failures, err)
				return nil
			}
			contents[f.Path] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return contents, errors.NewMultiError(failures).ErrOrNil()
}

// LoadWorkspace discovers and reads every declaration file of opts.
func LoadWorkspace(ctx context.Context, opts Options) (map[string]string, error) {
	files, err := Discover(opts)
	if err != nil {
		return nil, err
	}
	return NewLoader(opts).Load(ctx, files)
}
