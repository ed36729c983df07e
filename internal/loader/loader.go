package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-formkit/pkg/schema"
)

// maxDocumentBytes bounds remote and local reads.
const maxDocumentBytes = 8 << 20

var errTooLarge = fmt.Errorf("loader: document exceeds %d bytes", maxDocumentBytes)

// Loader implements schema.Loader over files, an fs.FS and HTTP.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

var _ schema.Loader = (*Loader)(nil)

// New builds a Loader from resolved options. A nil logger discards output.
func New(options schema.LoaderOptions, logger *slog.Logger) *Loader {
	timeout := options.RequestTimeout

	var client *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		client = &clone
	case options.AllowHTTPFallback:
		client = &http.Client{Timeout: timeout}
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Loader{
		fs:      options.FileSystem,
		http:    client,
		timeout: timeout,
		logger:  logger,
	}
}

// Load reads src and wraps the payload in a schema.Document.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("loader: source is nil")
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case schema.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case schema.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case schema.SourceKindURL:
		if l.http == nil {
			return schema.Document{}, errors.New("loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = fmt.Errorf("loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return schema.Document{}, fmt.Errorf("loader: %s: %w", src.Location(), err)
	}

	l.logger.Debug("document loaded", "kind", src.Kind(), "location", src.Location(), "bytes", len(data))
	return schema.NewDocument(src, data)
}

func readBounded(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDocumentBytes {
		return nil, errTooLarge
	}
	return data, nil
}
