package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/botadmin/internal/client/api"
	"github.com/dmitrijs2005/botadmin/internal/filex"
	"github.com/dmitrijs2005/botadmin/internal/logging"
)

const (
	DefaultUploadBatchSize = 10
	ChecksumHeader         = "x-file-checksum"
)

// AllowedExtensions are the document formats a data source accepts.
var AllowedExtensions = []string{".pdf", ".doc", ".docx", ".txt", ".md"}

var ErrNoValidFiles = errors.New("no files with an allowed extension")

// UploadResult pairs a local file with the document name the server stored
// it under.
type UploadResult struct {
	Path     string
	Stored   string
	Checksum string
	Size     int64
}

// UploadService sends documents to a data source.
type UploadService interface {
	// UploadDocuments uploads the files with an allowed extension; the other
	// paths are returned as rejected. The first failed upload aborts the
	// remaining batches.
	UploadDocuments(ctx context.Context, knowledgeBaseID, dataSourceID string, paths []string) (uploaded []UploadResult, rejected []string, err error)
}

type uploadService struct {
	client    APIClient
	batchSize int
	log       logging.Logger
}

func NewUploadService(client APIClient, batchSize int, log logging.Logger) UploadService {
	if batchSize <= 0 {
		batchSize = DefaultUploadBatchSize
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &uploadService{client: client, batchSize: batchSize, log: log}
}

// SplitByExtension separates paths with an allowed extension from the rest.
func SplitByExtension(paths []string) (valid, invalid []string) {
	for _, p := range paths {
		if slices.Contains(AllowedExtensions, strings.ToLower(filepath.Ext(p))) {
			valid = append(valid, p)
		} else {
			invalid = append(invalid, p)
		}
	}
	return valid, invalid
}

func (u *uploadService) UploadDocuments(ctx context.Context, kbID, dsID string, paths []string) ([]UploadResult, []string, error) {
	if kbID == "" || dsID == "" {
		return nil, nil, errors.New("knowledge base and data source ids are required")
	}

	valid, rejected := SplitByExtension(paths)
	if len(valid) == 0 {
		return nil, rejected, ErrNoValidFiles
	}

	var (
		mu      sync.Mutex
		results = make([]UploadResult, 0, len(valid))
	)

	// Batches go one after another; files inside a batch upload concurrently.
	for batch := range slices.Chunk(valid, u.batchSize) {
		g, gctx := errgroup.WithContext(ctx)
		for _, path := range batch {
			g.Go(func() error {
				res, err := u.uploadOne(gctx, kbID, dsID, path)
				if err != nil {
					return err
				}
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return results, rejected, err
		}
	}
	return results, rejected, nil
}

func (u *uploadService) uploadOne(ctx context.Context, kbID, dsID, path string) (UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return UploadResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return UploadResult{}, fmt.Errorf("stat %s: %w", path, err)
	}

	sum, err := filex.Checksum(f)
	if err != nil {
		return UploadResult{}, fmt.Errorf("checksum %s: %w", path, err)
	}

	name := filepath.Base(path)
	endpoint := "/datasource/upload/" + url.PathEscape(kbID) + "/" + url.PathEscape(dsID)
	params := url.Values{
		"filename":  {name},
		"file_size": {strconv.FormatInt(info.Size(), 10)},
	}

	u.log.Info(ctx, "uploading document", "file", name, "data_source", dsID, "size", info.Size())

	var stored string
	err = u.client.Patch(ctx, endpoint, f, &stored,
		api.WithParams(params),
		api.WithContentType("application/octet-stream"),
		api.WithHeader(ChecksumHeader, sum))
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload %s: %w", name, err)
	}

	return UploadResult{Path: path, Stored: stored, Checksum: sum, Size: info.Size()}, nil
}
