package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"billscan/internal/config"
	"billscan/internal/domain"
)

// SourceService resolves an uploaded stream, a URL, or a base64 payload into
// a request-scoped local file with a best-guess file type. The caller owns
// Cleanup of the returned document.
type SourceService interface {
	FromUpload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*domain.LocalDocument, error)
	FromURL(ctx context.Context, rawURL string) (*domain.LocalDocument, error)
	FromBase64(ctx context.Context, data string) (*domain.LocalDocument, error)
}

type sourceService struct {
	cfg     *config.FetchConfig
	client  *http.Client
	tempDir string
}

// NewSourceService creates a new SourceService implementation.
func NewSourceService(cfg *config.FetchConfig) SourceService {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &sourceService{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		tempDir: os.TempDir(),
	}
}

func (s *sourceService) FromUpload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*domain.LocalDocument, error) {
	maxBytes := s.cfg.MaxFileSizeBytes()
	if header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	data, err := readCapped(file, maxBytes)
	if err != nil {
		return nil, err
	}

	fileType, err := detectFileType(filepath.Ext(header.Filename), header.Header.Get("Content-Type"), data)
	if err != nil {
		return nil, err
	}

	log.Printf("sourceService.FromUpload: received %s (%s, %d bytes)", header.Filename, fileType, len(data))
	return s.writeTemp(data, fileType)
}

func (s *sourceService) FromURL(ctx context.Context, rawURL string) (*domain.LocalDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrDownloadFailed, resp.StatusCode)
	}

	data, err := readCapped(resp.Body, s.cfg.MaxFileSizeBytes())
	if err != nil {
		return nil, err
	}

	fileType, err := detectFileType("", resp.Header.Get("Content-Type"), data)
	if err != nil {
		return nil, err
	}

	log.Printf("sourceService.FromURL: downloaded %s (%s, %d bytes)", rawURL, fileType, len(data))
	return s.writeTemp(data, fileType)
}

func (s *sourceService) FromBase64(ctx context.Context, encoded string) (*domain.LocalDocument, error) {
	// Tolerate a data-URI wrapper around the payload
	if idx := strings.Index(encoded, ";base64,"); idx != -1 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBase64, err)
	}
	if int64(len(data)) > s.cfg.MaxFileSizeBytes() {
		return nil, domain.ErrFileTooLarge
	}

	fileType, err := detectFileType("", "", data)
	if err != nil {
		return nil, err
	}

	log.Printf("sourceService.FromBase64: decoded %d bytes (%s)", len(data), fileType)
	return s.writeTemp(data, fileType)
}

func (s *sourceService) writeTemp(data []byte, fileType domain.FileType) (*domain.LocalDocument, error) {
	path := filepath.Join(s.tempDir, fmt.Sprintf("bill_doc_%s.%s", uuid.NewString(), fileType))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("writing temp document: %w", err)
	}
	return &domain.LocalDocument{Path: path, FileType: fileType}, nil
}

// readCapped reads r fully, failing with ErrFileTooLarge once maxBytes is exceeded.
func readCapped(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	return data, nil
}

// detectFileType resolves the document type from, in order: the file
// extension, the declared Content-Type, and finally magic-byte sniffing.
func detectFileType(ext, contentType string, data []byte) (domain.FileType, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ft, ok := domain.AllowedExtensions[ext]; ok {
		return ft, nil
	}

	if contentType != "" {
		mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
		if ft, ok := domain.AllowedContentTypes[mediaType]; ok {
			return ft, nil
		}
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if ft, ok := domain.AllowedContentTypes[http.DetectContentType(head)]; ok {
		return ft, nil
	}

	return "", domain.ErrUnsupportedFileType
}
