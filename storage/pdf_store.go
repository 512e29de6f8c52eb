package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxPDFSize = 10 * 1024 * 1024

// pdfMagic is the signature every PDF stream starts with ("%PDF").
var pdfMagic = []byte{0x25, 0x50, 0x44, 0x46}

var (
	ErrFileTooLarge     = errors.New("file size cannot exceed 10MB")
	ErrInvalidMimeType  = errors.New("only PDF files are allowed")
	ErrInvalidExtension = errors.New("invalid file extension")
	ErrInvalidSignature = errors.New("invalid PDF file format")
)

// PDFStore validates uploaded book files and keeps them on local disk under
// randomly generated names, served back under /pdfs.
type PDFStore struct {
	basePath string
}

func NewPDFStore(basePath string) (*PDFStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &PDFStore{basePath: basePath}, nil
}

// Save rejects anything that is not plausibly a PDF (size, declared MIME
// type, extension, magic bytes) and stores the rest under a uuid filename.
// Returns the public path recorded on the item.
func (s *PDFStore) Save(file *multipart.FileHeader) (string, error) {
	if file.Size > MaxPDFSize {
		return "", ErrFileTooLarge
	}

	if file.Header.Get("Content-Type") != "application/pdf" {
		return "", ErrInvalidMimeType
	}

	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		return "", ErrInvalidExtension
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	header := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(src, header); err != nil {
		return "", ErrInvalidSignature
	}
	if !bytes.Equal(header, pdfMagic) {
		return "", ErrInvalidSignature
	}

	fileName := uuid.NewString() + ".pdf"
	target := filepath.Join(s.basePath, fileName)

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	if _, err := out.Write(header); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return "/pdfs/" + fileName, nil
}

// Delete removes a previously stored file. Best effort: a failure is logged
// and swallowed, the old file may be orphaned.
func (s *PDFStore) Delete(pdfPath string) {
	if pdfPath == "" {
		return
	}

	fullPath := filepath.Join(s.basePath, filepath.Base(pdfPath))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to delete pdf %s: %v", fullPath, err)
	}
}

// Exists reports whether the stored file is still on disk.
func (s *PDFStore) Exists(pdfPath string) bool {
	if pdfPath == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(s.basePath, filepath.Base(pdfPath)))
	return err == nil
}

// BasePath is the directory the router serves as /pdfs.
func (s *PDFStore) BasePath() string {
	return s.basePath
}
