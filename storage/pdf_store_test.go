package storage

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeFileHeader builds a real multipart.FileHeader by round-tripping a form
// through the http machinery, so Open() works like it does on a live upload.
func makeFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="pdf"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	_, fh, err := req.FormFile("pdf")
	require.NoError(t, err)
	return fh
}

func validPDFBytes() []byte {
	return []byte("%PDF-1.4\nsome content\n%%EOF")
}

func newTestStore(t *testing.T) *PDFStore {
	t.Helper()
	store, err := NewPDFStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSaveAcceptsValidPDF(t *testing.T) {
	store := newTestStore(t)

	path, err := store.Save(makeFileHeader(t, "book.pdf", "application/pdf", validPDFBytes()))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/pdfs/"))
	assert.True(t, strings.HasSuffix(path, ".pdf"))
	assert.True(t, store.Exists(path))

	// Stored content is the full upload, magic bytes included
	stored, err := os.ReadFile(filepath.Join(store.BasePath(), filepath.Base(path)))
	require.NoError(t, err)
	assert.Equal(t, validPDFBytes(), stored)
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	store := newTestStore(t)

	content := append([]byte("%PDF-"), bytes.Repeat([]byte("a"), MaxPDFSize)...)
	_, err := store.Save(makeFileHeader(t, "big.pdf", "application/pdf", content))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestSaveRejectsWrongMimeType(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(makeFileHeader(t, "book.pdf", "text/plain", validPDFBytes()))
	assert.ErrorIs(t, err, ErrInvalidMimeType)
}

func TestSaveRejectsWrongExtension(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(makeFileHeader(t, "book.txt", "application/pdf", validPDFBytes()))
	assert.ErrorIs(t, err, ErrInvalidExtension)
}

// A renamed executable with a spoofed content type still fails on the
// signature check.
func TestSaveRejectsSpoofedPDF(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(makeFileHeader(t, "fake.pdf", "application/pdf", []byte("MZ\x90\x00not a pdf")))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	// Nothing is written on rejection
	entries, readErr := os.ReadDir(store.BasePath())
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestSaveRejectsTruncatedFile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(makeFileHeader(t, "tiny.pdf", "application/pdf", []byte("%P")))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Save(makeFileHeader(t, "book.pdf", "application/pdf", validPDFBytes()))
	require.NoError(t, err)
	second, err := store.Save(makeFileHeader(t, "book.pdf", "application/pdf", validPDFBytes()))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, store.Exists(first))
	assert.True(t, store.Exists(second))
}

func TestDeleteIsBestEffort(t *testing.T) {
	store := newTestStore(t)

	path, err := store.Save(makeFileHeader(t, "book.pdf", "application/pdf", validPDFBytes()))
	require.NoError(t, err)

	store.Delete(path)
	assert.False(t, store.Exists(path))

	// Deleting again, or deleting nothing, does not panic
	store.Delete(path)
	store.Delete("")
}

func TestNewPDFStoreRequiresPath(t *testing.T) {
	_, err := NewPDFStore("  ")
	assert.Error(t, err)
}
