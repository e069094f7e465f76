package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="resumeFile"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["resumeFile"][0]
}

func TestStorageService_SaveFile_RecordsExtensionType(t *testing.T) {
	dir := t.TempDir()
	storage := NewStorageService(dir, AllowedResumeExtensions)

	tests := []struct {
		filename string
		declared string
		want     string
	}{
		{filename: "cv.pdf", declared: "text/plain", want: MimePDF},
		{filename: "cv.pdf", declared: "application/x-pdf", want: MimePDF},
		{filename: "photo.jpg", declared: "image/jpg", want: MimeJPEG},
		{filename: "cv.txt", declared: "application/octet-stream", want: MimePlain},
	}

	for _, tt := range tests {
		t.Run(tt.filename+" as "+tt.declared, func(t *testing.T) {
			stored, err := storage.SaveFile(context.Background(), uploadHeader(t, tt.filename, tt.declared, []byte("data")), "resume")
			require.NoError(t, err)
			assert.Equal(t, tt.want, stored.ContentType)
			assert.Equal(t, int64(4), stored.Size)
			assert.FileExists(t, stored.Path)
		})
	}
}

func TestStorageService_SaveFile_RejectsExtension(t *testing.T) {
	storage := NewStorageService(t.TempDir(), AllowedResumeExtensions)

	_, err := storage.SaveFile(context.Background(), uploadHeader(t, "cv.exe", "application/pdf", []byte("MZ")), "resume")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestWriteUpload_RemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.pdf")
	src := io.MultiReader(strings.NewReader("%PDF-1.4 partial"), iotest.ErrReader(errors.New("connection reset")))

	_, err := writeUpload(path, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteUpload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")

	n, err := writeUpload(path, strings.NewReader("Jane Doe"))
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", string(data))
}
