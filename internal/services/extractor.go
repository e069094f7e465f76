package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ErrUnsupportedFormat is returned when no extractor handles a file.
var ErrUnsupportedFormat = errors.New("unsupported file format")

const (
	MimePDF   = "application/pdf"
	MimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePNG   = "image/png"
	MimeJPEG  = "image/jpeg"
	MimePlain = "text/plain"
)

// AllowedResumeExtensions are the upload extensions accepted for résumés.
var AllowedResumeExtensions = []string{".pdf", ".docx", ".jpg", ".jpeg", ".png", ".txt"}

var extensionTypes = map[string]string{
	".pdf":  MimePDF,
	".docx": MimeDOCX,
	".png":  MimePNG,
	".jpg":  MimeJPEG,
	".jpeg": MimeJPEG,
	".txt":  MimePlain,
}

type TextExtractor interface {
	Supports(contentType string) bool
	Extract(ctx context.Context, path string, contentType string) (string, error)
}

// ExtractorRegistry dispatches a file to the first extractor supporting its
// content type.
type ExtractorRegistry struct {
	extractors []TextExtractor
}

func NewExtractorRegistry(extractors ...TextExtractor) *ExtractorRegistry {
	return &ExtractorRegistry{extractors: extractors}
}

// NewDefaultExtractorRegistry wires every built-in extractor. Images are only
// supported when gemini is non-nil.
func NewDefaultExtractorRegistry(gemini GeminiService) *ExtractorRegistry {
	extractors := []TextExtractor{
		NewPDFExtractor(),
		NewDocxExtractor(),
		NewPlainTextExtractor(),
	}
	if gemini != nil {
		extractors = append(extractors, NewImageExtractor(gemini))
	}
	return NewExtractorRegistry(extractors...)
}

// Supports reports whether any registered extractor handles contentType.
func (r *ExtractorRegistry) Supports(contentType string) bool {
	for _, e := range r.extractors {
		if e.Supports(contentType) {
			return true
		}
	}
	return false
}

// Extract resolves the content type of path and returns its text.
func (r *ExtractorRegistry) Extract(ctx context.Context, path string, declared string) (string, error) {
	contentType, err := r.resolve(path, declared)
	if err != nil {
		return "", err
	}

	for _, e := range r.extractors {
		if e.Supports(contentType) {
			return e.Extract(ctx, path, contentType)
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
}

// resolve falls back to the file's own bytes when the detected type has no
// extractor, so an unusual declared alias does not reject a readable file.
func (r *ExtractorRegistry) resolve(path, declared string) (string, error) {
	contentType, err := DetectContentType(path, declared)
	if err != nil {
		return "", err
	}
	if r.Supports(contentType) {
		return contentType, nil
	}

	if sniffed, err := sniffContentType(path); err == nil && r.Supports(sniffed) {
		return sniffed, nil
	}
	return contentType, nil
}

// DetectContentType prefers the type of a known file extension, then the
// declared type, then sniffs the first bytes of the file.
func DetectContentType(path string, declared string) (string, error) {
	if ct, ok := ContentTypeForExtension(filepath.Ext(path)); ok {
		return ct, nil
	}

	if declared != "" && declared != "application/octet-stream" {
		if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
			return mediaType, nil
		}
	}

	return sniffContentType(path)
}

// ContentTypeForExtension maps an allowed résumé extension to its canonical
// content type.
func ContentTypeForExtension(ext string) (string, bool) {
	ct, ok := extensionTypes[strings.ToLower(ext)]
	return ct, ok
}

func sniffContentType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		return "", fmt.Errorf("failed to read file header: %w", err)
	}

	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(head[:n]))
	if err != nil {
		return "", fmt.Errorf("%w: undetectable content type", ErrUnsupportedFormat)
	}
	return mediaType, nil
}

type pdfExtractor struct{}

func NewPDFExtractor() TextExtractor {
	return &pdfExtractor{}
}

func (p *pdfExtractor) Supports(contentType string) bool {
	return contentType == MimePDF
}

func (p *pdfExtractor) Extract(ctx context.Context, path string, _ string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return nonEmpty(textBuilder.String(), "PDF")
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br/>|<w:tab/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

type docxExtractor struct{}

func NewDocxExtractor() TextExtractor {
	return &docxExtractor{}
}

func (d *docxExtractor) Supports(contentType string) bool {
	return contentType == MimeDOCX
}

func (d *docxExtractor) Extract(_ context.Context, path string, _ string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer r.Close()

	return nonEmpty(docxPlainText(r.Editable().GetContent()), "DOCX")
}

// docxPlainText turns the document.xml body into plain text.
func docxPlainText(content string) string {
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = xmlTag.ReplaceAllString(content, "")
	return html.UnescapeString(content)
}

type imageExtractor struct {
	gemini GeminiService
}

func NewImageExtractor(gemini GeminiService) TextExtractor {
	return &imageExtractor{gemini: gemini}
}

func (i *imageExtractor) Supports(contentType string) bool {
	return contentType == MimePNG || contentType == MimeJPEG
}

func (i *imageExtractor) Extract(ctx context.Context, path string, contentType string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	text, err := i.gemini.GenerateFromMedia(ctx, BuildOCRPrompt(), data, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to read text from image: %w", err)
	}

	return nonEmpty(text, "image")
}

type plainTextExtractor struct{}

func NewPlainTextExtractor() TextExtractor {
	return &plainTextExtractor{}
}

func (p *plainTextExtractor) Supports(contentType string) bool {
	return contentType == MimePlain
}

func (p *plainTextExtractor) Extract(_ context.Context, path string, _ string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read text file: %w", err)
	}
	return nonEmpty(string(data), "text file")
}

func nonEmpty(text, kind string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content found in %s", kind)
	}
	return text, nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleanedLines := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
