// Package pptx extracts per-slide plain text from a PPTX container.
package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/medreview/slide-compliance/internal/core/domain"
)

var slidePartPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract opens the container as a ZIP package and returns one SlideText
// per slide part, ordered by ascending slide index and renumbered 1..N so
// the sequence stays contiguous. Text-free slides yield empty strings, not
// absent entries. An unreadable package or a package without slide parts
// fails with ErrMalformedDocument; slides are never partially returned.
func (e *Extractor) Extract(_ context.Context, container io.Reader) ([]domain.SlideText, error) {
	data, err := io.ReadAll(container)
	if err != nil {
		return nil, fmt.Errorf("read container: %w", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domain.WrapError(domain.ErrMalformedDocument, "open slide package", err)
	}

	type slidePart struct {
		number int
		file   *zip.File
	}
	var parts []slidePart
	for _, f := range reader.File {
		m := slidePartPattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		parts = append(parts, slidePart{number: n, file: f})
	}
	if len(parts) == 0 {
		return nil, domain.WrapError(domain.ErrMalformedDocument, "open slide package",
			errors.New("package contains no slide parts"))
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].number < parts[j].number })

	slides := make([]domain.SlideText, len(parts))
	for i, part := range parts {
		text, err := extractRunText(part.file)
		if err != nil {
			return nil, domain.WrapError(domain.ErrMalformedDocument,
				fmt.Sprintf("parse slide part %s", part.file.Name), err)
		}
		slides[i] = domain.SlideText{Index: i + 1, Text: text}
	}
	return slides, nil
}

// extractRunText concatenates the content of every inline text run
// (<a:t>) in document order, joined by single spaces, trimmed.
func extractRunText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open slide part: %w", err)
	}
	defer rc.Close()

	var runs []string
	decoder := xml.NewDecoder(rc)
	inRun := false
	var run strings.Builder
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode slide xml: %w", err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun = true
				run.Reset()
			}
		case xml.CharData:
			if inRun {
				run.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "t" && inRun {
				runs = append(runs, run.String())
				inRun = false
			}
		}
	}
	return strings.TrimSpace(strings.Join(runs, " ")), nil
}
