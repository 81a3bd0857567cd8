package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/medreview/slide-compliance/internal/core/domain"
)

func slideXML(runs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree>`)
	for _, r := range runs {
		b.WriteString(`<p:sp><p:txBody><a:p><a:r><a:t>`)
		b.WriteString(r)
		b.WriteString(`</a:t></a:r></a:p></p:txBody></p:sp>`)
	}
	b.WriteString(`</p:spTree></p:cSld></p:sld>`)
	return b.String()
}

func buildPackage(t *testing.T, parts map[string]string) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range parts {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestExtractOrdersAndJoinsRuns(t *testing.T) {
	pkg := buildPackage(t, map[string]string{
		"ppt/slides/slide2.xml":   slideXML("二枚目"),
		"ppt/slides/slide1.xml":   slideXML("製品A", "概要"),
		"ppt/presentation.xml":    "<p:presentation/>",
		"docProps/core.xml":       "<cp:coreProperties/>",
		"ppt/slides/_rels/ignore": "not a slide",
	})

	slides, err := NewExtractor().Extract(context.Background(), pkg)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []domain.SlideText{
		{Index: 1, Text: "製品A 概要"},
		{Index: 2, Text: "二枚目"},
	}
	if len(slides) != len(want) {
		t.Fatalf("got %d slides, want %d", len(slides), len(want))
	}
	for i := range want {
		if slides[i] != want[i] {
			t.Fatalf("slide %d = %+v, want %+v", i, slides[i], want[i])
		}
	}
}

func TestExtractNumericPartOrder(t *testing.T) {
	// slide10 sorts after slide9, not after slide1
	parts := map[string]string{}
	for _, n := range []string{"1", "2", "9", "10", "11"} {
		parts["ppt/slides/slide"+n+".xml"] = slideXML("スライド" + n)
	}
	pkg := buildPackage(t, parts)

	slides, err := NewExtractor().Extract(context.Background(), pkg)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	wantTexts := []string{"スライド1", "スライド2", "スライド9", "スライド10", "スライド11"}
	for i, want := range wantTexts {
		if slides[i].Index != i+1 {
			t.Fatalf("slide %d has index %d", i, slides[i].Index)
		}
		if slides[i].Text != want {
			t.Fatalf("slide %d text = %q, want %q", i, slides[i].Text, want)
		}
	}
}

func TestExtractEmptySlideYieldsEmptyText(t *testing.T) {
	pkg := buildPackage(t, map[string]string{
		"ppt/slides/slide1.xml": slideXML("本文"),
		"ppt/slides/slide2.xml": slideXML(),
		"ppt/slides/slide3.xml": slideXML("末尾"),
	})

	slides, err := NewExtractor().Extract(context.Background(), pkg)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(slides) != 3 {
		t.Fatalf("got %d slides, want 3", len(slides))
	}
	if slides[1].Text != "" {
		t.Fatalf("empty slide text = %q, want empty", slides[1].Text)
	}
	if slides[2].Index != 3 {
		t.Fatalf("index sequence must stay contiguous, got %d", slides[2].Index)
	}
}

func TestExtractNotAZip(t *testing.T) {
	_, err := NewExtractor().Extract(context.Background(), strings.NewReader("plain text, not a zip"))
	if !domain.IsKind(err, domain.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}

func TestExtractNoSlideParts(t *testing.T) {
	pkg := buildPackage(t, map[string]string{
		"ppt/presentation.xml": "<p:presentation/>",
	})

	_, err := NewExtractor().Extract(context.Background(), pkg)
	if !domain.IsKind(err, domain.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}

func TestExtractBrokenSlideXMLFailsWhole(t *testing.T) {
	pkg := buildPackage(t, map[string]string{
		"ppt/slides/slide1.xml": slideXML("正常"),
		"ppt/slides/slide2.xml": "<p:sld><unclosed",
	})

	_, err := NewExtractor().Extract(context.Background(), pkg)
	if !domain.IsKind(err, domain.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}
