package report

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"detectdemo/internal/counts"
)

func writeTestImage(t *testing.T, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 80, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	defer f.Close()
	switch filepath.Ext(name) {
	case ".png":
		err = png.Encode(f, img)
	default:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		t.Fatalf("encode image: %v", err)
	}
	return path
}

func newTestBuilder() *Builder {
	b := NewBuilder("Detection Report")
	b.Compress = false
	b.Now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return b
}

func TestBuild(t *testing.T) {
	for _, name := range []string{"frame.png", "frame.jpg"} {
		t.Run(name, func(t *testing.T) {
			path := writeTestImage(t, name)
			totals := counts.Extract("3 tomato 1 leaf")

			data, err := newTestBuilder().Build(path, totals, counts.Percentages(totals))
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if !bytes.HasPrefix(data, []byte("%PDF-")) {
				t.Fatalf("missing pdf header: %q", data[:min(len(data), 16)])
			}
			if !bytes.Contains(data, []byte("%%EOF")) {
				t.Fatalf("missing pdf trailer")
			}
			for _, needle := range []string{
				"Detection Report",
				"Detections by Class:",
				"tomato: 3 detections - 75.00%",
				"leaf: 1 detections - 25.00%",
			} {
				if !bytes.Contains(data, []byte(needle)) {
					t.Fatalf("pdf missing %q", needle)
				}
			}
		})
	}
}

func TestBuildDeterministic(t *testing.T) {
	path := writeTestImage(t, "frame.png")
	totals := counts.Extract("2 tomato")
	b := newTestBuilder()

	first, err := b.Build(path, totals, counts.Percentages(totals))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	second, err := b.Build(path, totals, counts.Percentages(totals))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("same input produced different documents")
	}
}

func TestBuildMissingImage(t *testing.T) {
	totals := counts.Extract("1 tomato")
	data, err := newTestBuilder().Build(filepath.Join(t.TempDir(), "absent.png"), totals, counts.Percentages(totals))
	var readErr *ImageReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected ImageReadError, got %v", err)
	}
	if data != nil {
		t.Fatalf("document produced on failure")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped ErrNotExist, got %v", readErr.Err)
	}
}

func TestBuildVideoPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("\x00\x00\x00\x18ftypmp42"), 0644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	totals := counts.Extract("4 leaf")
	data, err := newTestBuilder().Build(path, totals, counts.Percentages(totals))
	var readErr *ImageReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected ImageReadError, got %v", err)
	}
	if readErr.Path != path {
		t.Fatalf("error path = %q", readErr.Path)
	}
	if data != nil {
		t.Fatalf("document produced on failure")
	}
}

func TestReportLinesZeroTotals(t *testing.T) {
	totals := counts.Extract("0 tomato")
	lines := reportLines(totals, counts.Percentages(totals))
	if len(lines) != 1 || lines[0] != "tomato: 0 detections - 0.00%" {
		t.Fatalf("lines = %q", lines)
	}
}

func TestPageLayout(t *testing.T) {
	l := newPageLayout()
	if l.ImageX != 146 {
		t.Fatalf("image not centered: x = %v", l.ImageX)
	}
	if l.ImageY <= l.TitleY+titleHeight {
		t.Fatalf("image overlaps title")
	}
	if l.HeaderY != l.ImageY+imageSize+lineHeight {
		t.Fatalf("header y = %v", l.HeaderY)
	}
	if l.RowY(1)-l.RowY(0) != lineHeight {
		t.Fatalf("row spacing = %v", l.RowY(1)-l.RowY(0))
	}
}

func TestBuildManyLabelsStayOnPage(t *testing.T) {
	path := writeTestImage(t, "frame.png")
	var summary []string
	for i := 0; i < 30; i++ {
		summary = append(summary, fmt.Sprintf("1 class%02d", i))
	}
	totals := counts.Extract(strings.Join(summary, ", "))
	if totals.Len() != 30 {
		t.Fatalf("labels = %d", totals.Len())
	}

	data, err := newTestBuilder().Build(path, totals, counts.Percentages(totals))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, needle := range []string{"class00: ", "class14: ", "... and 15 more classes"} {
		if !bytes.Contains(data, []byte(needle)) {
			t.Fatalf("pdf missing %q", needle)
		}
	}
	for _, needle := range []string{"class15: ", "class29: "} {
		if bytes.Contains(data, []byte(needle)) {
			t.Fatalf("pdf contains off-page row %q", needle)
		}
	}
}

func TestFitLines(t *testing.T) {
	lines := []string{"a", "b", "c", "d"}
	if got := fitLines(lines, 4); len(got) != 4 {
		t.Fatalf("lines that fit were changed: %q", got)
	}
	got := fitLines(lines, 3)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "... and 2 more classes" {
		t.Fatalf("fit = %q", got)
	}
	if lines[2] != "c" {
		t.Fatalf("input modified")
	}

	l := newPageLayout()
	if l.MaxRows() != 16 {
		t.Fatalf("max rows = %d", l.MaxRows())
	}
	if bottom := l.RowY(l.MaxRows()-1) + lineHeight; bottom > pageHeight-bottomMargin {
		t.Fatalf("last row ends at %v", bottom)
	}
}
