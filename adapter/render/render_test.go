package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aegroto/remotia-go/adapter/codec"
	"github.com/aegroto/remotia-go/frame"
)

func TestPNGDumperWritesSequentialFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	dumper, err := NewPNGDumper(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := frame.New()
	rec.Set(codec.WidthKey, 2)
	rec.Set(codec.HeightKey, 2)
	buf := frame.NewBuffer(2 * 2 * 4)
	rec.Push(codec.RGBAKey, buf)

	for i := 0; i < 2; i++ {
		rec.Pull(codec.RGBAKey)
		rec.Push(codec.RGBAKey, buf)
		out, keep := dumper.Process(context.Background(), rec)
		if !keep || out.Err() != nil {
			t.Fatalf("unexpected error on frame %d: %v", i, out.Err())
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error reading output dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 PNG files, got %d", len(entries))
	}
	if entries[0].Name() != "frame-000000.png" {
		t.Fatalf("unexpected first filename: %q", entries[0].Name())
	}
}

func TestPNGDumperReportsMissingBuffer(t *testing.T) {
	dir := t.TempDir()
	dumper, _ := NewPNGDumper(dir)

	rec := frame.New()
	rec.Set(codec.WidthKey, 2)
	rec.Set(codec.HeightKey, 2)

	out, _ := dumper.Process(context.Background(), rec)
	if out.Err() != frame.InvalidPacket {
		t.Fatalf("expected InvalidPacket, got %v", out.Err())
	}
}
