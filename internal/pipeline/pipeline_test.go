package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/funvibe/tlcheck/internal/config"
	"github.com/funvibe/tlcheck/internal/modules"
)

type recordStage struct {
	name string
	seen *[]string
}

func (r recordStage) Process(ctx *PipelineContext) *PipelineContext {
	*r.seen = append(*r.seen, r.name)
	return ctx
}

func TestRunVisitsEveryStage(t *testing.T) {
	var seen []string
	p := New(recordStage{"a", &seen}, recordStage{"b", &seen})
	p.Run(NewContext(context.Background(), "x.yaml", config.DefaultOptions(), nil))
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Errorf("stages ran as %v", seen)
	}
}

func TestDecodeProcessor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shapes.yaml")
	if err := os.WriteFile(path, []byte("statements:\n  - kind: break\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := DecodeProcessor{}.Process(NewContext(context.Background(), path, config.DefaultOptions(), nil))
	if ctx.Failure != nil {
		t.Fatalf("Failure: %v", ctx.Failure)
	}
	if ctx.ModuleID != "shapes" || ctx.Program.Module != "shapes" {
		t.Errorf("module id = %q / %q, want shapes", ctx.ModuleID, ctx.Program.Module)
	}

	missing := DecodeProcessor{}.Process(NewContext(context.Background(), filepath.Join(dir, "nope.yaml"), config.DefaultOptions(), nil))
	if missing.Failure == nil {
		t.Error("expected a failure for a missing dump")
	}
}

func TestPublishProcessor(t *testing.T) {
	reg := modules.NewRegistry()
	ctx := NewContext(context.Background(), "m.yaml", config.DefaultOptions(), reg)
	ctx.Exports = modules.NewExportTable("m")
	PublishProcessor{}.Process(ctx)
	if ctx.CheckID == "" || !reg.Published("m") {
		t.Fatalf("not published: %+v", ctx)
	}

	again := NewContext(context.Background(), "m.yaml", config.DefaultOptions(), reg)
	again.Exports = modules.NewExportTable("m")
	PublishProcessor{}.Process(again)
	if !errors.Is(again.Failure, modules.ErrAlreadyPublished) {
		t.Errorf("second publish: %v", again.Failure)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	skipped := NewContext(cancelled, "n.yaml", config.DefaultOptions(), reg)
	skipped.Exports = modules.NewExportTable("n")
	PublishProcessor{}.Process(skipped)
	if reg.Published("n") {
		t.Error("a cancelled run must not publish")
	}
}
