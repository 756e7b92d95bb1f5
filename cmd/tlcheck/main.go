package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/funvibe/tlcheck/internal/analyzer"
	"github.com/funvibe/tlcheck/internal/config"
	"github.com/funvibe/tlcheck/internal/modules"
	"github.com/funvibe/tlcheck/internal/pipeline"
	"github.com/funvibe/tlcheck/internal/report"
	"github.com/funvibe/tlcheck/internal/symindex"
)

const usage = `Usage: tlcheck [flags] dump.yaml|dir ...

Type-checks parser tree dumps. Directories are searched for .yaml and .yml
dumps. Exits 1 when any error is reported.

Flags:
`

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(2)
		}
	}()
	if os.Getenv("TLCHECK_TEST_MODE") == "1" {
		config.IsTestMode = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run is the whole command; it returns the exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("tlcheck", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}
	configPath := flags.String("config", "", "YAML or TOML options file")
	noColor := flags.Bool("no-color", false, "disable coloured output")
	index := flags.Bool("index", false, "record top-level symbols in an in-memory SQLite index")
	indexFile := flags.String("index-file", "", "write the symbol index to this SQLite file (implies -index)")
	jobs := flags.Int("jobs", 0, "modules checked at once (0 = GOMAXPROCS)")
	verbose := flags.Bool("v", false, "log scheduling progress to stderr")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	printer := report.New(stdout)
	if *noColor {
		printer.Color = false
	}

	opts := config.DefaultOptions()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			printer.Failure("config", err)
			return 2
		}
		opts = *loaded
	}

	paths, err := expandPaths(flags.Args())
	if err != nil {
		printer.Failure("arguments", err)
		return 2
	}
	loader := modules.NewLoader()
	if err := loader.LoadAll(paths); err != nil {
		printer.Failure("load", err)
		return 2
	}

	var ix *symindex.Index
	if *index || *indexFile != "" {
		ix, err = symindex.Open(*indexFile)
		if err != nil {
			printer.Failure("index", err)
			return 2
		}
		defer ix.Close()
	}

	c := &checker{
		loader:   loader,
		graph:    loader.Graph(),
		registry: modules.NewRegistry(),
		opts:     opts,
		index:    ix,
		results:  make(map[string]*pipeline.PipelineContext),
	}
	if err := modules.PublishVirtualModules(c.registry); err != nil {
		printer.Failure("builtins", err)
		return 2
	}
	sched := &modules.Scheduler{Graph: c.graph, Registry: c.registry, Limit: *jobs}
	if *verbose {
		sched.Logger = log.New(stderr, "tlcheck: ", 0)
	}

	start := time.Now()
	runErr := sched.Run(ctx, c.check)

	summary := report.Summary{Modules: len(loader.Modules())}
	for _, mod := range loader.Modules() {
		res, ok := c.result(mod.ID)
		if !ok {
			continue
		}
		printer.Diagnostics(res.Errors)
		summary.Add(res.Errors)
		if res.Failure != nil {
			printer.Failure(mod.ID, res.Failure)
			summary.Failures++
		}
	}
	if runErr != nil && !errors.Is(runErr, errModuleFailed) {
		printer.Failure("run", runErr)
		summary.Failures++
	}
	summary.Elapsed = time.Since(start)
	printer.Summary(summary)

	if ix != nil {
		n := 0
		for _, mod := range loader.Modules() {
			entries, err := ix.Module(context.Background(), mod.ID)
			if err != nil {
				printer.Failure("index", err)
				break
			}
			n += len(entries)
		}
		fmt.Fprintf(stdout, "indexed %d symbols\n", n)
	}

	if summary.Failed() {
		return 1
	}
	return 0
}

// errModuleFailed marks a run stopped by a failure already recorded on the
// module's pipeline context.
var errModuleFailed = errors.New("module check failed")

type checker struct {
	loader   *modules.Loader
	graph    *modules.Graph
	registry *modules.Registry
	opts     config.Options
	index    *symindex.Index

	mu      sync.Mutex
	results map[string]*pipeline.PipelineContext
}

func (c *checker) check(ctx context.Context, id string) error {
	mod, ok := c.loader.GetModule(id)
	if !ok {
		return fmt.Errorf("module %s was not loaded", id)
	}
	source := modules.ModuleSource{Registry: c.registry, Graph: c.graph, Module: id}
	processing := pipeline.New(
		pipeline.DecodeProcessor{},
		&analyzer.CheckProcessor{Source: source},
		pipeline.PublishProcessor{},
		&symindex.IndexProcessor{Index: c.index},
	)

	pc := pipeline.NewContext(ctx, mod.Path, c.opts, c.registry)
	pc.ModuleID = id
	pc.Program = mod.Program
	out := processing.Run(pc)

	c.mu.Lock()
	c.results[id] = out
	c.mu.Unlock()

	if out.Cancelled() {
		return ctx.Err()
	}
	if out.Failure != nil {
		return errModuleFailed
	}
	mod.Exports = out.Exports
	return nil
}

func (c *checker) result(id string) (*pipeline.PipelineContext, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.results[id]
	return res, ok
}

// expandPaths replaces directories by the tree dumps below them.
func expandPaths(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isDumpFile(path) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func isDumpFile(path string) bool {
	for _, ext := range config.DumpFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
