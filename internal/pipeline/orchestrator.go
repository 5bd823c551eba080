package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ingo-eichhorst/modguard/internal/checks"
	"github.com/ingo-eichhorst/modguard/internal/discovery"
	"github.com/ingo-eichhorst/modguard/internal/interfaces"
	"github.com/ingo-eichhorst/modguard/internal/modtree"
	"github.com/ingo-eichhorst/modguard/internal/pyparse"
	"github.com/ingo-eichhorst/modguard/pkg/types"
)

// ErrInterrupted is returned by Check when cancellation was observed at
// one of its checkpoints (before tree build, top of every worker
// iteration, before each merge step).
var ErrInterrupted = errors.New("check interrupted")

// Options toggles which checkers run and supplies the external-
// dependency mapping.
type Options struct {
	EnableDependencies bool
	EnableExternal     bool
	EnableInterfaces   bool

	ModuleDistributions map[string][]string
	ExcludedExternal    map[string]bool
	RenameExternal      map[string]string

	ExtraExcludes []string
}

// DefaultOptions enables every checker with no extra external-module
// configuration.
func DefaultOptions() Options {
	return Options{EnableDependencies: true, EnableExternal: true, EnableInterfaces: true}
}

// Result is the aggregated outcome of a full Check invocation.
type Result struct {
	Diagnostics []types.Diagnostic
	Warnings    []types.Diagnostic
}

// Orchestrator owns every piece of shared immutable state built once
// before fan-out and exposes the single Check entry point.
type Orchestrator struct {
	projectRoot string
	cfg         *types.ProjectConfig
	opts        Options

	interrupted atomic.Bool
}

// New builds an Orchestrator for one project.
func New(projectRoot string, cfg *types.ProjectConfig, opts Options) *Orchestrator {
	return &Orchestrator{projectRoot: projectRoot, cfg: cfg, opts: opts}
}

// Interrupt sets the shared cancellation flag; every worker still
// running returns empty diagnostics at its next checkpoint and Check
// returns ErrInterrupted.
func (o *Orchestrator) Interrupt() {
	o.interrupted.Store(true)
}

// Check walks the project, builds the module tree, and fans the
// per-file pipeline out across every discovered source file.
func (o *Orchestrator) Check(ctx context.Context) (Result, error) {
	info, err := os.Stat(o.projectRoot)
	if err != nil || !info.IsDir() {
		return Result{}, fmt.Errorf("invalid directory: %s", o.projectRoot)
	}

	walker := discovery.NewWalker()
	walkOpts := discovery.WalkOptions{
		Excludes:         append(append([]string{}, o.cfg.Exclude...), o.opts.ExtraExcludes...),
		RespectGitignore: o.cfg.RespectGitignore,
	}

	sourceRoots, err := discovery.ExpandSourceRoots(o.projectRoot, o.cfg.SourceRoots, walker, walkOpts)
	if err != nil {
		return Result{}, fmt.Errorf("expand source roots: %w", err)
	}

	if o.interrupted.Load() {
		return Result{}, ErrInterrupted
	}

	buildResult, err := modtree.BuildTree(o.cfg, sourceRoots, walker, walkOpts)
	if err != nil {
		return Result{}, fmt.Errorf("build module tree: %w", err)
	}

	resolver, err := discovery.NewPackageResolver(o.projectRoot, sourceRoots, walkOpts.Excludes)
	if err != nil {
		return Result{}, fmt.Errorf("resolve packages: %w", err)
	}

	var ic interfaceChecker
	if o.opts.EnableInterfaces {
		compiled, err := interfaces.Compile(o.cfg.Interfaces)
		if err != nil {
			return Result{}, fmt.Errorf("compile interfaces: %w", err)
		}
		ic = interfaceChecker{compiled: compiled}
	}

	// Fail fast on a broken grammar binding before spawning any workers.
	probeParser, err := pyparse.NewParser()
	if err != nil {
		return Result{}, fmt.Errorf("init python parser: %w", err)
	}
	probeParser.Close()

	var files []fileJob
	for _, root := range sourceRoots {
		relFiles, err := walker.WalkPyFiles(root, walkOpts)
		if err != nil {
			return Result{}, fmt.Errorf("walk %s: %w", root, err)
		}
		for _, rel := range relFiles {
			abs := filepath.Join(root, rel)
			projRel, rerr := filepath.Rel(o.projectRoot, abs)
			if rerr != nil {
				projRel = abs
			}
			files = append(files, fileJob{abs: abs, rel: filepath.ToSlash(projRel)})
		}
	}

	if o.interrupted.Load() {
		return Result{}, ErrInterrupted
	}

	if o.opts.EnableInterfaces {
		annotations, err := buildAnnotationIndex(ctx, files, sourceRoots, &o.interrupted)
		if err != nil {
			return Result{}, fmt.Errorf("index annotations: %w", err)
		}
		resolver := func(modulePath, member string) string { return annotations[modulePath][member] }
		cached, err := interfaces.NewCachedTypeChecker(annotationCacheSize, resolver)
		if err != nil {
			return Result{}, fmt.Errorf("build type checker: %w", err)
		}
		ic.typeChecker = cached
	}

	if o.interrupted.Load() {
		return Result{}, ErrInterrupted
	}

	outcomes := make([]fileOutcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, runtime.NumCPU())
	var mu sync.Mutex

	// A Parser serializes its Parse calls behind a mutex, so each file's
	// goroutine builds its own parser rather than sharing one across
	// workers.
	for i, job := range files {
		i, job := i, job
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			if o.interrupted.Load() {
				return nil
			}

			workerParser, err := pyparse.NewParser()
			if err != nil {
				return err
			}
			defer workerParser.Close()

			outcome := processFile(workerParser, job.abs, job.rel, buildResult.Tree, resolver, o.cfg, ic, o.opts)

			mu.Lock()
			outcomes[i] = outcome
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if o.interrupted.Load() {
		return Result{}, ErrInterrupted
	}

	var diagnostics []types.Diagnostic
	totalImports := 0
	externalUsed := map[string]bool{}
	for _, outcome := range outcomes {
		diagnostics = append(diagnostics, outcome.Diagnostics...)
		totalImports += outcome.ImportCount
		for dep := range outcome.ExternalUsed {
			externalUsed[dep] = true
		}
	}

	warnings := append([]types.Diagnostic{}, buildResult.Warnings...)

	if o.opts.EnableExternal {
		for _, root := range sourceRoots {
			pkg, perr := discovery.ResolvePackage(o.projectRoot, root)
			if perr != nil {
				continue
			}
			diagnostics = append(diagnostics, checks.UnusedExternalDependencies(pkg, externalUsed, o.cfg.Rules.UnusedExternalDependencies)...)
		}
	}

	if totalImports == 0 {
		warnings = append(warnings, types.NewGlobalWarning(types.DiagnosticDetails{
			Configuration: &types.ConfigurationDiagnostic{Kind: types.KindNoFirstPartyImportsFound},
		}))
	}

	sortDiagnostics(diagnostics)

	return Result{Diagnostics: diagnostics, Warnings: warnings}, nil
}

type fileJob struct {
	abs string
	rel string
}

// annotationCacheSize bounds the LRU backing CachedTypeChecker; sized
// generously since a project-wide annotation lookup is cheap to cache
// and re-parsing source to re-derive it is not.
const annotationCacheSize = 4096

// buildAnnotationIndex parses every file once to collect its module-level
// function return types and annotated assignments, keyed first by the
// file's own dotted module path and then by member name. This runs as
// its own fan-out, separate from the main per-file checker pass, because
// an import's target module may be processed by a different worker than
// the one resolving it: the whole index must be complete before any
// CheckMember call can consult another module's annotations.
func buildAnnotationIndex(ctx context.Context, files []fileJob, sourceRoots []string, interrupted *atomic.Bool) (map[string]map[string]string, error) {
	index := make(map[string]map[string]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, runtime.NumCPU())
	var mu sync.Mutex

	for _, job := range files {
		job := job
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			if interrupted.Load() {
				return nil
			}

			modulePath, err := discovery.FileToModulePath(sourceRoots, job.abs)
			if err != nil {
				return nil // file outside every source root: no module to annotate
			}

			content, err := os.ReadFile(job.abs)
			if err != nil {
				return nil // unreadable file: the main pass will report it
			}

			parser, err := pyparse.NewParser()
			if err != nil {
				return err
			}
			defer parser.Close()

			tree, err := parser.Parse(job.abs, content)
			if err != nil {
				return nil // unparseable file: the main pass will report it
			}
			defer tree.Close()

			annotations := pyparse.ExtractAnnotations(tree)
			if len(annotations) == 0 {
				return nil
			}

			mu.Lock()
			index[modulePath] = annotations
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return index, nil
}

// sortDiagnostics orders diagnostics by (severity descending, file path
// ascending, line ascending).
func sortDiagnostics(diagnostics []types.Diagnostic) {
	sort.SliceStable(diagnostics, func(i, j int) bool {
		a, b := diagnostics[i], diagnostics[j]
		if a.Severity != b.Severity {
			return severityRank(a.Severity) > severityRank(b.Severity)
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		return a.LineNumber < b.LineNumber
	})
}

func severityRank(s types.Severity) int {
	if s == types.SeverityError {
		return 1
	}
	return 0
}
