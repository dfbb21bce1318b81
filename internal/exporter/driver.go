package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/obsidian-tools/obsidian-export/internal/diag"
	"github.com/obsidian-tools/obsidian-export/internal/frontmatter"
	"github.com/obsidian-tools/obsidian-export/internal/markdown"
	"github.com/obsidian-tools/obsidian-export/internal/vaultindex"
	"github.com/obsidian-tools/obsidian-export/internal/walker"
)

// Options configures one export run: one field per CLI flag, plus the
// additive --dry-run/--workers.
type Options struct {
	Source      string
	Destination string

	Frontmatter       frontmatter.Mode
	Hidden            bool
	NoGit             bool
	IgnoreFileName    string
	NoRecursiveEmbeds bool
	HardLineBreaks    bool
	StartAt           string
	SkipTags          []string
	OnlyTags          []string

	Workers int
	DryRun  bool

	// Progress enables a rendered progress bar on stdout; ignored
	// during --dry-run.
	Progress bool
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Report summarizes one completed export run.
type Report struct {
	Exported int
	Copied   int
	Failed   int
	Warnings []string
}

// Driver resolves a source, walks it, filters it, and exports it.
type Driver struct {
	opts Options
	sink *diag.Sink
}

// NewDriver builds a Driver. sink receives every warning recorded during
// the run; pass diag.NewSink(os.Stderr) for CLI use, or diag.NewSink(nil)
// to collect warnings silently (as tests do).
func NewDriver(opts Options, sink *diag.Sink) *Driver {
	return &Driver{opts: opts, sink: sink}
}

// Export runs the whole algorithm: resolve source, walk, filter by
// start-at and tags, build the index, dispatch in parallel, write.
func (d *Driver) Export() (*Report, error) {
	info, err := os.Stat(d.opts.Source)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	var vaultRoot string
	var singleFile string // relative path, set only in single-file mode
	if info.IsDir() {
		vaultRoot = d.opts.Source
	} else {
		vaultRoot = filepath.Dir(d.opts.Source)
		singleFile = filepath.Base(d.opts.Source)
	}

	allFiles, err := walker.Walk(vaultRoot, walker.Options{
		Hidden:         d.opts.Hidden,
		NoGit:          d.opts.NoGit,
		IgnoreFileName: d.opts.IgnoreFileName,
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}

	mdExts := vaultindex.DefaultMarkdownExtensions()

	eligible := allFiles
	if singleFile != "" {
		eligible = filterToPath(allFiles, singleFile)
	} else if d.opts.StartAt != "" {
		eligible = walker.RestrictToStartAt(allFiles, d.opts.StartAt)
	}

	eligible, err = d.applyTagFilters(vaultRoot, eligible, mdExts)
	if err != nil {
		return nil, err
	}

	indexFiles := make([]vaultindex.File, len(allFiles))
	for i, f := range allFiles {
		indexFiles[i] = vaultindex.File{AbsPath: f.AbsPath, RelPath: f.RelPath}
	}
	idx := vaultindex.Build(indexFiles, mdExts)
	for _, w := range idx.Warnings {
		d.sink.Warn(w)
	}

	exportedSet := make(map[string]bool, len(eligible))
	for _, f := range eligible {
		exportedSet[f.RelPath] = true
	}

	resolver := &markdown.Resolver{
		Index:         idx,
		Exported:      exportedSet,
		EmbeddableExt: markdown.DefaultEmbeddableExtensions(),
	}

	mode := markdown.CycleIsError
	if d.opts.NoRecursiveEmbeds {
		mode = markdown.CycleBreaksLink
	}
	pipeline := markdown.NewPipeline(markdown.Options{
		FrontmatterMode: d.opts.Frontmatter,
		HardLineBreaks:  d.opts.HardLineBreaks,
		RecursiveEmbeds: mode,
	})

	read := func(relPath string) ([]byte, error) {
		return os.ReadFile(filepath.Join(vaultRoot, filepath.FromSlash(relPath)))
	}

	pool := NewPool(d.opts.workers())
	prog := newProgress(len(eligible), progressWriter(d.opts))

	type outcome struct {
		relPath    string
		isMarkdown bool
		warnings   []string
		wrote      bool
	}

	jobs := Run(pool, eligible, func(f walker.File) (outcome, error) {
		mdExt := mdExts[strings.ToLower(filepath.Ext(f.RelPath))]
		destPath := d.destinationFor(f.RelPath, singleFile != "")

		if !mdExt {
			if d.opts.DryRun {
				return outcome{relPath: f.RelPath}, nil
			}
			if err := copyVerbatim(f.AbsPath, destPath); err != nil {
				return outcome{}, err
			}
			return outcome{relPath: f.RelPath, wrote: true}, nil
		}

		source, err := os.ReadFile(f.AbsPath)
		if err != nil {
			return outcome{}, err
		}

		res, err := pipeline.Export(f.RelPath, source, resolver, read)
		if err != nil {
			return outcome{}, err
		}
		if res.Skipped {
			return outcome{relPath: f.RelPath, isMarkdown: true, warnings: res.Warnings}, nil
		}
		if !d.opts.DryRun {
			if err := writeFile(destPath, res.Output); err != nil {
				return outcome{}, err
			}
		}
		return outcome{relPath: f.RelPath, isMarkdown: true, warnings: res.Warnings, wrote: true}, nil
	}, func(completed int) { prog.update(completed, 0) })

	report := &Report{}
	var firstErr error
	for _, j := range jobs {
		for _, w := range j.Result.warnings {
			d.sink.Warn(w)
		}
		if j.Err != nil {
			report.Failed++
			if firstErr == nil {
				firstErr = j.Err
			}
			continue
		}
		if !j.Result.wrote {
			continue
		}
		if j.Result.isMarkdown {
			report.Exported++
		} else {
			report.Copied++
		}
	}
	prog.finish()
	report.Warnings = d.sink.Warnings()

	if firstErr != nil {
		return report, firstErr
	}
	return report, nil
}

// destinationFor computes the mirrored destination path for a source-
// relative file, honoring the single-file source/destination-is-a-file
// case.
func (d *Driver) destinationFor(relPath string, singleFile bool) string {
	if singleFile {
		return d.opts.Destination
	}
	return filepath.Join(d.opts.Destination, filepath.FromSlash(relPath))
}

func (d *Driver) applyTagFilters(vaultRoot string, files []walker.File, mdExts map[string]bool) ([]walker.File, error) {
	if len(d.opts.SkipTags) == 0 && len(d.opts.OnlyTags) == 0 {
		return files, nil
	}
	skip := toSet(d.opts.SkipTags)
	only := toSet(d.opts.OnlyTags)

	var out []walker.File
	for _, f := range files {
		if !mdExts[strings.ToLower(filepath.Ext(f.RelPath))] {
			out = append(out, f)
			continue
		}
		content, err := os.ReadFile(f.AbsPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.RelPath, err)
		}
		doc, _, err := frontmatter.Split(content)
		if err != nil {
			d.sink.Warn(fmt.Sprintf("%s: frontmatter parse failed, tags ignored: %v", f.RelPath, err))
			out = append(out, f)
			continue
		}
		tags := toSet(doc.Tags())

		if anyIn(tags, skip) {
			continue
		}
		if len(only) > 0 && !anyIn(tags, only) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func filterToPath(files []walker.File, relPath string) []walker.File {
	target := strings.ReplaceAll(relPath, string(filepath.Separator), "/")
	for _, f := range files {
		if f.RelPath == target {
			return []walker.File{f}
		}
	}
	return nil
}

func toSet(ss []string) map[string]bool {
	set := make(map[string]bool, len(ss))
	for _, s := range ss {
		set[s] = true
	}
	return set
}

func anyIn(have, want map[string]bool) bool {
	for t := range want {
		if have[t] {
			return true
		}
	}
	return false
}

func progressWriter(opts Options) io.Writer {
	if !opts.Progress || opts.DryRun {
		return nil
	}
	return os.Stdout
}
