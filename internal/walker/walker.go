// Package walker lists the files of a vault subject to Obsidian's ignore
// conventions: hidden files, a repository's .gitignore, and a vault-local
// ignore file (.export-ignore by default). Unlike a markdown-only scanner
// with a flat list of shell-glob ignore strings, this listing is
// extension-agnostic: the driver needs to see every vault file, not just
// notes, so it can copy non-markdown assets verbatim.
package walker

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/monochromegane/go-gitignore"
)

// Options controls which files Walk considers eligible.
type Options struct {
	// Hidden includes dotfiles and dot-directories when true.
	Hidden bool

	// NoGit disables matching against a top-level .gitignore.
	NoGit bool

	// IgnoreFileName names the vault-local ignore file, default
	// ".export-ignore".
	IgnoreFileName string
}

func (o Options) ignoreFileName() string {
	if o.IgnoreFileName == "" {
		return ".export-ignore"
	}
	return o.IgnoreFileName
}

// File is one vault file discovered under root.
type File struct {
	AbsPath string
	RelPath string // slash-separated, relative to root
}

// Walk lists every eligible file under root, in deterministic
// (lexicographic, by RelPath) order.
func Walk(root string, opts Options) ([]File, error) {
	gitMatcher, err := loadGitIgnore(root, opts)
	if err != nil {
		return nil, err
	}
	exportPatterns, err := loadExportIgnore(root, opts.ignoreFileName())
	if err != nil {
		return nil, err
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relSlash := toSlash(rel)

		if !opts.Hidden && isHidden(entry.Name()) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if gitMatcher != nil && gitMatcher.Match(relSlash, entry.IsDir()) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if matchesAny(exportPatterns, relSlash) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.IsDir() {
			return nil
		}

		files = append(files, File{AbsPath: path, RelPath: relSlash})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// RestrictToStartAt keeps only files at or under startAt, a path relative
// to the same root Walk was called with.
func RestrictToStartAt(files []File, startAt string) []File {
	if startAt == "" {
		return files
	}
	prefix := toSlash(strings.TrimSuffix(startAt, "/"))
	var out []File
	for _, f := range files {
		if f.RelPath == prefix || strings.HasPrefix(f.RelPath, prefix+"/") {
			out = append(out, f)
		}
	}
	return out
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, string(filepath.Separator), "/")
}

// loadGitIgnore returns a matcher for the vault's top-level .gitignore, or
// nil if --no-git was requested or no .gitignore exists.
func loadGitIgnore(root string, opts Options) (gitignore.IgnoreMatcher, error) {
	if opts.NoGit {
		return nil, nil
	}
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return gitignore.NewGitIgnore(path, root)
}

// loadExportIgnore reads the vault-local ignore file as a flat list of
// doublestar glob patterns, one per line, blank lines and #-comments
// skipped. Using doublestar here (rather than go-gitignore a second time)
// gives the vault-local ignore file its own, simpler glob semantics,
// distinct from .gitignore's negation/anchoring rules.
func loadExportIgnore(root, name string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}

func matchesAny(patterns []string, relSlash string) bool {
	for _, pat := range patterns {
		if ok, _ := doublestar.Match(pat, relSlash); ok {
			return true
		}
		if ok, _ := doublestar.Match(pat, filepath.Base(relSlash)); ok {
			return true
		}
	}
	return false
}
