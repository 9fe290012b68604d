package qb

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
)

// defaultIgnoreGlobs are compiled-intermediate patterns excluded from every
// QPACK regardless of the "ignore" configuration key: '*.pyc'/'.q*'/'Qfilec'
// style build byproducts generalized beyond any one recipe language.
var defaultIgnoreGlobs = []string{"*.o", "*.pyc", "*.class", "Qfilec"}

// Pack snapshots the working directory srcDir into a fresh QPACK directory:
// any prior QPACK is removed first, dotfiles at every level and
// compiled intermediates are excluded, symlinks are preserved, and the
// resolved qubit manifest for targets is written to <qpack>/<qubits-file>.
func Pack(table *RuleTable, cfg Config, srcDir string, verbose bool, targets ...string) (string, error) {
	qp := filepath.Join(srcDir, cfg.QPack)

	if _, err := os.Stat(qp); err == nil {
		if err := os.RemoveAll(qp); err != nil {
			return "", fmt.Errorf("qb: removing prior qpack: %w", err)
		}
	}
	if err := os.MkdirAll(qp, 0o755); err != nil {
		return "", fmt.Errorf("qb: creating qpack: %w", err)
	}

	globs := append(append([]string(nil), defaultIgnoreGlobs...), cfg.Ignore...)

	var bar *progressbar.ProgressBar
	if verbose {
		bar = progressbar.Default(-1, "packing")
		defer bar.Finish()
	}

	ignore := func(rel string) bool {
		base := filepath.Base(rel)
		if dotfile(base) {
			return true
		}
		if rel == cfg.QPack {
			return true
		}
		for _, g := range globs {
			if ok, _ := doublestar.Match(strings.TrimSpace(g), base); ok {
				return true
			}
			if ok, _ := doublestar.Match(strings.TrimSpace(g), rel); ok {
				return true
			}
		}
		return false
	}

	if err := copyTree(srcDir, qp, ignore, bar); err != nil {
		return "", fmt.Errorf("qb: packing: %w", err)
	}

	qubits, err := Resolve(table, targets...)
	if err != nil {
		return "", err
	}

	manifestPath := filepath.Join(qp, cfg.QubitsFile)
	if err := os.WriteFile(manifestPath, []byte(qubits.Dump()), 0o644); err != nil {
		return "", fmt.Errorf("qb: writing manifest: %w", err)
	}

	return qp, nil
}

func dotfile(name string) bool {
	return strings.HasPrefix(name, ".")
}

// copyTree recursively copies src into dst, skipping anything ignore
// considers excluded and preserving symbolic links.
func copyTree(src, dst string, ignore func(rel string) bool, bar *progressbar.ProgressBar) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if ignore(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)
		if bar != nil {
			_ = bar.Add(1)
		}

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		default:
			return copyFile(path, target)
		}
	})
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
