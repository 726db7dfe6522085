package driver

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-vessel/pkg/vessel"
)

// copyFile copies src to dst, replacing dst.
func copyFile(src, dst string) error {
	if src == dst {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", dst)
	}

	_, err = io.Copy(out, in)
	if err != nil {
		out.Close()

		return errors.Wrapf(err, "unable to copy %s to %s", src, dst)
	}

	return errors.Wrapf(out.Close(), "unable to close %s", dst)
}

// listFiles returns the names of the entries of dir.
func listFiles(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list %s", dir)
	}

	res := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		res[e.Name()] = struct{}{}
	}

	return res, nil
}

// keepRules tells the cleanup which new files survive a run.
type keepRules struct {
	// exact paths: the designated output and the persisted scale.
	exact []string
	// protected driver files, kept with their sidecars and rotated backups.
	protected []string
}

func (d *Driver) keepRules(output string) keepRules {
	rules := keepRules{exact: []string{d.path(vessel.ScaleFile)}}
	if output != "" {
		rules.exact = append(rules.exact, d.path(output))
	}
	for _, p := range d.protected {
		abs, err := filepath.Abs(p)
		if err == nil {
			rules.protected = append(rules.protected, abs)
		}
	}

	return rules
}

func (r keepRules) kept(path string) bool {
	for _, k := range r.exact {
		if path == k {
			return true
		}
	}
	for _, k := range r.protected {
		if path == k || isSidecar(path, k) || isRotatedBackup(path, k) {
			return true
		}
	}

	return false
}

// isSidecar matches the -wal, -shm and -journal files sqlite writes next to a database.
func isSidecar(path, protected string) bool {
	return strings.HasPrefix(path, protected+"-")
}

// backupTimeFormat is the timestamp lumberjack inserts in rotated log names.
const backupTimeFormat = "2006-01-02T15-04-05.000"

// isRotatedBackup matches <name>-<timestamp><ext>, optionally gzipped, the name lumberjack gives rotated logs.
func isRotatedBackup(path, protected string) bool {
	ext := filepath.Ext(protected)
	stem := strings.TrimSuffix(protected, ext) + "-"

	name := strings.TrimSuffix(path, ".gz")
	if !strings.HasPrefix(name, stem) || !strings.HasSuffix(name, ext) || len(name) < len(stem)+len(ext) {
		return false
	}

	_, err := time.Parse(backupTimeFormat, name[len(stem):len(name)-len(ext)])

	return err == nil
}

// cleanup removes the regular files of the work directory that did not exist before the run.
func (d *Driver) cleanup(before map[string]struct{}, keep keepRules) error {
	entries, err := os.ReadDir(d.workDir)
	if err != nil {
		return errors.Wrapf(err, "unable to list %s", d.workDir)
	}

	var firstErr error
	for _, e := range entries {
		if _, ok := before[e.Name()]; ok || !e.Type().IsRegular() {
			continue
		}

		path := filepath.Join(d.workDir, e.Name())
		if keep.kept(path) {
			continue
		}

		err := os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "unable to remove %s", path)
			}

			continue
		}
		d.logger.Debug("removed intermediate file", "file", path)
	}

	return firstErr
}
