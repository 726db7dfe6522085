package driver_test

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/bmp"

	"github.com/askiada/go-vessel/pkg/vessel"
)

// fakeRunner records invocations and writes every missing .bmp argument as a small bitmap.
type fakeRunner struct {
	dir string

	mu    sync.Mutex
	calls []vessel.Invocation
	// fail maps a stage prefix to the exit code returned for it.
	fail map[string]int
	// skipOutputs makes stages matching a prefix exit cleanly without writing anything.
	skipOutputs map[string]bool
	gmean       string
	// scaleLog holds the scale log content seen by the gmean invocation.
	scaleLog string
	// hook runs at the start of every invocation.
	hook func(inv vessel.Invocation)
	// stage4 holds the bytes of the last stage4.bmp written.
	stage4 []byte
}

func newFakeRunner(dir string) *fakeRunner {
	return &fakeRunner{
		dir:         dir,
		fail:        map[string]int{},
		skipOutputs: map[string]bool{},
		gmean:       "1.25\n",
	}
}

func (f *fakeRunner) Run(ctx context.Context, inv vessel.Invocation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	f.calls = append(f.calls, inv)
	hook := f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(inv)
	}

	for prefix, code := range f.fail {
		if strings.HasPrefix(inv.Stage, prefix) {
			return &vessel.ExitError{Stage: inv.Stage, Args: inv.Args, Code: code, Stderr: "boom"}
		}
	}
	for prefix := range f.skipOutputs {
		if strings.HasPrefix(inv.Stage, prefix) {
			return nil
		}
	}

	if len(inv.Args) > 1 && inv.Args[0] == "--gmean" {
		data, err := os.ReadFile(filepath.Join(f.dir, inv.Args[1]))
		if err != nil {
			return err
		}
		f.mu.Lock()
		f.scaleLog = string(data)
		f.mu.Unlock()

		_, err = fmt.Fprint(inv.Stdout, f.gmean)
		return err
	}

	for _, arg := range inv.Args {
		if !strings.HasSuffix(arg, ".bmp") {
			continue
		}
		path := arg
		if !filepath.IsAbs(path) {
			path = filepath.Join(f.dir, path)
		}
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := writeBMP(path, 4, 3); err != nil {
			return err
		}
		if filepath.Base(path) == "stage4.bmp" {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			f.mu.Lock()
			f.stage4 = data
			f.mu.Unlock()
		}
	}

	if inv.Stderr != nil && strings.HasPrefix(inv.Stage, "stage1 ") {
		_, err := fmt.Fprintf(inv.Stderr, "%s 1.25\n", strings.TrimPrefix(inv.Stage, "stage1 "))
		return err
	}

	return nil
}

func (f *fakeRunner) stages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	res := make([]string, len(f.calls))
	for i, c := range f.calls {
		res[i] = c.Stage
	}

	return res
}

func (f *fakeRunner) call(stage string) (vessel.Invocation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.calls {
		if c.Stage == stage {
			return c, true
		}
	}

	return vessel.Invocation{}, false
}

func writeBMP(path string, width, height int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bmp.Encode(file, image.NewGray(image.Rect(0, 0, width, height))); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}

var _ vessel.Runner = (*fakeRunner)(nil)
