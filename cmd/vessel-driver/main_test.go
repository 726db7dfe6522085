package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/askiada/go-vessel/internal/ledger"
	"github.com/askiada/go-vessel/pkg/vessel"
)

// stubRunner fabricates the bitmaps named in the arguments and fails the stages listed in fail.
type stubRunner struct {
	dir  string
	fail map[string]bool

	mu     sync.Mutex
	stages []string
	args   map[string][]string
}

func (s *stubRunner) Run(_ context.Context, inv vessel.Invocation) error {
	s.mu.Lock()
	s.stages = append(s.stages, inv.Stage)
	if s.args == nil {
		s.args = map[string][]string{}
	}
	s.args[inv.Stage] = inv.Args
	s.mu.Unlock()

	if s.fail[inv.Stage] {
		return &vessel.ExitError{Stage: inv.Stage, Args: inv.Args, Code: 1}
	}
	if inv.Stage == "gmean" {
		_, err := fmt.Fprintln(inv.Stdout, "0.95")
		return err
	}

	for _, arg := range inv.Args {
		if !strings.HasSuffix(arg, ".bmp") {
			continue
		}
		path := filepath.Join(s.dir, arg)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := encodeBMP(path); err != nil {
			return err
		}
	}

	return nil
}

func encodeBMP(path string) error {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		return err
	}

	return os.WriteFile(path, buf.Bytes(), 0o644)
}

type env struct {
	dir    string
	runner *stubRunner
}

func setupEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("VESSEL_WORK_DIR", dir)
	t.Setenv("VESSEL_SHARE_DIR", "/usr/share/vessel")
	t.Setenv("VESSEL_LOG_LEVEL", "error")
	t.Setenv("VESSEL_LOG_FILE", "")
	t.Setenv("VESSEL_LEDGER_DB", "")
	t.Setenv("VESSEL_GRAPH_FILE", "")
	t.Setenv("VESSEL_STRICT", "")
	t.Setenv("VESSEL_KEEP_ON_FAILURE", "")
	require.NoError(t, encodeBMP(filepath.Join(dir, "input.bmp")))

	return &env{dir: dir, runner: &stubRunner{dir: dir, fail: map[string]bool{}}}
}

func (e *env) run(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(testContext(t), args, &stdout, &stderr, e.runner)

	return code, stdout.String()
}

func TestUsageOutputs(t *testing.T) {
	for name, args := range map[string][]string{
		"no arguments":       nil,
		"help command":       {"help"},
		"help flag":          {"--help"},
		"short help flag":    {"-h"},
		"unknown mode":       {"segment", "a.bmp"},
		"unknown flag":       {"--bogus"},
		"unknown flag first": {"--bogus", "drive", "input.bmp", "out.bmp"},
		"mode --help":        {"drive", "--help"},
		"mode -h":            {"stare-ca", "-h"},
	} {
		t.Run(name, func(t *testing.T) {
			e := setupEnv(t)

			code, out := e.run(t, args...)
			assert.Equal(t, 0, code)
			assert.True(t, strings.HasPrefix(out, "Usages:\n"), out)
			assert.Contains(t, out, "vessel-driver stare-scale <image0> [<image1>]...\n")
			assert.Empty(t, e.runner.stages)
		})
	}
}

func TestDriveMode(t *testing.T) {
	e := setupEnv(t)

	code, _ := e.run(t, "drive", "input.bmp", "result.bmp")
	require.Equal(t, 0, code)

	assert.Equal(t, []string{"stage0", "stage1", "stage2", "stage4"}, e.runner.stages)
	assert.FileExists(t, filepath.Join(e.dir, "result.bmp"))
	assert.NoFileExists(t, filepath.Join(e.dir, "stage4.bmp"))
}

func TestDashPrefixedInputIsPositional(t *testing.T) {
	e := setupEnv(t)
	require.NoError(t, encodeBMP(filepath.Join(e.dir, "-img.bmp")))

	code, _ := e.run(t, "drive", "-img.bmp", "out.bmp")
	require.Equal(t, 0, code)

	assert.Equal(t, []string{"stage0", "stage1", "stage2", "stage4"}, e.runner.stages)
	assert.Equal(t, "-img.bmp", e.runner.args["stage0"][1])
	assert.FileExists(t, filepath.Join(e.dir, "out.bmp"))
}

func TestWrongArgumentCountExitsWithTwo(t *testing.T) {
	e := setupEnv(t)

	code, out := e.run(t, "stare-cn", "input.bmp", "result.bmp")
	assert.Equal(t, 2, code)
	assert.Contains(t, out, "Usages:")
	assert.Empty(t, e.runner.stages)
}

func TestStageFailureExitsWithOne(t *testing.T) {
	e := setupEnv(t)
	e.runner.fail["stage1"] = true

	code, _ := e.run(t, "drive", "input.bmp", "result.bmp")
	assert.Equal(t, 1, code)
	assert.Equal(t, []string{"stage0", "stage1"}, e.runner.stages)
}

func TestPermissiveModeSucceeds(t *testing.T) {
	e := setupEnv(t)
	t.Setenv("VESSEL_STRICT", "false")
	e.runner.fail["stage1"] = true

	code, _ := e.run(t, "drive", "input.bmp", "result.bmp")
	assert.Equal(t, 0, code)
	assert.Len(t, e.runner.stages, 4)
}

func TestScaleModePrintsScale(t *testing.T) {
	e := setupEnv(t)

	code, out := e.run(t, "stare-scale", "input.bmp")
	require.Equal(t, 0, code)
	assert.Equal(t, "IMGSCALE: 0.95\n", out)

	data, err := os.ReadFile(filepath.Join(e.dir, "imgscale.txt"))
	require.NoError(t, err)
	assert.Equal(t, "0.95\n", string(data))
}

func TestLedgerAndGraph(t *testing.T) {
	e := setupEnv(t)
	dbPath := filepath.Join(e.dir, "runs.db")
	graphPath := filepath.Join(e.dir, "pipeline.dot")
	t.Setenv("VESSEL_LEDGER_DB", dbPath)
	t.Setenv("VESSEL_GRAPH_FILE", graphPath)

	code, _ := e.run(t, "drive", "input.bmp", "result.bmp")
	require.Equal(t, 0, code)
	e.runner.fail["stage2"] = true
	code, _ = e.run(t, "stare", "input.bmp", "result.bmp")
	require.Equal(t, 1, code)

	graph, err := os.ReadFile(graphPath)
	require.NoError(t, err)
	assert.Contains(t, string(graph), `"stage2"`)
	assert.Contains(t, string(graph), `color="red"`)

	l, err := ledger.Open(dbPath)
	require.NoError(t, err)
	defer l.Close()
	runs, err := l.Recent(5)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "stare", runs[0].Mode)
	assert.Equal(t, ledger.StatusFailed, runs[0].Status)
	assert.Equal(t, ledger.StatusSucceeded, runs[1].Status)

	stages, err := l.Stages(runs[1].ID)
	require.NoError(t, err)
	assert.Len(t, stages, 5)

	code, out := e.run(t, "history", "-n", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, runs[0].ID)
	assert.NotContains(t, out, runs[1].ID)

	code, out = e.run(t, "history", "--run", runs[0].ID)
	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "STAGE"), out)
	assert.Contains(t, out, "stage2")

	code, _ = e.run(t, "history", "--run", "missing")
	assert.Equal(t, 1, code)
}

func TestHistoryWithoutLedger(t *testing.T) {
	e := setupEnv(t)

	code, _ := e.run(t, "history")
	assert.Equal(t, 1, code)

	code, _ = e.run(t, "history", "extra")
	assert.Equal(t, 2, code)

	code, _ = e.run(t, "history", "--bogus")
	assert.Equal(t, 2, code)
}
