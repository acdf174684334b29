package cli

import (
	"bytes"
	"fmt"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes a fresh root command with an empty home directory.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	homedir.DisableCache = true
	t.Setenv("HOME", t.TempDir())

	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// writeData writes (2-x)/(1.5+x^2) at 40 points in [-1, 1].
func writeData(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("# sampled rational function\nx,y\n")
	for i := 0; i < 40; i++ {
		x := -1 + (2*float64(i)+1)/40
		fmt.Fprintf(&b, "%.17g,%.17g\n", x, (2-x)/(1.5+x*x))
	}
	file := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(file, []byte(b.String()), 0o644))
	return file
}

func readReport(t *testing.T, file string) *FitReport {
	t.Helper()
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	r, err := ReadFitReport(data)
	require.NoError(t, err)
	return r
}

func TestReadSamples(t *testing.T) {
	in := "# comment\nt,f\n0, 1\n0.5i, 2-1i\n1,3i\n"
	s, err := ReadSamples(strings.NewReader(in), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"t", "f"}, s.Header)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, complex(0, 0.5), s.X.At(1, 0))
	assert.Equal(t, []complex128{1, complex(2, -1), complex(0, 3)}, s.Y)

	s, err = ReadSamples(strings.NewReader("1,2\n3,4\n"), 2)
	require.NoError(t, err)
	assert.Nil(t, s.Header)
	assert.Nil(t, s.Y)
	r, c := s.X.Dims()
	assert.Equal(t, [2]int{2, 2}, [2]int{r, c})
}

func TestReadSamplesErrors(t *testing.T) {
	cases := map[string]struct {
		in   string
		dims int
	}{
		"empty":       {"", 1},
		"header only": {"x,y\n", 1},
		"too wide":    {"1,2,3\n", 1},
		"bad cell":    {"1,2\n3,oops\n", 1},
		"ragged":      {"1,2\n3\n", 1},
		"bad dims":    {"1,2\n", 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadSamples(strings.NewReader(tc.in), tc.dims)
			assert.Error(t, err)
		})
	}
}

func TestWritePredictions(t *testing.T) {
	s, err := ReadSamples(strings.NewReader("0.5\n2i\n"), 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePredictions(&buf, nil, s.X, []complex128{1, complex(0, -2)}))
	assert.Equal(t, "x0,re,im\n0.5,1,0\n(0+2i),0,-2\n", buf.String())
}

func TestFitEvalPoles(t *testing.T) {
	dir := t.TempDir()
	data := writeData(t, dir)
	modelFile := filepath.Join(dir, "model.json")
	reportFile := filepath.Join(dir, "report.yaml")
	fitPlot := filepath.Join(dir, "fit.png")
	histPlot := filepath.Join(dir, "history.svg")

	_, _, err := run(t, "fit", data,
		"--num", "1", "--denom", "2", "--title", "demo",
		"-o", modelFile, "--report", reportFile,
		"--plot", fitPlot, "--history-plot", histPlot)
	require.NoError(t, err)

	for _, f := range []string{modelFile, fitPlot, histPlot} {
		info, err := os.Stat(f)
		require.NoError(t, err, f)
		assert.Greater(t, info.Size(), int64(0), f)
	}

	r := readReport(t, reportFile)
	assert.Equal(t, "demo", r.Title)
	assert.Equal(t, 40, r.Samples)
	assert.Equal(t, "arnoldi", r.Basis)
	assert.Equal(t, "2", r.Norm)
	require.NotNil(t, r.Residual)
	assert.Less(t, *r.Residual, 1e-6)
	require.NotNil(t, r.R2)
	assert.InDelta(t, 1, *r.R2, 1e-8)
	require.Len(t, r.Poles, 2)
	for _, p := range r.Poles {
		z, err := strconv.ParseComplex(p, 128)
		require.NoError(t, err)
		assert.InDelta(t, math.Sqrt(1.5), cmplx.Abs(z), 1e-6)
	}

	stdout, stderr, err := run(t, "eval", modelFile, data)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Equal(t, "x,re,im", lines[0])
	assert.Len(t, lines, 41)
	assert.Contains(t, stderr, "R2 ")

	stdout, _, err = run(t, "poles", modelFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, "poles:")
	assert.Contains(t, stdout, "zeros:")
}

func TestFitVerboseTable(t *testing.T) {
	data := writeData(t, t.TempDir())
	stdout, _, err := run(t, "fit", data, "--num", "1", "--denom", "2", "-v")
	require.NoError(t, err)
	assert.Contains(t, stdout, "iter")
	assert.Contains(t, stdout, "-----")
}

func TestConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	data := writeData(t, dir)
	cfg := filepath.Join(dir, "ratfit.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("basis: legendre\nnum: \"1\"\ndenom: \"2\"\n"), 0o644))
	report := filepath.Join(dir, "report.yaml")

	_, _, err := run(t, "fit", data, "--config", cfg, "--report", report)
	require.NoError(t, err)
	r := readReport(t, report)
	assert.Equal(t, "legendre", r.Basis)
	assert.Equal(t, "1", r.Numerator)

	// flags win over the config file, env fills what neither sets
	t.Setenv("RATFIT_NORM", "inf")
	_, _, err = run(t, "fit", data, "--config", cfg, "--basis", "chebyshev", "--report", report)
	require.NoError(t, err)
	r = readReport(t, report)
	assert.Equal(t, "chebyshev", r.Basis)
	assert.Equal(t, "inf", r.Norm)
}

func TestFitErrors(t *testing.T) {
	dir := t.TempDir()
	data := writeData(t, dir)
	xOnly := filepath.Join(dir, "x.csv")
	require.NoError(t, os.WriteFile(xOnly, []byte("1\n2\n"), 0o644))

	cases := map[string][]string{
		"missing file":   {"fit", filepath.Join(dir, "nope.csv")},
		"no values":      {"fit", xOnly},
		"bad degree":     {"fit", data, "--num", "two"},
		"bad basis":      {"fit", data, "--basis", "fourier"},
		"bad norm":       {"fit", data, "--norm", "1"},
		"bad log format": {"fit", data, "--log-format", "xml"},
		"bad log level":  {"fit", data, "--log-level", "loud"},
		"bad profile":    {"fit", data, "--profile", "gpu"},
		"missing config": {"fit", data, "--config", filepath.Join(dir, "none.yaml")},
		"no args":        {"fit"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := run(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestFitProfile(t *testing.T) {
	dir := t.TempDir()
	data := writeData(t, dir)
	_, _, err := run(t, "fit", data, "--num", "1", "--denom", "2", "--profile", "cpu", "--profile-dir", dir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "cpu.pprof"))
	assert.NoError(t, err)
}

func TestJSONLogging(t *testing.T) {
	data := writeData(t, t.TempDir())
	_, stderr, err := run(t, "fit", data, "--num", "1", "--denom", "2", "--log-format", "json", "--log-level", "info")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"message":"fit finished"`)
}
