package pinlogo

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// logoTree lays out a source directory with two valid logos, one unreadable image
// and a file which must be ignored.
func logoTree(t *testing.T) string {
	t.Helper()
	src := t.TempDir()

	write := func(rel string, data []byte) {
		path := filepath.Join(src, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, data, 0644))
	}
	write("a/red.png", encodePNG(t, scenarioRedSquare()))
	write("b/sub/disk.PNG", encodePNG(t, scenarioBlackDisk()))
	write("broken.png", []byte("hello"))
	write("notes.txt", []byte("not a logo"))

	return src
}

func TestExec_Directory(t *testing.T) {
	src := logoTree(t)
	out := t.TempDir()
	dst := filepath.Join(out, "icons")

	op := &Ops{
		Src:      src,
		Dst:      dst,
		Workers:  2,
		Report:   filepath.Join(out, "report.html"),
		Theme:    filepath.Join(out, "theme.json"),
		ThemeURL: "https://cdn.example.com/pins",
	}
	sum, err := NewProcessor(DefaultConfig(), nil).Execute(context.Background(), op)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.Converted)
	assert.Equal(t, 1, sum.Failed)
	require.Len(t, sum.Results, 3)
	assert.Equal(t, "a/red", sum.Results[0].ID)
	assert.Equal(t, "b/sub/disk", sum.Results[1].ID)
	assert.Equal(t, "broken", sum.Results[2].ID)

	assert.FileExists(t, filepath.Join(dst, "a", "red.svg"))
	assert.FileExists(t, filepath.Join(dst, "b", "sub", "disk.svg"))
	assert.NoFileExists(t, filepath.Join(dst, "broken.svg"))
	assert.NoFileExists(t, filepath.Join(dst, "notes.svg"))

	var decErr *DecodeError
	assert.ErrorAs(t, sum.Results[2].Err, &decErr)
	assert.Equal(t, filepath.Join(src, "broken.png"), decErr.Path)

	assert.Equal(t, []string{"a/red", "b/sub/disk"}, sum.Theme.Keys())
	style, ok := sum.Theme.Get("b/sub/disk")
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/pins/b/sub/disk.svg", style.Icon)
	assert.Equal(t, "#808080", style.Background)

	theme, err := os.ReadFile(op.Theme)
	require.NoError(t, err)
	red := strings.Index(string(theme), `"a/red"`)
	disk := strings.Index(string(theme), `"b/sub/disk"`)
	assert.True(t, red >= 0 && disk > red)
	assert.Contains(t, string(theme), `"background": "#ffffff"`)

	report, err := os.ReadFile(op.Report)
	require.NoError(t, err)
	assert.Contains(t, string(report), "failed (decode)")
	assert.Contains(t, string(report), "data:image/png;base64,")
	assert.Contains(t, string(report), "icons/a/red.svg")
}

func TestExec_WorkerCountDoesNotChangeOutput(t *testing.T) {
	src := logoTree(t)
	p := NewProcessor(DefaultConfig(), nil)

	run := func(workers int) map[string]string {
		dst := t.TempDir()
		sum, err := p.Execute(context.Background(), &Ops{Src: src, Dst: dst, Workers: workers})
		require.NoError(t, err)

		icons := make(map[string]string)
		for _, fr := range sum.Results {
			if fr.Err != nil {
				continue
			}
			data, err := os.ReadFile(fr.Output)
			require.NoError(t, err)
			icons[fr.ID] = string(data)
		}
		return icons
	}

	single := run(1)
	assert.Len(t, single, 2)
	assert.Equal(t, single, run(4))
}

func TestExec_SingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(src, encodePNG(t, scenarioBluePanel()), 0644))

	t.Run("into directory", func(t *testing.T) {
		dst := filepath.Join(dir, "out")
		sum, err := NewProcessor(DefaultConfig(), nil).Execute(context.Background(), &Ops{Src: src, Dst: dst})
		require.NoError(t, err)

		require.Equal(t, 1, sum.Converted)
		assert.Equal(t, filepath.Join(dst, "logo.svg"), sum.Results[0].Output)
		assert.Equal(t, "logo", sum.Results[0].ID)
		assert.FileExists(t, sum.Results[0].Output)
	})

	t.Run("into named file", func(t *testing.T) {
		dst := filepath.Join(dir, "named", "pin.svg")
		sum, err := NewProcessor(DefaultConfig(), nil).Execute(context.Background(), &Ops{Src: src, Dst: dst})
		require.NoError(t, err)

		require.Equal(t, 1, sum.Converted)
		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, sum.Results[0].Result.SVG, data)
	})
}

// pipeStdin replaces os.Stdin with a pipe fed with data for the duration of the test.
func pipeStdin(t *testing.T, data []byte) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	stdin := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = stdin
		r.Close()
	})

	go func() {
		defer w.Close()
		w.Write(data)
	}()
}

func TestExec_StdinIntoDirectory(t *testing.T) {
	pipeStdin(t, encodePNG(t, scenarioRedSquare()))
	dst := t.TempDir()

	sum, err := NewProcessor(DefaultConfig(), nil).Execute(context.Background(), &Ops{Src: PipeName, Dst: dst})
	require.NoError(t, err)

	require.Equal(t, 1, sum.Converted)
	fr := sum.Results[0]
	assert.Equal(t, "stdin", fr.ID)
	assert.Equal(t, filepath.Join(dst, "stdin.svg"), fr.Output)

	data, err := os.ReadFile(fr.Output)
	require.NoError(t, err)
	assert.Equal(t, fr.Result.SVG, data)
}

func TestExec_StdinIntoMissingDirectory(t *testing.T) {
	pipeStdin(t, encodePNG(t, scenarioRedSquare()))
	dst := filepath.Join(t.TempDir(), "icons")

	sum, err := NewProcessor(DefaultConfig(), nil).Execute(context.Background(), &Ops{Src: PipeName, Dst: dst})
	require.NoError(t, err)

	require.Equal(t, 1, sum.Converted)
	assert.DirExists(t, dst)
	assert.FileExists(t, filepath.Join(dst, "stdin.svg"))
}

func TestExec_OutputPath(t *testing.T) {
	dir := t.TempDir()

	testCases := map[string]struct {
		dst  string
		want string
	}{
		"pipe":         {dst: PipeName, want: PipeName},
		"svg file":     {dst: filepath.Join(dir, "pin.SVG"), want: filepath.Join(dir, "pin.SVG")},
		"existing dir": {dst: dir, want: filepath.Join(dir, "logo.svg")},
		"missing dir":  {dst: filepath.Join(dir, "out"), want: filepath.Join(dir, "out", "logo.svg")},
		"empty":        {dst: "", want: "logo.svg"},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := outputPath(tc.dst, "logo.png")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExec_OnResult(t *testing.T) {
	src := logoTree(t)

	var (
		mu   sync.Mutex
		seen []string
	)
	op := &Ops{
		Src: src,
		Dst: t.TempDir(),
		OnResult: func(fr FileResult) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, fr.ID)
		},
	}
	_, err := NewProcessor(DefaultConfig(), nil).Execute(context.Background(), op)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a/red", "b/sub/disk", "broken"}, seen)
}

func TestExec_MissingSource(t *testing.T) {
	_, err := NewProcessor(DefaultConfig(), nil).Execute(context.Background(), &Ops{
		Src: filepath.Join(t.TempDir(), "missing"),
		Dst: t.TempDir(),
	})
	assert.Error(t, err)
}

func TestExec_Helpers(t *testing.T) {
	assert.True(t, isValidExtension(".PNG", SupportedExtensions))
	assert.True(t, isValidExtension(".webp", SupportedExtensions))
	assert.False(t, isValidExtension(".txt", SupportedExtensions))
	assert.Equal(t, "dir/logo.svg", swapExt("dir/logo.png"))
	assert.Equal(t, "logo", trimExt("logo.jpeg"))

	dst := t.TempDir()
	op := &Ops{Dst: dst}
	assert.Equal(t, "a/b.svg", iconURL(op, filepath.Join(dst, "a", "b.svg")))
	op.ThemeURL = "https://cdn.example.com/pins/"
	assert.Equal(t, "https://cdn.example.com/pins/a/b.svg", iconURL(op, filepath.Join(dst, "a", "b.svg")))
	assert.Empty(t, iconURL(op, ""))
}
