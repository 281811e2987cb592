package pinlogo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pinlogo/pinlogo/utils"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// PipeName is the source or destination name standing for stdin and stdout.
const PipeName = "-"

// pipeID names the logo read from stdin.
const pipeID = "stdin"

// SupportedExtensions lists the file extensions picked up from a source directory.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".bmp", ".gif"}

// Ops describes a batch run.
type Ops struct {
	// Src is a directory, a single image or PipeName.
	Src string
	// Dst is the output directory, an SVG file or PipeName.
	Dst     string
	Workers int
	// Report and Theme are the paths of the HTML report and of the theme document.
	// Empty paths disable them.
	Report string
	Theme  string
	// ThemeURL is prepended to the relative icon paths of the theme document.
	ThemeURL string
	// OnResult is called on the calling goroutine after each file, in completion order.
	OnResult func(FileResult)
}

// FileResult is the outcome of a single file of a batch.
type FileResult struct {
	Source   string
	Output   string
	ID       string
	Result   *Result
	Err      error
	Duration time.Duration
}

// Summary reports a finished batch. Results are sorted by source path.
type Summary struct {
	Total         int
	Converted     int
	Failed        int
	LowConfidence int
	Duration      time.Duration
	Results       []FileResult
	Theme         Theme
}

// result holds the relevant information about a conversion, sent by the workers.
type result struct {
	path string
	err  error
	file FileResult
}

type job struct {
	src, dst, id string
}

// Execute converts every logo designated by op. Per file failures are reported in the summary
// and never abort the batch, only setup errors and report or theme write failures are returned.
func (p *Processor) Execute(ctx context.Context, op *Ops) (*Summary, error) {
	now := time.Now()

	var (
		results []FileResult
		err     error
	)
	switch {
	case op.Src == PipeName:
		results, err = p.executePipe(ctx, op)
	default:
		var fs os.FileInfo
		fs, err = os.Stat(op.Src)
		if err != nil {
			return nil, fmt.Errorf("failed to load the source: %w", err)
		}
		switch mode := fs.Mode(); {
		case mode.IsDir():
			results, err = p.executeDir(ctx, op)
		case mode.IsRegular() || mode&os.ModeNamedPipe != 0:
			results, err = p.executeFile(ctx, op)
		default:
			err = fmt.Errorf("unsupported source %s", op.Src)
		}
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Source < results[j].Source })

	sum := &Summary{Results: results}
	for _, fr := range results {
		sum.Total++
		if fr.Err != nil {
			sum.Failed++
			continue
		}
		sum.Converted++
		if fr.Result.LowConfidence {
			sum.LowConfidence++
		}
		sum.Theme = sum.Theme.With(fr.ID, Style{
			Background: fr.Result.Contrast.Hex(),
			Icon:       iconURL(op, fr.Output),
		})
	}

	if op.Theme != "" {
		if err := writeTheme(op.Theme, sum.Theme); err != nil {
			return sum, err
		}
	}
	sum.Duration = time.Since(now)

	if op.Report != "" {
		if err := p.writeReport(op.Report, sum); err != nil {
			return sum, err
		}
	}

	p.logger().Info("batch finished",
		zap.Int("total", sum.Total),
		zap.Int("converted", sum.Converted),
		zap.Int("failed", sum.Failed),
		zap.Int("low_confidence", sum.LowConfidence),
		zap.Duration("duration", sum.Duration),
	)

	return sum, nil
}

func (p *Processor) executeDir(ctx context.Context, op *Ops) ([]FileResult, error) {
	if err := os.MkdirAll(op.Dst, 0755); err != nil {
		return nil, fmt.Errorf("unable to create the destination directory: %w", err)
	}

	workers := op.Workers
	// Limit the concurrently running workers to maxWorkers.
	if workers <= 0 || workers > maxWorkers {
		workers = utils.Min(runtime.NumCPU(), maxWorkers)
	}

	ch := make(chan result)
	done := make(chan interface{})
	defer close(done)

	paths, errc := walkDir(done, op.Src, SupportedExtensions)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			p.consumer(ctx, op, ch, done, paths)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	var results []FileResult
	for res := range ch {
		results = append(results, res.file)
		if op.OnResult != nil {
			op.OnResult(res.file)
		}
	}

	if err := <-errc; err != nil {
		return results, fmt.Errorf("cannot walk %s: %w", op.Src, err)
	}
	return results, ctx.Err()
}

func (p *Processor) executeFile(ctx context.Context, op *Ops) ([]FileResult, error) {
	dst, err := outputPath(op.Dst, filepath.Base(op.Src))
	if err != nil {
		return nil, err
	}

	fr := p.convertFile(ctx, job{src: op.Src, dst: dst, id: trimExt(filepath.Base(op.Src))})
	if op.OnResult != nil {
		op.OnResult(fr)
	}
	return []FileResult{fr}, nil
}

func (p *Processor) executePipe(ctx context.Context, op *Ops) ([]FileResult, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("`-` should be used with a pipe for stdin")
	}
	dst := op.Dst
	if dst == "" {
		dst = PipeName
	}
	dst, err := outputPath(dst, pipeID)
	if err != nil {
		return nil, err
	}

	fr := p.convertFile(ctx, job{src: PipeName, dst: dst, id: pipeID})
	if op.OnResult != nil {
		op.OnResult(fr)
	}
	return []FileResult{fr}, nil
}

// outputPath resolves the destination of a single conversion. A directory, an empty
// destination or a path without the .svg extension receives name with the .svg extension.
func outputPath(dst, name string) (string, error) {
	if dst == PipeName || (!isDir(dst) && strings.EqualFold(filepath.Ext(dst), ".svg")) {
		return dst, nil
	}
	if dst == "" {
		dst = "."
	}
	if err := os.MkdirAll(dst, 0755); err != nil {
		return "", fmt.Errorf("unable to create the destination directory: %w", err)
	}
	return filepath.Join(dst, swapExt(name)), nil
}

// consumer reads the path names from the paths channel and converts each of them.
func (p *Processor) consumer(
	ctx context.Context,
	op *Ops,
	res chan<- result,
	done <-chan interface{},
	paths <-chan string,
) {
	for src := range paths {
		// Keep draining the paths so the directory walk can finish.
		if ctx.Err() != nil {
			continue
		}
		rel, err := filepath.Rel(op.Src, src)
		if err != nil {
			rel = filepath.Base(src)
		}
		fr := p.convertFile(ctx, job{
			src: src,
			dst: filepath.Join(op.Dst, swapExt(rel)),
			id:  filepath.ToSlash(trimExt(rel)),
		})

		select {
		case <-done:
			return
		case res <- result{path: src, err: fr.Err, file: fr}:
		}
	}
}

// convertFile converts a single logo and writes its icon, logging the outcome.
func (p *Processor) convertFile(ctx context.Context, j job) FileResult {
	start := time.Now()
	fr := FileResult{Source: j.src, Output: j.dst, ID: j.id}
	if j.dst == PipeName {
		fr.Output = ""
	}

	log := p.logger().With(zap.String("file", j.src))
	proc := *p
	proc.Logger = log

	fr.Result, fr.Err = proc.process(ctx, j.src, j.dst)
	fr.Duration = time.Since(start)

	if fr.Err != nil {
		fr.Err = withPath(fr.Err, j.src)
		fr.Result = nil
		log.Error("conversion failed",
			zap.String("reason", reason(fr.Err)),
			zap.Error(fr.Err),
		)
		return fr
	}
	log.Info("converted",
		zap.String("method", fr.Result.Method()),
		zap.Stringer("fill", fr.Result.Fill),
		zap.Stringer("contrast", fr.Result.Contrast),
		zap.Duration("duration", fr.Duration),
	)
	return fr
}

// process opens the source and the destination and runs the conversion.
// The destination file is removed in case of an error.
func (p *Processor) process(ctx context.Context, in, out string) (*Result, error) {
	src, dst, err := pathToFile(in, out)
	if err != nil {
		return nil, err
	}

	defer func() {
		if f, ok := src.(*os.File); ok && f != os.Stdin {
			if err := f.Close(); err != nil {
				p.logger().Warn("could not close the source file", zap.Error(err))
			}
		}
	}()

	f, isFile := dst.(*os.File)
	isFile = isFile && f != os.Stdout

	res, err := p.Process(ctx, src, dst)
	if isFile {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &WriteError{Path: out, Err: cerr}
		}
		if err != nil {
			// remove the generated file in case of an error
			os.Remove(out)
		}
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// pathToFile converts the source and destination paths to readable and writable files.
func pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if in == PipeName {
		src = os.Stdin
	} else {
		src, err = os.Open(in)
		if err != nil {
			return nil, nil, &DecodeError{Path: in, Err: err}
		}
	}

	closeSrc := func() {
		if f, ok := src.(*os.File); ok && f != os.Stdin {
			f.Close()
		}
	}

	// Check if the destination is a pipe name or a regular file.
	if out == PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			closeSrc()
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			closeSrc()
			return nil, nil, &WriteError{Path: out, Err: err}
		}
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			closeSrc()
			return nil, nil, &WriteError{Path: out, Err: err}
		}
	}
	return src, dst, nil
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each supported image to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan interface{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}
			if !isValidExtension(filepath.Ext(f.Name()), srcExts) {
				return nil
			}

			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// isValidExtension checks for the supported extensions, ignoring the case.
func isValidExtension(ext string, extensions []string) bool {
	return utils.Contains(extensions, strings.ToLower(ext))
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func swapExt(name string) string {
	return trimExt(name) + ".svg"
}

// iconURL returns the theme URL of an icon, relative to the destination directory.
func iconURL(op *Ops, output string) string {
	if output == "" {
		return ""
	}
	base := op.Dst
	if !isDir(base) {
		base = filepath.Dir(base)
	}
	rel, err := filepath.Rel(base, output)
	if err != nil {
		rel = filepath.Base(output)
	}
	rel = filepath.ToSlash(rel)

	if op.ThemeURL == "" {
		return rel
	}
	if u, err := url.JoinPath(op.ThemeURL, rel); err == nil {
		return u
	}
	return strings.TrimRight(op.ThemeURL, "/") + "/" + rel
}

func writeTheme(path string, theme Theme) error {
	data, err := json.MarshalIndent(theme, "", "  ")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

func (p *Processor) writeReport(path string, sum *Summary) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	f, err := os.Create(abs)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := WriteReport(f, filepath.Dir(abs), sum.Results, sum, p.Config); err != nil {
		f.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
