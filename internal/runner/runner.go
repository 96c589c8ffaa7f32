package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	mpb "github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
	"golang.org/x/term"

	"github.com/jvatic/opustags/internal/config"
	"github.com/jvatic/opustags/internal/edit"
	"github.com/jvatic/opustags/internal/editor"
	"github.com/jvatic/opustags/internal/locale"
	"github.com/jvatic/opustags/internal/opus"
	"github.com/jvatic/opustags/internal/utils"
)

type Option func(*runner)

// OptionStdio replaces the process's standard streams.
func OptionStdio(in io.Reader, out, errOut io.Writer) Option {
	return func(r *runner) {
		r.stdin, r.stdout, r.stderr = in, out, errOut
	}
}

// OptionEditor sets the editor used by --edit.
func OptionEditor(e *editor.Editor) Option {
	return func(r *runner) {
		r.editor = e
	}
}

type runner struct {
	opts   *config.Options
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	editor *editor.Editor
}

// Run processes every input named in opts. A failing file does not stop the
// others; the errors of all files are returned together.
func Run(ctx context.Context, opts *config.Options, ropts ...Option) error {
	r := &runner{
		opts:   opts,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range ropts {
		opt(r)
	}

	job, err := r.newJob()
	if err != nil {
		return err
	}

	var bar *mpb.Bar
	var pbgroup *mpb.Progress
	if len(opts.Paths) > 1 && !opts.Edit && isTerminal(r.stderr) {
		pbgroup = mpb.New(mpb.WithOutput(r.stderr))
		bar = pbgroup.AddBar(int64(len(opts.Paths)),
			mpb.PrependDecorators(
				decor.Name("Files", decor.WCSyncSpaceR),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
		)
	}

	var errs []error
	done := 0
	for _, path := range opts.Paths {
		if err := r.runFile(ctx, path, job); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			if ctx.Err() != nil {
				break
			}
		}
		done++
		if bar != nil {
			bar.Increment()
		}
	}
	if pbgroup != nil {
		if done < len(opts.Paths) {
			bar.Abort(false)
		}
		pbgroup.Wait()
	}
	return errors.Join(errs...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newJob translates the options into the transformation shared by all inputs.
func (r *runner) newJob() (*Job, error) {
	opts := r.opts
	job := &Job{
		Plan:       &edit.Plan{DeleteAll: opts.DeleteAll},
		Delim:      opts.Delimiter(),
		ListVendor: opts.Vendor,
		Listing:    r.stdout,
	}
	if !opts.Raw {
		job.Conv = locale.FromEnv()
	}
	fromLocale := func(s string) (string, error) {
		if job.Conv == nil {
			return s, nil
		}
		return job.Conv.FromLocale(s)
	}

	if opts.SetVendor != nil {
		vendor, err := fromLocale(*opts.SetVendor)
		if err != nil {
			return nil, err
		}
		job.Plan.Vendor = &vendor
	}

	if opts.SetAll {
		comments, err := edit.ReadComments(r.stdin, job.Delim)
		if err != nil {
			return nil, fmt.Errorf("standard input: %w", err)
		}
		job.Plan.DeleteAll = true
		for _, c := range comments {
			c, err := fromLocale(c)
			if err != nil {
				return nil, err
			}
			job.Plan.Add(c)
		}
	}

	for _, e := range opts.Edits {
		v, err := fromLocale(e.Value)
		if err != nil {
			return nil, err
		}
		switch e.Kind {
		case config.EditAdd:
			job.Plan.Add(v)
		case config.EditDelete:
			job.Plan.Remove(edit.ParseSelector(v))
		case config.EditSet:
			if err := job.Plan.Set(v); err != nil {
				return nil, fmt.Errorf("%w: %v", config.ErrBadArguments, err)
			}
		}
	}

	if opts.SetCover != "" {
		var data []byte
		var err error
		if opts.SetCover == "-" {
			data, err = utils.ReadAll(r.stdin, "standard input")
		} else {
			data, err = utils.ReadFile(opts.SetCover)
		}
		if err != nil {
			return nil, err
		}
		job.Plan.Cover = data
	}

	if opts.OutputCover != "" {
		job.SaveCover = r.saveCover
	}

	if opts.Edit {
		job.Editor = r.editor
		if job.Editor == nil {
			job.Editor = editor.New(editor.OptionDelimiter(job.Delim))
		}
	}
	return job, nil
}

func (r *runner) runFile(ctx context.Context, path string, job *Job) error {
	var in io.Reader = r.stdin
	var file *os.File
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in, file = f, f
	}
	fileJob := *job
	fileJob.Source = path

	if r.opts.ReadOnly() {
		return Process(ctx, in, nil, &fileJob)
	}
	if r.opts.Output == "-" {
		return Process(ctx, in, r.stdout, &fileJob)
	}

	dest := path
	if !r.opts.InPlace {
		dest = r.opts.Output
		exists, regular, err := utils.Stat(dest)
		if err != nil {
			return err
		}
		if exists && !regular {
			// Devices and pipes cannot be renamed over.
			out, err := os.OpenFile(dest, os.O_WRONLY, 0)
			if err != nil {
				return err
			}
			defer out.Close()
			return Process(ctx, in, out, &fileJob)
		}
		if exists && !r.opts.Overwrite {
			return fmt.Errorf("%s already exists, use -y to overwrite it", dest)
		}
	}

	partial, err := utils.CreatePartial(dest)
	if err != nil {
		return err
	}
	defer partial.Abort()
	if err := Process(ctx, in, partial, &fileJob); err != nil {
		return err
	}
	if file != nil {
		file.Close()
	}
	return partial.Commit()
}

func (r *runner) saveCover(pic *opus.Picture) error {
	if pic == nil {
		log.Warn("no cover found")
		return nil
	}
	path := r.opts.OutputCover
	if path == "-" {
		_, err := r.stdout.Write(pic.ImageData)
		return err
	}
	exists, regular, err := utils.Stat(path)
	if err != nil {
		return err
	}
	if exists && regular && !r.opts.Overwrite {
		return fmt.Errorf("%s already exists, use -y to overwrite it", path)
	}
	if exists && !regular {
		return os.WriteFile(path, pic.ImageData, 0o644)
	}
	partial, err := utils.CreatePartial(path)
	if err != nil {
		return err
	}
	defer partial.Abort()
	if _, err := partial.Write(pic.ImageData); err != nil {
		return err
	}
	return partial.Commit()
}
