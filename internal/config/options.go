package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jvatic/opustags/internal/opus"
)

// ErrBadArguments reports an invalid command line.
var ErrBadArguments = errors.New("bad arguments")

// EditKind distinguishes the repeatable editing flags.
type EditKind int

const (
	EditAdd EditKind = iota
	EditDelete
	EditSet
)

func (k EditKind) String() string {
	switch k {
	case EditAdd:
		return "add"
	case EditDelete:
		return "delete"
	default:
		return "set"
	}
}

// EditArg is one occurrence of --add, --delete or --set.
type EditArg struct {
	Kind  EditKind
	Value string
}

// Options is the parsed command line.
type Options struct {
	Paths []string

	Output    string
	InPlace   bool
	Overwrite bool

	// Edits keeps --add, --delete and --set in command line order.
	Edits     []EditArg
	DeleteAll bool
	SetAll    bool
	Edit      bool

	OutputCover string
	SetCover    string
	Vendor      bool
	SetVendor   *string

	Raw  bool
	Null bool
	Help bool
}

// Delimiter returns the byte that ends each tag when tags are printed or read.
func (o *Options) Delimiter() byte {
	if o.Null {
		return 0
	}
	return '\n'
}

// ReadOnly reports whether no output is produced.
func (o *Options) ReadOnly() bool {
	return o.Output == "" && !o.InPlace
}

// Modifies reports whether a tag modification was requested.
func (o *Options) Modifies() bool {
	return len(o.Edits) > 0 || o.DeleteAll || o.SetAll || o.Edit || o.SetCover != "" || o.SetVendor != nil
}

// editValue is a pflag.Value appending to a shared, ordered list.
type editValue struct {
	kind  EditKind
	edits *[]EditArg
}

func (v *editValue) Set(s string) error {
	*v.edits = append(*v.edits, EditArg{Kind: v.kind, Value: s})
	return nil
}

func (v *editValue) Type() string {
	if v.kind == EditDelete {
		return "NAME[=VALUE]"
	}
	return "NAME=VALUE"
}

func (v *editValue) String() string { return "" }

func newFlagSet(o *Options, setVendor *string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("opustags", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false

	fs.BoolVarP(&o.Help, "help", "h", false, "print this help and exit")
	fs.StringVarP(&o.Output, "output", "o", "", "write the modified file to `FILE` (- for standard output)")
	fs.BoolVarP(&o.InPlace, "in-place", "i", false, "modify the input files in place")
	fs.BoolVarP(&o.Overwrite, "overwrite", "y", false, "overwrite the output file if it already exists")
	fs.VarP(&editValue{EditAdd, &o.Edits}, "add", "a", "add a comment")
	fs.VarP(&editValue{EditDelete, &o.Edits}, "delete", "d", "delete the comments named NAME, or exactly NAME=VALUE")
	fs.VarP(&editValue{EditSet, &o.Edits}, "set", "s", "replace the comments named NAME with NAME=VALUE")
	fs.BoolVarP(&o.DeleteAll, "delete-all", "D", false, "delete all the comments before adding new ones")
	fs.BoolVarP(&o.SetAll, "set-all", "S", false, "replace the comments with those read from standard input")
	fs.BoolVarP(&o.Edit, "edit", "e", false, "edit the comments in $EDITOR")
	fs.StringVar(&o.OutputCover, "output-cover", "", "extract the front cover to `FILE` (- for standard output)")
	fs.StringVar(&o.SetCover, "set-cover", "", "embed the picture in `FILE` as front cover (- for standard input)")
	fs.BoolVar(&o.Vendor, "vendor", false, "print the vendor string instead of the comments")
	fs.StringVar(setVendor, "set-vendor", "", "replace the vendor string")
	fs.BoolVar(&o.Raw, "raw", false, "disable the conversion between UTF-8 and the locale charset")
	fs.BoolVarP(&o.Null, "null", "z", false, "separate tags with NUL bytes instead of line feeds")
	return fs
}

// Usage prints the help text.
func Usage(w io.Writer) {
	var o Options
	var vendor string
	fs := newFlagSet(&o, &vendor)
	fmt.Fprintf(w, `Usage: opustags --help
       opustags [OPTIONS] FILE
       opustags OPTIONS -i FILE...
       opustags OPTIONS FILE -o FILE

Options:
%s
Without -o or -i, the comments of FILE are printed, one per line. Lines
starting with a tab continue the previous comment. See the man page for
the format read by --set-all and --edit.
`, fs.FlagUsages())
}

// Parse reads the command line, without the program name, and validates the
// combination of options.
func Parse(args []string) (*Options, error) {
	o := &Options{}
	var setVendor string
	fs := newFlagSet(o, &setVendor)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArguments, err)
	}
	if o.Help {
		return o, nil
	}
	if fs.Changed("set-vendor") {
		o.SetVendor = &setVendor
	}
	if fs.Changed("output") && o.Output == "" {
		return nil, fmt.Errorf("%w: the output file name cannot be empty", ErrBadArguments)
	}

	o.Paths = fs.Args()
	for i, p := range o.Paths {
		o.Paths[i] = ExpandPath(p)
	}
	o.Output = ExpandPath(o.Output)
	o.OutputCover = ExpandPath(o.OutputCover)
	o.SetCover = ExpandPath(o.SetCover)

	if err := o.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArguments, err)
	}
	return o, nil
}

func (o *Options) validate() error {
	if len(o.Paths) == 0 {
		return errors.New("no input file given")
	}
	if o.InPlace && o.Output != "" {
		return errors.New("--in-place cannot be combined with --output")
	}
	if o.Edit && (len(o.Edits) > 0 || o.DeleteAll || o.SetAll) {
		return errors.New("--edit cannot be combined with -a, -d, -s, -D or -S")
	}

	stdin := 0
	for _, p := range o.Paths {
		if p == "-" {
			stdin++
		}
	}
	if o.SetAll {
		stdin++
	}
	if o.SetCover == "-" {
		stdin++
	}
	if stdin > 1 {
		return errors.New("standard input can only be used once")
	}

	if o.Output != "" && len(o.Paths) > 1 {
		return errors.New("--output requires exactly one input file")
	}
	if o.InPlace {
		for _, p := range o.Paths {
			if p == "-" {
				return errors.New("cannot modify standard input in place")
			}
		}
	}
	if o.ReadOnly() {
		if o.Modifies() {
			return errors.New("modifying the tags requires --output or --in-place")
		}
		if len(o.Paths) > 1 {
			return errors.New("only one file can be listed at a time")
		}
	} else if o.Vendor {
		return errors.New("--vendor only applies when reading tags")
	}
	if o.Edit && o.Output == "-" {
		return errors.New("--edit cannot write to standard output")
	}
	if o.OutputCover != "" && o.OutputCover == o.Output {
		return errors.New("--output-cover and --output name the same file")
	}

	for _, e := range o.Edits {
		name, _, hasValue := strings.Cut(e.Value, "=")
		if e.Kind != EditDelete && !hasValue {
			return fmt.Errorf("--%s %q: expected NAME=VALUE", e.Kind, e.Value)
		}
		if !opus.ValidName(name) {
			return fmt.Errorf("--%s %q: invalid field name %q", e.Kind, e.Value, name)
		}
	}
	return nil
}
