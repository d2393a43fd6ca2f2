package lib

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/foamtonumpy/lib/format"
)

// RawArgs stores the unprocessed values which the user assigned to each config
// variable. The gcfg tags give the names used in the [convert] section of
// config files.
type RawArgs struct {
	Case       string `gcfg:"case"`
	Time       string `gcfg:"time"`
	OutDir     string `gcfg:"out-dir"`
	Region     string `gcfg:"region"`
	LatestTime bool   `gcfg:"latest-time"`
	NoZero     bool   `gcfg:"no-zero"`
	WriteCellC bool   `gcfg:"write-cellc"`

	// set holds the command line names of the variables which were set
	// explicitly.
	set map[string]bool
}

// Args stores configuration information. It is a post-processed version of
// RawArgs.
type Args struct {
	Case, Region string
	Time         string
	LatestTime   bool
	NoZero       bool
	OutDir       string
	WriteCellC   bool
}

// configFile is the layout of a config file.
type configFile struct {
	Convert RawArgs
}

// DefaultRawArgs returns the values used for variables that the user never
// sets.
func DefaultRawArgs() *RawArgs {
	return &RawArgs{
		Case: ".", OutDir: ".", WriteCellC: true, set: map[string]bool{},
	}
}

// newFlagSet returns the command line flags, bound to the fields of raw and
// to configFile.
func newFlagSet(raw *RawArgs, configFile *string) *flag.FlagSet {
	fs := flag.NewFlagSet("foamtonumpy", flag.ContinueOnError)
	fs.StringVar(&raw.Time, "time", raw.Time,
		"Times to convert, e.g. '0.1', '0.1:0.5', ':0.5', '0.1,0.3 1'. "+
			"Every time is converted by default.")
	fs.BoolVar(&raw.LatestTime, "latestTime", raw.LatestTime,
		"Also convert the latest time.")
	fs.BoolVar(&raw.NoZero, "noZero", raw.NoZero,
		"Don't convert time 0 unless it's asked for by -time.")
	fs.StringVar(&raw.Case, "case", raw.Case, "The case directory.")
	fs.StringVar(&raw.Region, "region", raw.Region,
		"The mesh region. The default region is used if not set.")
	fs.StringVar(&raw.OutDir, "outDir", raw.OutDir,
		"The directory the .bin files are written to.")
	fs.BoolVar(&raw.WriteCellC, "writeCellC", raw.WriteCellC,
		"Write the cellC field into each converted time directory.")
	fs.StringVar(configFile, "config", *configFile,
		"A config file with a [convert] section. Command line flags "+
			"override its values.")
	return fs
}

// ParseCommandLine parses command line arguments (not including the program
// name) and returns the name of the config file, if any, and the arguments
// which were set. Options are written OpenFOAM-style, with a single dash:
// $ foamtonumpy [-case <dir>] [-time <times>] [-latestTime] ...
// flag.ErrHelp is returned if -help or -h was given.
func ParseCommandLine(args []string) (configFile string, raw *RawArgs, err error) {
	raw = DefaultRawArgs()
	fs := newFlagSet(raw, &configFile)
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("Could not parse the command line. %s",
			err.Error())
	}
	if fs.NArg() != 0 {
		return "", nil, fmt.Errorf("Unexpected arguments '%s'. All options "+
			"must be given as flags, e.g. -case %s.",
			strings.Join(fs.Args(), " "), fs.Arg(0))
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name != "config" {
			raw.set[f.Name] = true
		}
	})

	return configFile, raw, nil
}

// PrintUsage writes the list of command line flags to w.
func PrintUsage(w io.Writer) {
	configFile := ""
	fs := newFlagSet(DefaultRawArgs(), &configFile)
	fs.SetOutput(w)
	fmt.Fprintf(w, "Usage of foamtonumpy (version %s):\n", Version)
	fs.PrintDefaults()
}

// ParseConfigFile parses arguments from a config file. Variables missing
// from the file keep their default values.
func ParseConfigFile(fileName string) (*RawArgs, error) {
	cfg := &configFile{Convert: *DefaultRawArgs()}
	if err := gcfg.ReadFileInto(cfg, fileName); err != nil {
		return nil, fmt.Errorf("Could not parse the config file %s. %s",
			fileName, err.Error())
	}
	raw := &cfg.Convert
	raw.set = map[string]bool{}
	return raw, nil
}

// fields returns pointers to each variable in raw, keyed by command line
// name.
func (raw *RawArgs) fields() map[string]interface{} {
	return map[string]interface{}{
		"case": &raw.Case, "time": &raw.Time, "outDir": &raw.OutDir,
		"region": &raw.Region, "latestTime": &raw.LatestTime,
		"noZero": &raw.NoZero, "writeCellC": &raw.WriteCellC,
	}
}

// Overwrite overwrites arguments in arg1 which have been explicitly set in
// arg2.
func (arg1 *RawArgs) Overwrite(arg2 *RawArgs) {
	dst, src := arg1.fields(), arg2.fields()
	if arg1.set == nil {
		arg1.set = map[string]bool{}
	}

	for name := range arg2.set {
		switch p := src[name].(type) {
		case *string:
			*dst[name].(*string) = *p
		case *bool:
			*dst[name].(*bool) = *p
		default:
			panic(fmt.Sprintf("Internal error: unknown variable '%s' set in "+
				"RawArgs.", name))
		}
		arg1.set[name] = true
	}
}

// Process converts the raw user input to a format which is more useful for
// internal functions. Very simple validation will be done here, but nothing
// which requires interacting with external files.
func (raw *RawArgs) Process() (*Args, error) {
	if strings.TrimSpace(raw.Case) == "" {
		return nil, fmt.Errorf("The case directory is empty.")
	} else if strings.TrimSpace(raw.OutDir) == "" {
		return nil, fmt.Errorf("The output directory is empty.")
	} else if strings.ContainsAny(raw.Region, `/\`) {
		return nil, fmt.Errorf("The region '%s' contains a path separator. "+
			"Regions are names, not paths.", raw.Region)
	}

	if err := format.CheckSelection(raw.Time); err != nil {
		return nil, err
	}

	return &Args{
		Case:       filepath.Clean(raw.Case),
		Region:     strings.TrimSpace(raw.Region),
		Time:       raw.Time,
		LatestTime: raw.LatestTime,
		NoZero:     raw.NoZero,
		OutDir:     filepath.Clean(raw.OutDir),
		WriteCellC: raw.WriteCellC,
	}, nil
}
