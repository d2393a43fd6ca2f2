package lib

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		args       []string
		configFile string
		raw        RawArgs
		set        []string
	}{
		{[]string{}, "", RawArgs{Case: ".", OutDir: ".", WriteCellC: true}, nil},
		{[]string{"-case", "cavity", "-time", "0.1:0.5"}, "",
			RawArgs{Case: "cavity", Time: "0.1:0.5", OutDir: ".",
				WriteCellC: true},
			[]string{"case", "time"}},
		{[]string{"-latestTime", "-noZero", "-writeCellC=false"}, "",
			RawArgs{Case: ".", OutDir: ".", LatestTime: true, NoZero: true},
			[]string{"latestTime", "noZero", "writeCellC"}},
		{[]string{"-config", "x.cfg", "-region", "fluid", "-outDir", "flat"},
			"x.cfg",
			RawArgs{Case: ".", OutDir: "flat", Region: "fluid",
				WriteCellC: true},
			[]string{"outDir", "region"}},
		{[]string{"--case=cavity"}, "",
			RawArgs{Case: "cavity", OutDir: ".", WriteCellC: true},
			[]string{"case"}},
	}

	for i := range tests {
		configFile, raw, err := ParseCommandLine(tests[i].args)
		if err != nil {
			t.Errorf("%d) Got error '%s'.", i, err.Error())
			continue
		}

		if configFile != tests[i].configFile {
			t.Errorf("%d) Expected config file '%s', got '%s'.",
				i, tests[i].configFile, configFile)
		}

		set := make(map[string]bool)
		for _, name := range tests[i].set {
			set[name] = true
		}
		tests[i].raw.set = set
		if diff := cmp.Diff(tests[i].raw, *raw,
			cmp.AllowUnexported(RawArgs{})); diff != "" {
			t.Errorf("%d) RawArgs mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestParseCommandLineErrors(t *testing.T) {
	tests := [][]string{
		{"-notAFlag"},
		{"-noZero", "cavity"},
		{"-time"},
		{"-latestTime=maybe"},
	}

	for i := range tests {
		_, _, err := ParseCommandLine(tests[i])
		if err == nil {
			t.Errorf("%d) Expected error for %q.", i, tests[i])
		}
	}

	_, _, err := ParseCommandLine([]string{"-help"})
	if err != flag.ErrHelp {
		t.Errorf("Expected flag.ErrHelp for -help, got %v.", err)
	}
}

func TestPrintUsage(t *testing.T) {
	buf := &bytes.Buffer{}
	PrintUsage(buf)
	out := buf.String()

	for _, name := range []string{"-time", "-latestTime", "-noZero", "-case",
		"-region", "-outDir", "-writeCellC", "-config"} {
		if !strings.Contains(out, name) {
			t.Errorf("Expected usage to mention %s, got:\n%s", name, out)
		}
	}
}

func writeConfig(t *testing.T, text string) string {
	fname := filepath.Join(t.TempDir(), "foamtonumpy.cfg")
	if err := os.WriteFile(fname, []byte(text), 0644); err != nil {
		t.Fatal(err.Error())
	}
	return fname
}

func TestParseConfigFile(t *testing.T) {
	fname := writeConfig(t, `
; comments are allowed
[convert]
case = /data/cavity
time = 0.1:0.5
out-dir = flat
no-zero = true
write-cellc = false
`)

	raw, err := ParseConfigFile(fname)
	if err != nil {
		t.Fatalf("Got error '%s'.", err.Error())
	}

	exp := RawArgs{
		Case: "/data/cavity", Time: "0.1:0.5", OutDir: "flat", NoZero: true,
		set: map[string]bool{},
	}
	if diff := cmp.Diff(exp, *raw, cmp.AllowUnexported(RawArgs{})); diff != "" {
		t.Errorf("RawArgs mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConfigFileErrors(t *testing.T) {
	tests := []string{
		"[convert]\nthreads = 4\n",
		"[snapshot]\ncase = cavity\n",
		"[convert]\nno-zero = sometimes\n",
		"case = cavity\n",
	}

	for i := range tests {
		if _, err := ParseConfigFile(writeConfig(t, tests[i])); err == nil {
			t.Errorf("%d) Expected error for config:\n%s", i, tests[i])
		}
	}

	missing := filepath.Join(t.TempDir(), "missing.cfg")
	if _, err := ParseConfigFile(missing); err == nil {
		t.Errorf("Expected error for missing config file.")
	}
}

func TestOverwrite(t *testing.T) {
	fname := writeConfig(t, `
[convert]
case = /data/cavity
time = 0.1:0.5
out-dir = flat
no-zero = true
`)
	raw, err := ParseConfigFile(fname)
	if err != nil {
		t.Fatalf("Got error '%s'.", err.Error())
	}

	_, cmdArgs, err := ParseCommandLine([]string{
		"-time", "0.3", "-noZero=false", "-region", "fluid",
	})
	if err != nil {
		t.Fatalf("Got error '%s'.", err.Error())
	}

	raw.Overwrite(cmdArgs)

	// Values which weren't set on the command line keep the config file's
	// values, even though the command line defaults differ.
	if raw.Case != "/data/cavity" {
		t.Errorf("Expected Case = '/data/cavity', got '%s'.", raw.Case)
	}
	if raw.OutDir != "flat" {
		t.Errorf("Expected OutDir = 'flat', got '%s'.", raw.OutDir)
	}
	if raw.Time != "0.3" {
		t.Errorf("Expected Time = '0.3', got '%s'.", raw.Time)
	}
	if raw.NoZero {
		t.Errorf("Expected NoZero = false, got true.")
	}
	if raw.Region != "fluid" {
		t.Errorf("Expected Region = 'fluid', got '%s'.", raw.Region)
	}
	if !raw.WriteCellC {
		t.Errorf("Expected WriteCellC = true, got false.")
	}
}

func TestProcess(t *testing.T) {
	raw := DefaultRawArgs()
	raw.Case = "runs/cavity/"
	raw.OutDir = "flat/./out"
	raw.Time = "0.1:0.5, 1"
	raw.Region = " fluid "
	raw.NoZero = true

	args, err := raw.Process()
	if err != nil {
		t.Fatalf("Got error '%s'.", err.Error())
	}

	exp := Args{
		Case: filepath.Join("runs", "cavity"), Region: "fluid",
		Time: "0.1:0.5, 1", NoZero: true,
		OutDir: filepath.Join("flat", "out"), WriteCellC: true,
	}
	if diff := cmp.Diff(exp, *args); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessErrors(t *testing.T) {
	tests := []func(raw *RawArgs){
		func(raw *RawArgs) { raw.Case = "" },
		func(raw *RawArgs) { raw.OutDir = " " },
		func(raw *RawArgs) { raw.Region = "fluid/solid" },
		func(raw *RawArgs) { raw.Time = "0.1:banana" },
		func(raw *RawArgs) { raw.Time = "nan" },
	}

	for i := range tests {
		raw := DefaultRawArgs()
		tests[i](raw)
		if _, err := raw.Process(); err == nil {
			t.Errorf("%d) Expected error for %+v.", i, *raw)
		}
	}
}
