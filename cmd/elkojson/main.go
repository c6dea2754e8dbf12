// Command elkojson checks and reformats files of wire values.
//
//	elkojson [-config goelko.ini] [-strict|-lenient] [-check] [-dump] files...
//
// Every value of every file (stdin when no file is given) is parsed. Syntax errors are
// reported with the file name and position. Unless -check is set, each value is written
// to stdout on its own line, with object keys quoted as configured.
package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/kr/pretty"
	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko"
	"github.com/xiaonanln/goelko/engine/jsonparse"
	"github.com/xiaonanln/goelko/engine/jsonval"
)

var args struct {
	configFile string
	strict     bool
	lenient    bool
	check      bool
	dump       bool
	verbose    bool
}

func parseArgs() {
	flag.StringVar(&args.configFile, "config", "", "set config file path")
	flag.BoolVar(&args.strict, "strict", false, "quote object keys")
	flag.BoolVar(&args.lenient, "lenient", false, "write object keys as bare symbols")
	flag.BoolVar(&args.check, "check", false, "only check syntax")
	flag.BoolVar(&args.dump, "dump", false, "dump parsed values as Go values")
	flag.BoolVar(&args.verbose, "v", false, "verbose output")
	flag.Parse()
}

func selectEncoder() jsonval.Encoder {
	if args.strict && args.lenient {
		showMsgAndQuit("-strict and -lenient are exclusive")
	}
	enc := jsonval.StrictEncoder
	if args.configFile != "" {
		goelko.Setup(args.configFile)
		enc = goelko.Encoder()
	}
	if args.strict {
		enc = jsonval.StrictEncoder
	} else if args.lenient {
		enc = jsonval.LenientEncoder
	}
	return enc
}

// formatter writes the values of one text
type formatter struct {
	enc   jsonval.Encoder
	check bool
	dump  bool
	out   io.Writer
}

// process parses every value of text. It stops at the first syntax error, which is
// returned with the name and the line and column of the error.
func (f *formatter) process(name string, text string) (int, error) {
	p := jsonparse.NewParser(text)
	n := 0
	for {
		v, err := p.Next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			if se, ok := err.(*jsonparse.SyntaxError); ok {
				line, col := lineCol(text, se.Pos)
				return n, errors.Wrapf(err, "%s:%d:%d", name, line, col)
			}
			return n, errors.Wrap(err, name)
		}
		n++
		if f.check {
			continue
		}
		if f.dump {
			fmt.Fprintf(f.out, "%# v\n", pretty.Formatter(v))
		} else {
			fmt.Fprintln(f.out, f.enc.Encode(v))
		}
	}
}

// lineCol converts a byte offset to 1 based line and column numbers
func lineCol(text string, pos int) (int, int) {
	line, col := 1, 1
	for i := 0; i < pos && i < len(text); i++ {
		if text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func main() {
	parseArgs()
	f := &formatter{
		enc:   selectEncoder(),
		check: args.check,
		dump:  args.dump,
		out:   os.Stdout,
	}

	files := flag.Args()
	failed := false
	if len(files) == 0 {
		data, err := ioutil.ReadAll(os.Stdin)
		checkErrorOrQuit(err, "read stdin failed")
		if _, err := f.process("<stdin>", string(data)); err != nil {
			fmt.Fprintf(os.Stderr, "! %v\n", err)
			failed = true
		}
	}
	for _, file := range files {
		data, err := ioutil.ReadFile(file)
		checkErrorOrQuit(err, "read file failed")
		n, err := f.process(file, string(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "! %v\n", err)
			failed = true
			continue
		}
		showMsg("%s: %d values", file, n)
	}
	if failed {
		os.Exit(1)
	}
}
