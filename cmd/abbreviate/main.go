// Command abbreviate rewrites the team columns of a predictions sheet with
// three-letter team codes.
//
//	abbreviate [-o out.csv] [-aliases aliases.yaml] [-max-distance 2] [data.csv]
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/osvo/club-world-cup-tracker/internal/domain/teams"
)

const defaultInput = "data.csv"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "abbreviate:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("abbreviate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		output      = fs.String("o", "", "output CSV path (default <input>_abbrev.csv next to the input)")
		aliasesPath = fs.String("aliases", "", "YAML file with extra team aliases")
		maxDistance = fs.Int("max-distance", teams.DefaultMaxDistance, "largest edit distance accepted for a fuzzy team match")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("expected at most one input file, got %d", fs.NArg())
	}

	input := defaultInput
	if fs.NArg() == 1 {
		input = fs.Arg(0)
	}
	if *output == "" {
		*output = defaultOutput(input)
	}

	opts := []teams.Option{teams.WithMaxDistance(*maxDistance)}
	if *aliasesPath != "" {
		aliases, err := readAliases(*aliasesPath)
		if err != nil {
			return err
		}
		opts = append(opts, teams.WithAliases(aliases))
	}

	if err := abbreviateFile(input, *output, teams.New(opts...)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(stdout, "Abbreviated CSV written to: %s\n", *output)
	return err
}

// defaultOutput places "<stem>_abbrev.csv" beside the input file.
func defaultOutput(input string) string {
	dir, base := filepath.Split(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+"_abbrev.csv")
}

func readAliases(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening aliases: %w", err)
	}
	defer func() { _ = f.Close() }()
	return teams.LoadAliases(f)
}

// abbreviateFile writes input to output with the home and away cells of
// every data row replaced by their codes. Every other cell, including
// surrounding whitespace and unknown team names, is copied as read. The
// output only appears once it is complete.
func abbreviateFile(input, output string, abbr *teams.Abbreviator) (err error) {
	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer func() { _ = in.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(output), "."+filepath.Base(output)+".*")
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := rewrite(in, tmp, abbr); err != nil {
		return fmt.Errorf("rewriting %s: %w", input, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	return nil
}

// rewrite copies CSV records from r to w, abbreviating the team columns
// (second and third) of every record after the header.
func rewrite(r io.Reader, w io.Writer, abbr *teams.Abbreviator) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cw := csv.NewWriter(w)

	for header := true; ; header = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if !header {
			for i := 1; i < len(rec) && i <= 2; i++ {
				if code, ok := abbr.Abbreviate(rec[i]); ok {
					rec[i] = code
				}
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
