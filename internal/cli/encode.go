package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/lexlsh/internal/lsh"
	"github.com/kailas-cloud/lexlsh/internal/vectortext"
)

// maxLineBytes bounds a single input vector line.
const maxLineBytes = 16 << 20

type encodeOptions struct {
	decimals    int
	ngrams      int
	hashCount   int
	bucketCount int
	hashSetSize int
	start       int
	seed        uint64
	noRotation  bool
	json        bool
	explain     bool
}

// encodedLine is one --json output record.
type encodedLine struct {
	Line     int      `json:"line"`
	Tokens   []string `json:"tokens"`
	Shingles int      `json:"shingles"`
}

// explainedLine is one --json --explain output record.
type explainedLine struct {
	Line      int      `json:"line"`
	Truncated []string `json:"truncated"`
	Tagged    []string `json:"tagged"`
	Shingles  []string `json:"shingles"`
	Hashed    []string `json:"hashed"`
	Tokens    []string `json:"tokens"`
}

func newEncodeCmd() *cobra.Command {
	o := &encodeOptions{}
	def := lsh.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode vectors into fingerprint tokens",
		Long: `Reads one vector per line from file, or from stdin when file is omitted or "-".
Values are separated by commas or whitespace. Values that are not decimals
are kept as keywords. Prints one line of space-separated tokens per vector.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, o, args)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&o.decimals, "decimals", "d", def.Decimals, "decimal places kept per value")
	f.IntVarP(&o.ngrams, "ngrams", "n", def.ShingleMax, "shingle size")
	f.IntVar(&o.hashCount, "hash-count", def.HashCount, "independent hash functions (each split into --bucket-count bands)")
	f.IntVar(&o.bucketCount, "bucket-count", def.BucketCount, "bands per hash function")
	f.IntVar(&o.hashSetSize, "hash-set-size", def.HashSetSize, "minimum values kept per bucket")
	f.IntVar(&o.start, "start", def.PositionStart, "leading characters stripped from each value before tagging")
	f.Uint64Var(&o.seed, "seed", def.Seed, "hash seed")
	f.BoolVar(&o.noRotation, "no-rotation", false, "disable empty bucket rotation")
	f.BoolVar(&o.json, "json", false, "output one JSON object per vector")
	f.BoolVar(&o.explain, "explain", false, "print every pipeline stage")
	return cmd
}

func (o *encodeOptions) lsh() lsh.Options {
	opts := lsh.Options{
		Decimals:      o.decimals,
		ShingleMin:    o.ngrams,
		ShingleMax:    o.ngrams,
		HashCount:     o.hashCount,
		BucketCount:   o.bucketCount,
		HashSetSize:   o.hashSetSize,
		PositionStart: o.start,
		Seed:          o.seed,
	}
	if o.noRotation {
		off := false
		opts.Rotation = &off
	}
	return opts
}

func runEncode(cmd *cobra.Command, o *encodeOptions, args []string) error {
	enc, err := lsh.NewEncoder(o.lsh())
	if err != nil {
		return fmt.Errorf("invalid encoding options: %w", err)
	}

	in, closeIn, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer closeIn()

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer func() { _ = out.Flush() }()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines, vectors, empty int
	for scanner.Scan() {
		lines++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		vectors++

		tokens := vectortext.Parse(text)
		if o.explain {
			tr := enc.Explain(tokens)
			if len(tr.Tokens) == 0 {
				empty++
			}
			err = writeTrace(out, lines, &tr, o.json)
		} else {
			res := enc.Encode(tokens)
			if res.Empty() {
				empty++
			}
			err = writeResult(out, lines, &res, o.json)
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", lines, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if empty > 0 {
		cmd.PrintErrf("%d of %d vectors produced no tokens\n", empty, vectors)
	}
	return nil
}

func openInput(cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(filepath.Clean(args[0]))
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func writeResult(w io.Writer, line int, res *lsh.Result, asJSON bool) error {
	if asJSON {
		return writeJSONLine(w, encodedLine{Line: line, Tokens: nonNil(res.Tokens), Shingles: res.Shingles})
	}
	_, err := fmt.Fprintln(w, strings.Join(res.Tokens, " "))
	return err
}

func writeTrace(w io.Writer, line int, tr *lsh.Trace, asJSON bool) error {
	if asJSON {
		return writeJSONLine(w, explainedLine{
			Line:      line,
			Truncated: nonNil(tr.Truncated),
			Tagged:    nonNil(tr.Tagged),
			Shingles:  nonNil(tr.Shingles),
			Hashed:    nonNil(tr.Hashed),
			Tokens:    nonNil(tr.Tokens),
		})
	}
	stages := []struct {
		name   string
		values []string
	}{
		{"truncated", tr.Truncated},
		{"tagged", tr.Tagged},
		{"shingles", tr.Shingles},
		{"hashed", tr.Hashed},
		{"tokens", tr.Tokens},
	}
	if _, err := fmt.Fprintf(w, "# line %d\n", line); err != nil {
		return err
	}
	for _, s := range stages {
		if _, err := fmt.Fprintf(w, "%-9s %s\n", s.name+":", strings.Join(s.values, " ")); err != nil {
			return err
		}
	}
	return nil
}

func writeJSONLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
