package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/eleven-am/cinelog/internal/catalog"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// printer writes command results either as text or as JSON.
type printer struct {
	out  io.Writer
	json bool
}

func (o *rootOptions) printer(cmd *cobra.Command) *printer {
	return &printer{out: cmd.OutOrStdout(), json: o.jsonOutput}
}

func (p *printer) Printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *printer) Println(args ...interface{}) {
	fmt.Fprintln(p.out, args...)
}

// JSON writes v as indented JSON.
func (p *printer) JSON(v interface{}) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// Table writes aligned columns.
func (p *printer) Table(headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

// Movies prints one movie per line, optionally numbered.
func (p *printer) Movies(movies []catalog.Movie, numbered bool) {
	for i, m := range movies {
		if numbered {
			p.Printf("%d. %s\n", i+1, movieLine(m))
			continue
		}
		p.Println(movieLine(m))
	}
}

func movieLine(m catalog.Movie) string {
	line := fmt.Sprintf("%s (%d): %s", m.Title, m.Year, formatRating(m.Rating))
	if m.Note != nil && *m.Note != "" {
		line += " - " + *m.Note
	}
	return line
}

// formatRating prints ratings the way they were entered, keeping one
// decimal for whole numbers.
func formatRating(r float64) string {
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
