package enginesniff

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/enginesniff/enginesniff/internal/classify"
	"github.com/enginesniff/enginesniff/internal/report"
)

var flagIdentifyText bool

func init() {
	cmd := &cobra.Command{
		Use:   "identify [FILE|-]",
		Short: "Classify a file listing read from a file or stdin",
		Long: `Classify a listing produced elsewhere, for example by "unzip -Z1" or "find".
The input is either one path per line or a JSON document {"files": [...]}.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runIdentify,
	}
	rootCmd.AddCommand(cmd)
	cmd.Flags().BoolVar(&flagIdentifyText, "text", false, "output plain text instead of tables")
}

func runIdentify(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open listing: %w", err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read listing: %w", err)
	}
	files, err := parseListing(data)
	if err != nil {
		return err
	}

	cwd, _ := os.Getwd()
	gcfg, lcfg, err := loadConfigs(cwd)
	if err != nil {
		return err
	}
	engines, err := resolveEngines(cwd, lcfg, gcfg)
	if err != nil {
		return err
	}
	rep := classify.Evaluate(files, engines)

	format := formatTable
	switch {
	case flagJSON:
		format = formatJSON
	case flagIdentifyText:
		format = formatText
	}
	out := cmd.OutOrStdout()
	return writeReport(out, rep, format, report.PrintOptions{
		NoColor:     !colorEnabled(out, pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor)),
		Explain:     flagExplain,
		FilesListed: len(files),
	})
}

// parseListing accepts a JSON object with a files array, a bare JSON array,
// or newline separated paths. Blank lines are dropped; other lines are kept
// as written apart from a trailing carriage return.
func parseListing(data []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return []string{}, nil
	case trimmed[0] == '{':
		var doc struct {
			Files []string `json:"files"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("parse listing: %w", err)
		}
		if doc.Files == nil {
			return []string{}, nil
		}
		return doc.Files, nil
	case trimmed[0] == '[':
		var files []string
		if err := json.Unmarshal(trimmed, &files); err != nil {
			return nil, fmt.Errorf("parse listing: %w", err)
		}
		return files, nil
	}
	files := []string{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		files = append(files, line)
	}
	return files, sc.Err()
}
