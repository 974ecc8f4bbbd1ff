package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/reqlint/reqlint/internal/scanner"
)

var flagListFormat string

var listCmd = &cobra.Command{
	Use:   "list [paths...]",
	Short: "List every requirement declared in the scanned manifests",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&flagListFormat, "format", "f", "text", "Output format: text, json")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, log, err := newContext(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	res, err := scanner.New(cfg).Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	reqs := res.Requirements
	sort.SliceStable(reqs, func(i, j int) bool {
		if reqs[i].SourceFile != reqs[j].SourceFile {
			return reqs[i].SourceFile < reqs[j].SourceFile
		}
		return reqs[i].Line < reqs[j].Line
	})

	if flagListFormat == "json" {
		type entry struct {
			Name       string `json:"name"`
			Spec       string `json:"spec,omitempty"`
			URL        string `json:"url,omitempty"`
			Ecosystem  string `json:"ecosystem"`
			SourceFile string `json:"source_file"`
			Line       int    `json:"line,omitempty"`
		}
		entries := make([]entry, 0, len(reqs))
		for _, r := range reqs {
			entries = append(entries, entry{
				Name:       r.Name,
				Spec:       r.SpecString(),
				URL:        r.URL,
				Ecosystem:  string(r.Ecosystem),
				SourceFile: r.SourceFile,
				Line:       r.Line,
			})
		}
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	for _, r := range reqs {
		pos := r.SourceFile
		if r.Line > 0 {
			pos = fmt.Sprintf("%s:%d", r.SourceFile, r.Line)
		}
		fmt.Printf("%-10s %-40s %s\n", r.Ecosystem, r.String(), pos)
	}
	fmt.Printf("\n%d requirements in %d files\n", len(reqs), res.Files)

	return nil
}
