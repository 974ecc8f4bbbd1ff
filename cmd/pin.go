package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reqlint/reqlint/internal/clients"
	"github.com/reqlint/reqlint/internal/parsers"
	"github.com/reqlint/reqlint/internal/pep440"
)

var flagDryRun bool

var pinCmd = &cobra.Command{
	Use:   "pin <requirements-file>",
	Short: "Pin every requirement in a requirements file to an exact version",
	Long: `pin rewrites a requirements.txt, replacing each unpinned requirement
with an exact "==" pin chosen as the newest release on the package index
that satisfies the declared constraints. Comments, option lines and
already-pinned requirements are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runPin,
}

func init() {
	rootCmd.AddCommand(pinCmd)
	pinCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print the pinned file instead of writing it")
}

func runPin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	ctx, log, err := newContext(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	parser := &parsers.RequirementsParser{}
	res, err := parser.Parse(path, content)
	if err != nil {
		return err
	}
	if len(res.Errors) > 0 {
		for _, perr := range res.Errors {
			fmt.Fprintln(os.Stderr, perr.Error())
		}
		return fmt.Errorf("%s has %d parse errors, fix them before pinning", path, len(res.Errors))
	}

	client := clients.NewPyPIClient(newCache(cfg, log), cfg.IndexURL, cfg.Timeout)

	lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
	pinned := 0

	for _, req := range res.Requirements {
		// Requirements pulled in through -r includes belong to other files
		if req.SourceFile != path {
			continue
		}
		if req.URL != "" || req.Editable || req.Line < 1 || req.Line > len(lines) {
			continue
		}
		if _, already := req.Pinned(); already {
			continue
		}

		orig := lines[req.Line-1]
		if strings.HasSuffix(strings.TrimRight(orig, " \t"), `\`) {
			log.Warn("skipping requirement spanning multiple lines",
				zap.String("package", req.Name), zap.Int("line", req.Line))
			continue
		}

		set, err := specSet(req)
		if err != nil {
			log.Warn("skipping requirement with invalid constraints",
				zap.String("package", req.Name), zap.Error(err))
			continue
		}

		proj, err := client.Project(ctx, req.Canonical)
		if err != nil {
			log.Warn("failed to query registry",
				zap.String("package", req.Name), zap.Error(err))
			continue
		}

		chosen := selectVersion(proj.Versions, set)
		if chosen == nil {
			log.Warn("no release satisfies constraints",
				zap.String("package", req.Name), zap.String("constraints", req.SpecString()))
			continue
		}

		_, comment := parsers.SplitComment(orig)
		newLine := parsers.Render(req, chosen.String())
		if comment != "" {
			newLine += "  " + comment
		}
		lines[req.Line-1] = newLine
		pinned++

		log.Debug("pinned requirement",
			zap.String("package", req.Name), zap.String("version", chosen.String()))
	}

	output := strings.Join(lines, "\n")

	if flagDryRun {
		fmt.Print(output)
		return nil
	}

	if err := os.WriteFile(path, []byte(output), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "Pinned %d requirements in %s\n", pinned, path)

	return nil
}

// selectVersion picks the newest version satisfying the constraint set,
// considering pre-releases only when no final release qualifies and the
// set names one.
func selectVersion(versions []*pep440.Version, set pep440.SpecifierSet) *pep440.Version {
	for i := len(versions) - 1; i >= 0; i-- {
		if set.Match(versions[i]) {
			return versions[i]
		}
	}
	for i := len(versions) - 1; i >= 0; i-- {
		if set.Check(versions[i]) {
			return versions[i]
		}
	}
	return nil
}
