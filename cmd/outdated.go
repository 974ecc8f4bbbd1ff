package cmd

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reqlint/reqlint/internal/cache"
	"github.com/reqlint/reqlint/internal/clients"
	"github.com/reqlint/reqlint/internal/models"
	"github.com/reqlint/reqlint/internal/pep440"
	"github.com/reqlint/reqlint/internal/scanner"
)

var outdatedCmd = &cobra.Command{
	Use:   "outdated [paths...]",
	Short: "Report requirements whose registry has a newer release",
	Long: `outdated queries the package index for every Python requirement and
reports packages where the latest release is newer than the pinned
version, or where the declared constraints hold the latest release back.
Conda dependencies are checked against the same index by name.`,
	RunE: runOutdated,
}

func init() {
	rootCmd.AddCommand(outdatedCmd)
}

func runOutdated(cmd *cobra.Command, args []string) error {
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

	client := clients.NewPyPIClient(newCache(cfg, log), cfg.IndexURL, cfg.Timeout)

	seen := make(map[string]bool)
	outdated := 0
	checked := 0

	for _, req := range res.Requirements {
		if req.Ecosystem != models.EcosystemPyPI && req.Ecosystem != models.EcosystemConda {
			continue
		}
		if req.Canonical == "" || req.URL != "" || seen[req.Canonical] {
			continue
		}
		seen[req.Canonical] = true

		proj, err := client.Project(ctx, req.Canonical)
		if err != nil {
			log.Warn("failed to query registry",
				zap.String("package", req.Canonical), zap.Error(err))
			continue
		}
		if proj.Latest == nil {
			continue
		}
		checked++

		if report := checkOutdated(req, proj); report != "" {
			fmt.Printf("%-30s %s\n", req.Name, report)
			outdated++
		}
	}

	if outdated == 0 {
		fmt.Printf("All %d checked packages are up to date.\n", checked)
	} else {
		fmt.Printf("\n%d of %d checked packages are outdated\n", outdated, checked)
	}

	return nil
}

// checkOutdated compares one requirement against the registry's view.
// Returns an empty string when the requirement is current.
func checkOutdated(req models.Requirement, proj *clients.Project) string {
	latest := proj.Latest

	if pin, pinned := req.Pinned(); pinned {
		if pv, err := pep440.NewVersion(pin); err == nil {
			if pv.LessThan(latest) {
				return fmt.Sprintf("pinned %s, latest %s (%s:%d)", pin, latest, req.SourceFile, req.Line)
			}
			return ""
		}
		// Conda build pins like "1.26.0=py311_0" fall back to the
		// flexible semver comparison
		if cv, err := goversion.NewVersion(pin); err == nil {
			if lv, err := goversion.NewVersion(latest.String()); err == nil && cv.LessThan(lv) {
				return fmt.Sprintf("pinned %s, latest %s (%s:%d)", pin, latest, req.SourceFile, req.Line)
			}
		}
		return ""
	}

	set, err := specSet(req)
	if err != nil {
		return ""
	}
	if !set.Match(latest) && !set.Check(latest) {
		return fmt.Sprintf("constraints %q hold back latest %s (%s:%d)",
			req.SpecString(), latest, req.SourceFile, req.Line)
	}
	return ""
}

func specSet(req models.Requirement) (pep440.SpecifierSet, error) {
	var set pep440.SpecifierSet
	for _, s := range req.Specifiers {
		spec, err := pep440.ParseSpecifier(s.Op, s.Version)
		if err != nil {
			return nil, err
		}
		set = append(set, spec)
	}
	return set, nil
}

// newCache builds the registry cache, or nil when caching is disabled.
// Cache setup failure is non-fatal, matching a cold run.
func newCache(cfg *models.Config, log *zap.Logger) *cache.Cache {
	if cfg.NoCache {
		return nil
	}
	c, err := cache.New("reqlint", cfg.CacheTTL)
	if err != nil {
		log.Warn("registry cache disabled", zap.Error(err))
		return nil
	}
	return c
}
