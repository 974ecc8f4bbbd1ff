package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/reqlint/reqlint/internal/logger"
	"github.com/reqlint/reqlint/internal/models"
	"github.com/reqlint/reqlint/internal/parsers"
)

// skipDirs are directory names never descended into during discovery
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	".tox":         true,
	"dist":         true,
	"build":        true,
}

// Scanner discovers and parses dependency manifests under configured paths
type Scanner struct {
	config  *models.Config
	parsers []parsers.Parser
}

// New creates a new Scanner with the given configuration
func New(config *models.Config) *Scanner {
	return &Scanner{
		config:  config,
		parsers: parsers.GetAllParsers(),
	}
}

// Result is the aggregated outcome of a scan
type Result struct {
	parsers.Result
	Files int // Number of manifests parsed
}

// Scan walks the configured paths, parses every recognized manifest and
// aggregates requirements and per-line parse errors
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	log := logger.FromContext(ctx)
	res := &Result{}

	for _, path := range s.config.Paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
		}

		if !info.IsDir() {
			matched, err := s.parseFile(log, path, res)
			if err != nil {
				return nil, err
			}
			if !matched {
				log.Warn("no parser recognizes file", zap.String("path", path))
			}
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			if d.IsDir() {
				if skipDirs[d.Name()] {
					log.Debug("skipping directory", zap.String("path", p))
					return filepath.SkipDir
				}
				return nil
			}

			// Individual file parse failures never abort the walk
			if _, err := s.parseFile(log, p, res); err != nil {
				log.Debug("skipping file", zap.String("path", p), zap.Error(err))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	log.Debug("scan complete",
		zap.Int("files", res.Files),
		zap.Int("requirements", len(res.Requirements)),
		zap.Int("parse_errors", len(res.Errors)))

	return res, nil
}

// parseFile dispatches a file to the first parser that recognizes it.
// The bool reports whether any parser claimed the file.
func (s *Scanner) parseFile(log *zap.Logger, path string, res *Result) (bool, error) {
	filename := filepath.Base(path)

	for _, parser := range s.parsers {
		if !parser.CanParse(filename) {
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return true, err
		}

		fileRes, err := parser.Parse(path, content)
		if err != nil {
			// The whole file was unreadable to its parser; surface it as
			// a positionless parse error rather than failing the scan
			res.Errors = append(res.Errors, &parsers.ParseError{File: path, Msg: err.Error()})
			res.Files++
			return true, nil
		}

		log.Debug("parsed manifest",
			zap.String("path", path),
			zap.Int("requirements", len(fileRes.Requirements)),
			zap.Int("errors", len(fileRes.Errors)))

		res.Merge(fileRes)
		res.Files++
		return true, nil
	}

	return false, nil
}
