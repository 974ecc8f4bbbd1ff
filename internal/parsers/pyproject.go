package parsers

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/reqlint/reqlint/internal/models"
)

// PyProjectParser parses pyproject.toml files
type PyProjectParser struct{}

// CanParse returns true for pyproject.toml files
func (p *PyProjectParser) CanParse(filename string) bool {
	return filename == "pyproject.toml"
}

// pyproject represents the structure of pyproject.toml
type pyproject struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies    map[string]interface{} `toml:"dependencies"`
			DevDependencies map[string]interface{} `toml:"dev-dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// Parse extracts requirements from pyproject.toml content. PEP 621
// dependency strings share the requirements.txt grammar, so they are
// routed through the same line parser.
func (p *PyProjectParser) Parse(filepath string, content []byte) (*Result, error) {
	var proj pyproject
	if err := toml.Unmarshal(content, &proj); err != nil {
		return nil, err
	}

	res := &Result{}

	addSpec := func(spec string) {
		req, err := ParseRequirementLine(strings.TrimSpace(spec))
		if err != nil {
			res.Errors = append(res.Errors, &ParseError{File: filepath, Msg: err.Error()})
			return
		}
		req.SourceFile = filepath
		res.Requirements = append(res.Requirements, req)
	}

	for _, dep := range proj.Project.Dependencies {
		addSpec(dep)
	}
	for _, deps := range proj.Project.OptionalDependencies {
		for _, dep := range deps {
			addSpec(dep)
		}
	}

	for name, val := range proj.Tool.Poetry.Dependencies {
		if name == "python" {
			continue
		}
		p.addPoetry(res, filepath, name, val)
	}
	for name, val := range proj.Tool.Poetry.DevDependencies {
		p.addPoetry(res, filepath, name, val)
	}

	return res, nil
}

// addPoetry converts a Poetry dependency entry. Caret and tilde ranges
// are translated into their comparison-operator equivalents.
func (p *PyProjectParser) addPoetry(res *Result, filepath, name string, val interface{}) {
	constraint := ""
	switch v := val.(type) {
	case string:
		constraint = v
	case map[string]interface{}:
		if ver, ok := v["version"].(string); ok {
			constraint = ver
		}
	}

	req := models.Requirement{
		Name:       name,
		Canonical:  models.CanonicalName(name),
		Ecosystem:  models.EcosystemPyPI,
		SourceFile: filepath,
		Raw:        name + " " + constraint,
	}

	switch {
	case constraint == "" || constraint == "*":
	case strings.HasPrefix(constraint, "^") || strings.HasPrefix(constraint, "~"):
		req.Specifiers = append(req.Specifiers, models.Specifier{
			Op:      ">=",
			Version: strings.TrimLeft(constraint, "^~"),
		})
	default:
		set, err := parseConstraintList(constraint)
		if err != nil {
			res.Errors = append(res.Errors, &ParseError{File: filepath, Msg: fmt.Sprintf("dependency %s: %v", name, err)})
			return
		}
		req.Specifiers = set
	}

	res.Requirements = append(res.Requirements, req)
}

// parseConstraintList parses a comma-separated clause list; a bare
// version is treated as an exact pin, as Poetry does.
func parseConstraintList(s string) ([]models.Specifier, error) {
	var specs []models.Specifier
	for _, clause := range strings.Split(s, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		if cm := clauseRe.FindStringSubmatch(clause); cm != nil {
			specs = append(specs, models.Specifier{Op: cm[1], Version: cm[2]})
			continue
		}
		if !strings.ContainsAny(clause, "<>=!~") {
			specs = append(specs, models.Specifier{Op: "==", Version: clause})
			continue
		}
		return nil, fmt.Errorf("invalid version constraint %q", clause)
	}
	return specs, nil
}
