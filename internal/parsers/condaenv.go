package parsers

import (
	"fmt"
	"strings"

	"github.com/reqlint/reqlint/internal/models"
	"gopkg.in/yaml.v3"
)

// CondaEnvParser parses conda environment.yml files
type CondaEnvParser struct{}

// CanParse returns true for conda environment files
func (p *CondaEnvParser) CanParse(filename string) bool {
	return filename == "environment.yml" || filename == "environment.yaml"
}

// condaEnv represents the structure of environment.yml. Entries in
// dependencies are either strings ("numpy=1.26.0") or a nested map for
// the pip section.
type condaEnv struct {
	Name         string        `yaml:"name"`
	Dependencies []interface{} `yaml:"dependencies"`
}

// Parse extracts requirements from environment.yml content
func (p *CondaEnvParser) Parse(filepath string, content []byte) (*Result, error) {
	var env condaEnv
	if err := yaml.Unmarshal(content, &env); err != nil {
		return nil, err
	}

	res := &Result{}

	for _, entry := range env.Dependencies {
		switch e := entry.(type) {
		case string:
			p.addConda(res, filepath, e)
		case map[string]interface{}:
			// pip subsection entries use the requirements.txt grammar
			pipDeps, ok := e["pip"].([]interface{})
			if !ok {
				continue
			}
			for _, d := range pipDeps {
				spec, ok := d.(string)
				if !ok {
					continue
				}
				req, err := ParseRequirementLine(strings.TrimSpace(spec))
				if err != nil {
					res.Errors = append(res.Errors, &ParseError{File: filepath, Msg: err.Error()})
					continue
				}
				req.SourceFile = filepath
				res.Requirements = append(res.Requirements, req)
			}
		}
	}

	return res, nil
}

// addConda parses a conda package spec: "name", "name=version" or
// "name=version=build", with channel prefixes ("conda-forge::name")
// stripped.
func (p *CondaEnvParser) addConda(res *Result, filepath, spec string) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return
	}
	if i := strings.Index(spec, "::"); i >= 0 {
		spec = spec[i+2:]
	}

	// Comparison-operator specs ("python>=3.9") share the line grammar
	if strings.ContainsAny(spec, "<>") || strings.Contains(spec, "==") {
		req, err := ParseRequirementLine(spec)
		if err != nil {
			res.Errors = append(res.Errors, &ParseError{File: filepath, Msg: fmt.Sprintf("conda dependency: %v", err)})
			return
		}
		req.Ecosystem = models.EcosystemConda
		req.SourceFile = filepath
		res.Requirements = append(res.Requirements, req)
		return
	}

	parts := strings.Split(spec, "=")
	req := models.Requirement{
		Name:       parts[0],
		Canonical:  models.CanonicalName(parts[0]),
		Ecosystem:  models.EcosystemConda,
		SourceFile: filepath,
		Raw:        spec,
	}
	if len(parts) > 1 && parts[1] != "" && parts[1] != "*" {
		req.Specifiers = append(req.Specifiers, models.Specifier{Op: "==", Version: parts[1]})
	}

	res.Requirements = append(res.Requirements, req)
}
