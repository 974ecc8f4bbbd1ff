package parsers

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/reqlint/reqlint/internal/models"
)

// RequirementsParser parses pip requirements files: one dependency per
// line, optional comparison-operator constraints, "#" comments (full-line
// and inline), direct download URLs, option lines and includes.
type RequirementsParser struct{}

// CanParse returns true for requirements.txt-style filenames
func (p *RequirementsParser) CanParse(filename string) bool {
	if filename == "requirements.txt" {
		return true
	}
	if strings.HasSuffix(filename, "-requirements.txt") || strings.HasSuffix(filename, "_requirements.txt") {
		return true
	}
	return strings.HasPrefix(filename, "requirements") && strings.HasSuffix(filename, ".txt")
}

// Parse extracts requirements from requirements.txt content. Malformed
// lines are reported as Result.Errors; parsing never stops at one.
func (p *RequirementsParser) Parse(filepath string, content []byte) (*Result, error) {
	visited := map[string]bool{cleanPath(filepath): true}
	return p.parse(filepath, content, visited), nil
}

func (p *RequirementsParser) parse(path string, content []byte, visited map[string]bool) *Result {
	res := &Result{}

	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")

	for i := 0; i < len(lines); i++ {
		start := i
		logical := lines[i]
		// Backslash continuations join into one logical line
		for strings.HasSuffix(strings.TrimRight(logical, " \t"), `\`) && i+1 < len(lines) {
			logical = strings.TrimSuffix(strings.TrimRight(logical, " \t"), `\`) + lines[i+1]
			i++
		}
		p.parseLine(path, start+1, logical, res, visited)
	}

	return res
}

func (p *RequirementsParser) parseLine(path string, lineNum int, text string, res *Result, visited map[string]bool) {
	line := strings.TrimSpace(stripComment(text))
	if line == "" {
		return
	}

	if strings.HasPrefix(line, "-") {
		p.parseOption(path, lineNum, line, res, visited)
		return
	}

	req, err := ParseRequirementLine(line)
	if err != nil {
		res.Errors = append(res.Errors, &ParseError{File: path, Line: lineNum, Msg: err.Error()})
		return
	}
	req.SourceFile = path
	req.Line = lineNum
	res.Requirements = append(res.Requirements, req)
}

// parseOption handles global option lines such as "-r file" and "-e target".
// Options the linter has no use for are skipped without complaint, like
// pip itself tolerates unknown requirement-file content from newer versions.
func (p *RequirementsParser) parseOption(path string, lineNum int, line string, res *Result, visited map[string]bool) {
	fields := strings.Fields(line)
	opt := fields[0]
	var arg string
	if i := strings.Index(opt, "="); i >= 0 {
		arg = opt[i+1:]
		opt = opt[:i]
	} else if len(fields) > 1 {
		arg = fields[1]
	}

	switch opt {
	case "-r", "--requirement":
		p.include(path, lineNum, arg, res, visited)
	case "-e", "--editable":
		if arg == "" {
			res.Errors = append(res.Errors, &ParseError{File: path, Line: lineNum, Msg: "editable requirement is missing a target"})
			return
		}
		req := models.Requirement{
			Name:       eggName(arg),
			URL:        arg,
			Editable:   true,
			Ecosystem:  models.EcosystemPyPI,
			SourceFile: path,
			Line:       lineNum,
			Raw:        line,
		}
		req.Canonical = models.CanonicalName(req.Name)
		res.Requirements = append(res.Requirements, req)
	}
}

// include recursively parses a file referenced by -r/--requirement,
// resolved relative to the including file
func (p *RequirementsParser) include(path string, lineNum int, arg string, res *Result, visited map[string]bool) {
	if arg == "" {
		res.Errors = append(res.Errors, &ParseError{File: path, Line: lineNum, Msg: "include is missing a file argument"})
		return
	}

	target := arg
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), arg)
	}

	clean := cleanPath(target)
	if visited[clean] {
		res.Errors = append(res.Errors, &ParseError{File: path, Line: lineNum, Msg: "circular include of " + arg})
		return
	}
	visited[clean] = true

	data, err := os.ReadFile(target)
	if err != nil {
		res.Errors = append(res.Errors, &ParseError{File: path, Line: lineNum, Msg: "cannot read included file " + arg})
		return
	}

	res.Merge(p.parse(target, data, visited))
}

func cleanPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// SplitComment splits a line into its requirement text and inline
// comment. A "#" starts a comment at the beginning of a line or after
// whitespace; "#" inside a URL fragment (e.g. "#egg=name") is preserved.
func SplitComment(s string) (code, comment string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '#' && (i == 0 || s[i-1] == ' ' || s[i-1] == '\t') {
			return s[:i], s[i:]
		}
	}
	return s, ""
}

func stripComment(s string) string {
	code, _ := SplitComment(s)
	return code
}

var (
	schemeRe    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	directRefRe = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(?:\[([^\]]*)\])?\s*@\s*(\S+)$`)
	nameRe      = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)\s*(?:\[([^\]]*)\])?\s*(.*)$`)
	clauseRe    = regexp.MustCompile(`^(===|==|!=|~=|<=|>=|<|>)\s*([A-Za-z0-9*+!._-]+)$`)
)

// ParseRequirementLine parses one logical requirement line: a bare URL,
// a PEP 508 direct reference "name @ url", or "name[extras]" followed by
// comma-separated specifier clauses and an optional "; marker".
func ParseRequirementLine(line string) (models.Requirement, error) {
	req := models.Requirement{Ecosystem: models.EcosystemPyPI, Raw: line}

	// Bare URL overriding registry resolution, name recovered from the
	// egg fragment when present
	if schemeRe.MatchString(line) {
		req.URL = line
		req.Name = eggName(line)
		req.Canonical = models.CanonicalName(req.Name)
		return req, nil
	}

	rest := line
	if i := strings.Index(rest, ";"); i >= 0 {
		req.Marker = strings.TrimSpace(rest[i+1:])
		rest = strings.TrimSpace(rest[:i])
		if req.Marker == "" {
			return req, fmt.Errorf("empty environment marker")
		}
	}

	if m := directRefRe.FindStringSubmatch(rest); m != nil {
		req.Name = m[1]
		req.Canonical = models.CanonicalName(m[1])
		req.Extras = splitExtras(m[2])
		req.URL = m[3]
		return req, nil
	}

	m := nameRe.FindStringSubmatch(rest)
	if m == nil {
		return req, fmt.Errorf("cannot parse requirement %q", rest)
	}
	req.Name = m[1]
	req.Canonical = models.CanonicalName(m[1])
	req.Extras = splitExtras(m[2])

	specText := strings.TrimSpace(m[3])
	specText = strings.TrimPrefix(specText, "(")
	specText = strings.TrimSuffix(specText, ")")
	specText = strings.TrimSpace(specText)
	if specText == "" {
		return req, nil
	}

	for _, clause := range strings.Split(specText, ",") {
		clause = strings.TrimSpace(clause)
		cm := clauseRe.FindStringSubmatch(clause)
		if cm == nil {
			return req, fmt.Errorf("invalid version specifier %q", clause)
		}
		req.Specifiers = append(req.Specifiers, models.Specifier{Op: cm[1], Version: cm[2]})
	}

	return req, nil
}

func splitExtras(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var extras []string
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			extras = append(extras, e)
		}
	}
	return extras
}

// eggName extracts the project name from a URL's #egg= fragment
func eggName(url string) string {
	for _, marker := range []string{"#egg=", "&egg="} {
		if i := strings.Index(url, marker); i >= 0 {
			name := url[i+len(marker):]
			if j := strings.IndexAny(name, "&#"); j >= 0 {
				name = name[:j]
			}
			return name
		}
	}
	return ""
}

// Render rewrites a requirement as an exact pin, preserving extras and
// the environment marker. Used when pinning a requirements file in place.
func Render(req models.Requirement, version string) string {
	var b strings.Builder
	b.WriteString(req.Name)
	if len(req.Extras) > 0 {
		b.WriteString("[" + strings.Join(req.Extras, ",") + "]")
	}
	b.WriteString("==" + version)
	if req.Marker != "" {
		b.WriteString(" ; " + req.Marker)
	}
	return b.String()
}
