package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"
)

// Operator is a version comparison understood by the manifest.
type Operator string

const (
	// OpAny accepts every version; the package only has to be present.
	OpAny Operator = ""
	// OpAtLeast is a lower bound.
	OpAtLeast Operator = ">="
	// OpExact is an exact pin.
	OpExact Operator = "=="
)

// Requirement is one line of the manifest.
type Requirement struct {
	// Name is the PEP 503 normalized project name.
	Name string
	// Op is the comparison applied to Version.
	Op Operator
	// Version is the bound or pin as written.
	Version string
	// Line is the 1-based line number in the manifest.
	Line int

	constraint version.Constraints
}

// String renders the requirement back in manifest syntax.
func (r *Requirement) String() string {
	return r.Name + string(r.Op) + r.Version
}

// Allows reports whether v, as returned by ParseVersion, satisfies the requirement.
func (r *Requirement) Allows(v *version.Version) bool {
	if r.constraint == nil {
		return true
	}

	return r.constraint.Check(v)
}

// Manifest is a parsed requirements file.
type Manifest struct {
	Requirements []*Requirement
}

// Pins returns the exactly pinned requirements.
func (m *Manifest) Pins() []*Requirement {
	var pins []*Requirement

	for _, r := range m.Requirements {
		if r.Op == OpExact {
			pins = append(pins, r)
		}
	}

	return pins
}

var (
	// ErrSyntax is returned for lines that are not a requirement.
	ErrSyntax = errors.New("invalid requirement")
	// ErrUnsupportedOperator is returned for comparisons other than >= and ==.
	ErrUnsupportedOperator = errors.New("unsupported version operator")
	// ErrDuplicate is returned when a project is listed twice.
	ErrDuplicate = errors.New("duplicate requirement")
)

var (
	nameRe       = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)
	normalizeRe  = regexp.MustCompile(`[-_.]+`)
	operatorRe   = regexp.MustCompile(`(===|==|>=|<=|!=|~=|>|<)`)
	extrasSuffix = regexp.MustCompile(`\[[^\]]*\]$`)
)

// NormalizeName applies PEP 503 name normalization.
func NormalizeName(name string) string {
	return normalizeRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// Parse reads a manifest. Blank lines and comments are skipped; environment
// markers after ";" and extras in brackets are dropped.
func Parse(r io.Reader) (*Manifest, error) {
	var (
		m       = new(Manifest)
		seen    = make(map[string]int)
		scanner = bufio.NewScanner(r)
		lineNo  = 0
	)

	for scanner.Scan() {
		lineNo++

		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}

		req, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		if prev, ok := seen[req.Name]; ok {
			return nil, fmt.Errorf("line %d: %w: %s (first on line %d)", lineNo, ErrDuplicate, req.Name, prev)
		}

		req.Line = lineNo
		seen[req.Name] = lineNo
		m.Requirements = append(m.Requirements, req)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return m, nil
}

func stripComment(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}

	if i := strings.Index(line, ";"); i >= 0 {
		line = line[:i]
	}

	return strings.TrimSpace(line)
}

func parseLine(line string) (*Requirement, error) {
	if strings.HasPrefix(line, "-") {
		return nil, fmt.Errorf("%w: installer options are not supported: %q", ErrSyntax, line)
	}

	if strings.Contains(line, ",") {
		return nil, fmt.Errorf("%w: multiple specifiers in %q", ErrUnsupportedOperator, line)
	}

	name, op, ver := line, "", ""

	if loc := operatorRe.FindStringIndex(line); loc != nil {
		name = line[:loc[0]]
		op = line[loc[0]:loc[1]]
		ver = strings.TrimSpace(line[loc[1]:])
	}

	name = strings.TrimSpace(extrasSuffix.ReplaceAllString(strings.TrimSpace(name), ""))
	if !nameRe.MatchString(name) {
		return nil, fmt.Errorf("%w: bad project name in %q", ErrSyntax, line)
	}

	req := &Requirement{
		Name:    NormalizeName(name),
		Op:      Operator(op),
		Version: ver,
	}

	switch req.Op {
	case OpAny:
		return req, nil
	case OpAtLeast, OpExact:
	default:
		return nil, fmt.Errorf("%w: %s in %q", ErrUnsupportedOperator, op, line)
	}

	bound, err := ParseVersion(ver)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q: %w", ErrSyntax, ver, err)
	}

	constraint, err := version.NewConstraint(constraintOperator(req.Op) + " " + bound.String())
	if err != nil {
		return nil, fmt.Errorf("%w: constraint %q: %w", ErrSyntax, line, err)
	}

	req.constraint = constraint

	return req, nil
}

// constraintOperator maps manifest operators to go-version syntax.
func constraintOperator(op Operator) string {
	if op == OpExact {
		return "="
	}

	return string(op)
}

// ParseFreeze reads "name==version" lines, as produced by pip freeze, into a
// map keyed by normalized name. Editable installs and direct references are
// skipped.
func ParseFreeze(r io.Reader) (map[string]string, error) {
	var (
		resolved = make(map[string]string)
		scanner  = bufio.NewScanner(r)
		lineNo   = 0
	)

	for scanner.Scan() {
		lineNo++

		line := stripComment(scanner.Text())
		if line == "" || strings.HasPrefix(line, "-") || strings.Contains(line, " @ ") {
			continue
		}

		name, ver, ok := strings.Cut(line, "==")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(ver) == "" {
			return nil, fmt.Errorf("line %d: %w: expected name==version, got %q", lineNo, ErrSyntax, line)
		}

		resolved[NormalizeName(name)] = strings.TrimSpace(ver)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read freeze list: %w", err)
	}

	return resolved, nil
}

// Violation is a requirement that a selection does not satisfy.
type Violation struct {
	Requirement *Requirement
	// Resolved is the selected version, empty when the project is missing.
	Resolved string
	Reason   string
}

// Check compares resolved versions against every requirement. Keys of
// resolved are normalized before lookup.
func Check(m *Manifest, resolved map[string]string) []Violation {
	normalized := make(map[string]string, len(resolved))
	for name, v := range resolved {
		normalized[NormalizeName(name)] = v
	}

	var violations []Violation

	for _, req := range m.Requirements {
		raw, ok := normalized[req.Name]
		if !ok {
			violations = append(violations, Violation{Requirement: req, Reason: "not resolved"})

			continue
		}

		v, err := ParseVersion(raw)
		if err != nil {
			violations = append(violations, Violation{Requirement: req, Resolved: raw, Reason: "unparsable version"})

			continue
		}

		if !req.Allows(v) {
			violations = append(violations, Violation{
				Requirement: req,
				Resolved:    raw,
				Reason:      "does not satisfy " + string(req.Op) + req.Version,
			})
		}
	}

	return violations
}

// ErrUnsatisfiable is returned by Select when no candidate fits a requirement.
var ErrUnsatisfiable = errors.New("no version satisfies requirement")

// Select picks, for every requirement, the newest available version that
// satisfies it, returned as spelled in available. available maps project
// names to candidate versions; candidates that do not parse are ignored.
func Select(m *Manifest, available map[string][]string) (map[string]string, error) {
	candidates := make(map[string][]string, len(available))
	for name, versions := range available {
		key := NormalizeName(name)
		candidates[key] = append(candidates[key], versions...)
	}

	selected := make(map[string]string, len(m.Requirements))

	for _, req := range m.Requirements {
		var (
			fitting version.Collection
			// raw keeps the spelling of each candidate as the index lists it.
			raw = make(map[*version.Version]string)
		)

		for _, candidate := range candidates[req.Name] {
			v, err := ParseVersion(candidate)
			if err != nil {
				continue
			}

			if req.Allows(v) {
				fitting = append(fitting, v)
				raw[v] = candidate
			}
		}

		if len(fitting) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnsatisfiable, req)
		}

		sort.Stable(fitting)
		selected[req.Name] = raw[fitting[len(fitting)-1]]
	}

	return selected, nil
}
