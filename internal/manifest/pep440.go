package manifest

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/go-version"
)

// ErrVersion is returned for strings that are not PEP 440 versions.
var ErrVersion = errors.New("not a PEP 440 version")

// releaseWidth is the number of release segments every version is padded to.
// go-version only compares prereleases of versions with equal segment counts.
const releaseWidth = 6

var pep440Re = regexp.MustCompile(`^v?` +
	`(?:(?P<epoch>[0-9]+)!)?` +
	`(?P<release>[0-9]+(?:\.[0-9]+)*)` +
	`(?:[-_.]?(?P<pre>alpha|a|beta|b|preview|pre|c|rc)[-_.]?(?P<pren>[0-9]+)?)?` +
	`(?:-(?P<postimplicit>[0-9]+)|[-_.]?(?P<post>post|rev|r)[-_.]?(?P<postn>[0-9]+)?)?` +
	`(?:[-_.]?(?P<dev>dev)[-_.]?(?P<devn>[0-9]+)?)?` +
	`(?:\+(?P<local>[a-z0-9]+(?:[-_.][a-z0-9]+)*))?$`)

// prePhases orders the pre-release labels; a bare dev release sorts below all of them.
var prePhases = map[string]string{
	"alpha":   "1",
	"a":       "1",
	"beta":    "2",
	"b":       "2",
	"c":       "3",
	"rc":      "3",
	"pre":     "3",
	"preview": "3",
}

// ParseVersion reads a PEP 440 version into a go-version value that orders
// the same way pip does: epochs first, then the release, with dev releases
// below pre-releases below the final release below post-releases.
// Local labels are kept as metadata and do not affect ordering.
//
// The layout is "epoch.r1...r6.post" with post set to N+1 for ".postN", and a
// numeric prerelease "phase.n.post.final.dev" for anything before the final
// release or a dev build of a post-release.
func ParseVersion(raw string) (*version.Version, error) {
	m := pep440Re.FindStringSubmatch(strings.ToLower(strings.TrimSpace(raw)))
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrVersion, raw)
	}

	group := func(name string) string { return m[pep440Re.SubexpIndex(name)] }

	release := strings.Split(group("release"), ".")
	if len(release) > releaseWidth {
		return nil, fmt.Errorf("%w: %q has more than %d release segments", ErrVersion, raw, releaseWidth)
	}

	segments := make([]string, 0, releaseWidth+2)
	segments = append(segments, number(group("epoch")))

	for _, s := range release {
		segments = append(segments, number(s))
	}

	for len(segments) < releaseWidth+1 {
		segments = append(segments, "0")
	}

	post := "0"

	switch {
	case group("postimplicit") != "":
		post = increment(group("postimplicit"))
	case group("post") != "":
		post = increment(number(group("postn")))
	}

	dev := group("dev") != ""

	var pre string

	if phase := group("pre"); phase != "" {
		// A post-release of a pre-release stays below the final release.
		pre = strings.Join([]string{prePhases[phase], number(group("pren")), post, devFlag(dev), number(group("devn"))}, ".")
		post = "0"
	} else if dev {
		pre = strings.Join([]string{"0", "0", "0", "0", number(group("devn"))}, ".")
	}

	canonical := strings.Join(append(segments, post), ".")
	if pre != "" {
		canonical += "-" + pre
	}

	if local := group("local"); local != "" {
		canonical += "+" + strings.NewReplacer("-", ".", "_", ".").Replace(local)
	}

	v, err := version.NewVersion(canonical)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrVersion, raw, err)
	}

	return v, nil
}

// devFlag sorts dev builds of a pre-release below the pre-release itself.
func devFlag(dev bool) string {
	if dev {
		return "0"
	}

	return "1"
}

// number drops leading zeros. go-version never treats prerelease parts "01"
// and "1" as equal.
func number(s string) string {
	if s == "" {
		return "0"
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return s
	}

	return strconv.FormatUint(n, 10)
}

func increment(s string) string {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return s
	}

	return strconv.FormatUint(n+1, 10)
}
