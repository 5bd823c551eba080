// Package interfaces compiles InterfaceConfig entries into anchored
// regex matchers and checks whether a module member is part of a
// module's public interface.
package interfaces

import (
	"fmt"
	"regexp"

	"github.com/ingo-eichhorst/modguard/pkg/types"
)

// Compiled is one InterfaceConfig with its regex patterns compiled as
// anchored regexes.
type Compiled struct {
	cfg         types.InterfaceConfig
	fromRegexes []*regexp.Regexp
	exposeRegexes []*regexp.Regexp
}

// Compile builds anchored regex matchers for every configured interface.
func Compile(interfaces []types.InterfaceConfig) ([]*Compiled, error) {
	out := make([]*Compiled, 0, len(interfaces))
	for _, iface := range interfaces {
		c := &Compiled{cfg: iface}

		for _, pattern := range iface.EffectiveFromModules() {
			re, err := anchoredRegex(pattern)
			if err != nil {
				return nil, fmt.Errorf("interface from-module pattern %q: %w", pattern, err)
			}
			c.fromRegexes = append(c.fromRegexes, re)
		}

		for _, pattern := range iface.Expose {
			re, err := anchoredRegex(pattern)
			if err != nil {
				return nil, fmt.Errorf("interface expose pattern %q: %w", pattern, err)
			}
			c.exposeRegexes = append(c.exposeRegexes, re)
		}

		out = append(out, c)
	}
	return out, nil
}

func anchoredRegex(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^" + pattern + "$")
}

// matchesModule reports whether this interface applies to module_path.
func (c *Compiled) matchesModule(modulePath string) bool {
	for _, re := range c.fromRegexes {
		if re.MatchString(modulePath) {
			return true
		}
	}
	return false
}

// exposes reports whether this interface exposes member.
func (c *Compiled) exposes(member string) bool {
	for _, re := range c.exposeRegexes {
		if re.MatchString(member) {
			return true
		}
	}
	return false
}

// TypeCheckResult is the outcome of comparing a member's declared
// annotation against an interface's data_types constraint.
type TypeCheckResult string

const (
	TypeCheckPass             TypeCheckResult = "pass"
	TypeCheckDidNotMatch      TypeCheckResult = "did-not-match"
	TypeCheckUnknown          TypeCheckResult = "unknown"
)

// CheckResultKind enumerates check_member's outcome variants.
type CheckResultKind string

const (
	ResultTopLevelModule CheckResultKind = "top-level-module"
	ResultNoInterfaces   CheckResultKind = "no-interfaces"
	ResultExposed        CheckResultKind = "exposed"
	ResultNotExposed     CheckResultKind = "not-exposed"
)

// CheckResult is the outcome of CheckMember.
type CheckResult struct {
	Kind           CheckResultKind
	TypeCheckResult TypeCheckResult // only meaningful when Kind == ResultExposed
}

// TypeChecker optionally decides whether a member's declared annotation
// is compatible with an interface's data_types constraint. When absent,
// the result defaults to Unknown (treated as a pass).
type TypeChecker interface {
	Check(modulePath, member string, mode types.DataTypesMode) TypeCheckResult
}

// CheckMember checks whether a module member is exposed by any
// compiled interface: an empty member means the import targets the
// module itself (TopLevelModule); absent
// any matching interface the import is unconstrained (NoInterfaces);
// otherwise the first matching interface that exposes member determines
// the result, applying its data_types precedence.
func CheckMember(compiled []*Compiled, modulePath, member string, typeChecker TypeChecker) CheckResult {
	if member == "" {
		return CheckResult{Kind: ResultTopLevelModule}
	}

	var matched bool
	for _, c := range compiled {
		if !c.matchesModule(modulePath) {
			continue
		}
		matched = true
		if !c.exposes(member) {
			continue
		}

		result := TypeCheckUnknown
		if typeChecker != nil {
			result = typeChecker.Check(modulePath, member, c.cfg.DataTypes)
		}
		return CheckResult{Kind: ResultExposed, TypeCheckResult: result}
	}

	if !matched {
		return CheckResult{Kind: ResultNoInterfaces}
	}
	return CheckResult{Kind: ResultNotExposed}
}
