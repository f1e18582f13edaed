package policies

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"ornithe-installer/internal/jsondoc"
	"ornithe-installer/internal/types"
)

// ProfilePolicy applies library substitutions, jvm argument injections and
// bundle exclusions compiled from a rules file. Earlier rules take
// precedence over later ones matching the same library.
type ProfilePolicy struct {
	Rules         types.RulesFile
	substitutions map[string]int
	jvmArguments  map[string][]string
	excludeExact  map[string]struct{}
	excludePrefix []string
}

func NewProfilePolicy(rules types.RulesFile) ProfilePolicy {
	policy := ProfilePolicy{Rules: rules}
	policy.compile()
	return policy
}

func (p *ProfilePolicy) compile() {
	p.substitutions = map[string]int{}
	p.jvmArguments = map[string][]string{}
	p.excludeExact = map[string]struct{}{}
	p.excludePrefix = nil
	for idx, rule := range p.Rules.Substitutions {
		key := coordinateKey(rule.Match.Group, rule.Match.Artifact)
		if _, ok := p.substitutions[key]; !ok {
			p.substitutions[key] = idx
		}
	}
	for _, rule := range p.Rules.JVMArguments {
		for _, version := range rule.Versions {
			key := jvmKey(rule.Loader, version)
			p.jvmArguments[key] = append(p.jvmArguments[key], rule.Argument)
		}
	}
	for _, pattern := range p.Rules.BundleExcludedLibraries {
		name, kind := parseNamePattern(pattern)
		switch kind {
		case patternExact:
			p.excludeExact[name] = struct{}{}
		case patternPrefix:
			p.excludePrefix = append(p.excludePrefix, name)
		}
	}
}

// RewriteLibraries rewrites every library whose group and artifact match a
// substitution rule. Name and url are replaced together; entries whose name
// is not a maven coordinate are left untouched. Returns the number of
// rewritten entries.
func (p ProfilePolicy) RewriteLibraries(profile *jsondoc.Value) int {
	libraries, ok := profile.Get("libraries")
	if !ok {
		return 0
	}
	rewritten := 0
	for _, library := range libraries.Items() {
		nameValue, ok := library.Get("name")
		if !ok {
			continue
		}
		name, ok := nameValue.Str()
		if !ok {
			continue
		}
		parts := strings.Split(name, ":")
		if len(parts) < 3 {
			continue
		}
		idx, ok := p.substitutions[coordinateKey(parts[0], parts[1])]
		if !ok {
			continue
		}
		replace := p.Rules.Substitutions[idx].Replace
		parts[0] = replace.Group
		parts[1] = replace.Artifact
		library.Set("name", jsondoc.String(strings.Join(parts, ":")))
		library.Set("url", jsondoc.String(replace.URL))
		rewritten++
	}
	return rewritten
}

// InjectJVMArguments appends the arguments registered for the exact loader
// version to arguments.jvm, creating the containers when absent. Arguments
// already present are not repeated.
func (p ProfilePolicy) InjectJVMArguments(profile *jsondoc.Value, loader types.LoaderType, loaderVersion string) int {
	extra := p.jvmArguments[jvmKey(loader, loaderVersion)]
	if len(extra) == 0 || !profile.IsObject() {
		return 0
	}
	arguments, ok := profile.Get("arguments")
	if !ok {
		arguments = jsondoc.Object()
		profile.Set("arguments", arguments)
	}
	if !arguments.IsObject() {
		return 0
	}
	jvm, ok := arguments.Get("jvm")
	if !ok {
		jvm = jsondoc.Array()
		arguments.Set("jvm", jvm)
	}
	if !jvm.IsArray() {
		return 0
	}
	injected := 0
	for _, argument := range extra {
		if containsString(jvm, argument) {
			continue
		}
		jvm.Append(jsondoc.String(argument))
		injected++
	}
	return injected
}

// ExcludedFromBundle reports whether a vanilla library is supplied
// separately by the bundle and must be dropped from the game patch.
func (p ProfilePolicy) ExcludedFromBundle(libraryName string) bool {
	group, _, _ := strings.Cut(libraryName, ":")
	if _, ok := p.excludeExact[group]; ok {
		return true
	}
	for _, prefix := range p.excludePrefix {
		if strings.HasPrefix(group, prefix) {
			return true
		}
	}
	return false
}

// ValidateRules reports every problem of a rules file at once.
func ValidateRules(rules types.RulesFile) error {
	var result *multierror.Error
	for idx, rule := range rules.Substitutions {
		label := ruleLabel("substitution", idx, rule.Name)
		if strings.TrimSpace(rule.Match.Group) == "" || strings.TrimSpace(rule.Match.Artifact) == "" {
			result = multierror.Append(result, fmt.Errorf("%s: match requires group and artifact", label))
		}
		if strings.TrimSpace(rule.Replace.Group) == "" || strings.TrimSpace(rule.Replace.Artifact) == "" {
			result = multierror.Append(result, fmt.Errorf("%s: replace requires group and artifact", label))
		}
		if strings.TrimSpace(rule.Replace.URL) == "" {
			result = multierror.Append(result, fmt.Errorf("%s: replace requires url", label))
		}
		if rule.Match.Group == rule.Replace.Group && rule.Match.Artifact == rule.Replace.Artifact {
			result = multierror.Append(result, fmt.Errorf("%s: replacement must differ from match", label))
		}
	}
	for idx, rule := range rules.JVMArguments {
		label := ruleLabel("jvm argument", idx, rule.Name)
		if _, err := types.ParseLoaderType(string(rule.Loader)); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", label, err))
		}
		if len(rule.Versions) == 0 {
			result = multierror.Append(result, fmt.Errorf("%s: at least one loader version is required", label))
		}
		if strings.TrimSpace(rule.Argument) == "" {
			result = multierror.Append(result, fmt.Errorf("%s: argument is required", label))
		}
	}
	for idx, pattern := range rules.BundleExcludedLibraries {
		if _, kind := parseNamePattern(pattern); kind == patternInvalid {
			result = multierror.Append(result, fmt.Errorf("bundle exclusion #%d: pattern %q is invalid", idx+1, pattern))
		}
	}
	return result.ErrorOrNil()
}

type patternKind int

const (
	patternExact patternKind = iota
	patternPrefix
	patternInvalid
)

func parseNamePattern(value string) (string, patternKind) {
	pattern := strings.TrimSpace(value)
	if pattern == "" || pattern == "*" {
		return "", patternInvalid
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.TrimSuffix(pattern, "*"), patternPrefix
	}
	return pattern, patternExact
}

func coordinateKey(group string, artifact string) string {
	return strings.TrimSpace(group) + ":" + strings.TrimSpace(artifact)
}

func jvmKey(loader types.LoaderType, version string) string {
	return string(loader) + "/" + strings.TrimSpace(version)
}

func ruleLabel(kind string, idx int, name string) string {
	if strings.TrimSpace(name) != "" {
		return fmt.Sprintf("%s rule %q", kind, name)
	}
	return fmt.Sprintf("%s rule #%d", kind, idx+1)
}

func containsString(array *jsondoc.Value, value string) bool {
	for _, item := range array.Items() {
		if existing, ok := item.Str(); ok && existing == value {
			return true
		}
	}
	return false
}
