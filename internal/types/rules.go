package types

// RulesFile is the declarative rule set applied to loader and bundle profiles.
type RulesFile struct {
	Substitutions           []SubstitutionRule `yaml:"substitutions"`
	JVMArguments            []JVMArgumentRule  `yaml:"jvm_arguments"`
	BundleExcludedLibraries []string           `yaml:"bundle_excluded_libraries"`
}

type LibraryMatch struct {
	Group    string `yaml:"group"`
	Artifact string `yaml:"artifact"`
}

type LibraryReplacement struct {
	Group    string `yaml:"group"`
	Artifact string `yaml:"artifact"`
	URL      string `yaml:"url"`
}

// SubstitutionRule rewrites a library's coordinate and repository together.
type SubstitutionRule struct {
	Name    string             `yaml:"name"`
	Match   LibraryMatch       `yaml:"match"`
	Replace LibraryReplacement `yaml:"replace"`
}

// JVMArgumentRule appends Argument to the jvm arguments of loader profiles
// whose loader version is listed exactly in Versions.
type JVMArgumentRule struct {
	Name     string     `yaml:"name"`
	Loader   LoaderType `yaml:"loader"`
	Versions []string   `yaml:"versions"`
	Argument string     `yaml:"argument"`
}
