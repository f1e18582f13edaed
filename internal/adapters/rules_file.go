package adapters

import (
	_ "embed"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"ornithe-installer/internal/policies"
	"ornithe-installer/internal/ports"
	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

//go:embed resources/rules.yaml
var defaultRules []byte

//go:embed resources/ornithe.png
var instanceIcon []byte

// InstanceIcon returns the icon bundled into instance archives.
func InstanceIcon() []byte {
	return append([]byte(nil), instanceIcon...)
}

type RulesFileAdapter struct {
	Fs afero.Fs
}

func NewRulesFileAdapter(fs afero.Fs) RulesFileAdapter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return RulesFileAdapter{Fs: fs}
}

// Load reads the rules file at path, or the built-in rules when path is empty.
func (a RulesFileAdapter) Load(path string) (types.RulesFile, error) {
	data := defaultRules
	source := "built-in rules"
	if strings.TrimSpace(path) != "" {
		read, err := afero.ReadFile(a.Fs, path)
		if err != nil {
			return types.RulesFile{}, shared.FilesystemError("failed to read rules file "+path, err)
		}
		data = read
		source = path
	}
	var rules types.RulesFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return types.RulesFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse rules yaml: " + source).
			WithCause(err)
	}
	if err := policies.ValidateRules(rules); err != nil {
		return types.RulesFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid rules: " + source).
			WithCause(err)
	}
	return rules, nil
}

var _ ports.RulesPort = RulesFileAdapter{}
