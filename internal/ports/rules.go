package ports

import "ornithe-installer/internal/types"

type RulesPort interface {
	Load(path string) (types.RulesFile, error)
}
