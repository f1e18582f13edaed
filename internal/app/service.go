package app

import (
	"context"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/afero"

	"ornithe-installer/internal/adapters"
	"ornithe-installer/internal/core"
	"ornithe-installer/internal/policies"
	"ornithe-installer/internal/ports"
)

const (
	DefaultMetaURL     = "https://meta.ornithemc.net"
	DefaultManifestURL = "https://skyrising.github.io/mc-versions/version_manifest.json"
)

type Service struct {
	Metadata  ports.MetadataPort
	Documents ports.DocumentPort
	Rules     ports.RulesPort
	Endpoints core.MetaEndpoints
	Fs        afero.Fs
	Icon      []byte
	GOOS      string
	Clock     func() time.Time
	Settings  Settings
}

func NewService(settings Settings) Service {
	settings = settings.withDefaults()
	client := adapters.NewMetaClientAdapter(
		adapters.WithTimeout(settings.HTTPTimeout),
		adapters.WithRetries(settings.HTTPRetries, 0),
		adapters.WithCacheTTL(settings.CacheTTL),
	)
	fs := afero.NewOsFs()
	return Service{
		Metadata:  client,
		Documents: client,
		Rules:     adapters.NewRulesFileAdapter(fs),
		Endpoints: core.NewMetaEndpoints(nil),
		Fs:        fs,
		Icon:      adapters.InstanceIcon(),
		GOOS:      runtime.GOOS,
		Clock:     time.Now,
		Settings:  settings,
	}
}

func (s Settings) withDefaults() Settings {
	if strings.TrimSpace(s.MetaURL) == "" {
		s.MetaURL = DefaultMetaURL
	}
	if strings.TrimSpace(s.ManifestURL) == "" {
		s.ManifestURL = DefaultManifestURL
	}
	return s
}

func (s Service) loadCatalog(ctx context.Context) (*core.VersionCatalog, error) {
	return core.LoadCatalog(ctx, s.Documents, s.Settings.withDefaults().ManifestURL)
}

func (s Service) loadPolicy() (policies.ProfilePolicy, error) {
	rules, err := s.Rules.Load(s.Settings.RulesFile)
	if err != nil {
		return policies.ProfilePolicy{}, err
	}
	return policies.NewProfilePolicy(rules), nil
}

func (s Service) installations() core.InstallationResolver {
	return core.NewInstallationResolver(s.Metadata, s.Endpoints, s.Settings.withDefaults().MetaURL)
}

func (s Service) synthesizer(policy ports.ProfilePolicyPort) *core.ProfileSynthesizer {
	return core.NewProfileSynthesizer(s.Metadata, s.Documents, s.Endpoints, policy, s.Settings.withDefaults().MetaURL)
}

func (s Service) fs() afero.Fs {
	if s.Fs == nil {
		return afero.NewOsFs()
	}
	return s.Fs
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}
