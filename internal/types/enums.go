package types

import (
	"fmt"
	"strings"
)

type LoaderType string

const (
	LoaderFabric LoaderType = "fabric"
	LoaderQuilt  LoaderType = "quilt"
)

// MavenUID is the component uid used for the loader inside instance bundles.
func (l LoaderType) MavenUID() string {
	switch l {
	case LoaderQuilt:
		return "org.quiltmc.quilt-loader"
	default:
		return "net.fabricmc.fabric-loader"
	}
}

func (l LoaderType) DisplayName() string {
	switch l {
	case LoaderQuilt:
		return "Quilt"
	default:
		return "Fabric"
	}
}

// MetaName is the loader segment used in metadata service paths.
func (l LoaderType) MetaName() string {
	return string(l) + "-loader"
}

func ParseLoaderType(value string) (LoaderType, error) {
	switch LoaderType(strings.ToLower(strings.TrimSpace(value))) {
	case LoaderFabric:
		return LoaderFabric, nil
	case LoaderQuilt:
		return LoaderQuilt, nil
	}
	return "", fmt.Errorf("unknown loader type %q (expected fabric or quilt)", value)
}

type LauncherType string

const (
	LauncherOfficial LauncherType = "official"
	LauncherMultiMC  LauncherType = "multimc"
)

func ParseLauncherType(value string) (LauncherType, error) {
	switch LauncherType(strings.ToLower(strings.TrimSpace(value))) {
	case LauncherOfficial, "vanilla":
		return LauncherOfficial, nil
	case LauncherMultiMC, "mmc", "prism":
		return LauncherMultiMC, nil
	}
	return "", fmt.Errorf("unknown launcher type %q (expected official or multimc)", value)
}

type GameSide string

const (
	SideClient GameSide = "client"
	SideServer GameSide = "server"
)

func ParseGameSide(value string) (GameSide, error) {
	switch GameSide(strings.ToLower(strings.TrimSpace(value))) {
	case SideClient, "":
		return SideClient, nil
	case SideServer:
		return SideServer, nil
	}
	return "", fmt.Errorf("unknown game side %q (expected client or server)", value)
}

type VersionKind string

const (
	VersionKindRelease  VersionKind = "release"
	VersionKindSnapshot VersionKind = "snapshot"
	VersionKindOldBeta  VersionKind = "old_beta"
	VersionKindOldAlpha VersionKind = "old_alpha"
)

// IsLegacy reports whether the kind is neither a release nor a snapshot.
func (k VersionKind) IsLegacy() bool {
	return k != VersionKindRelease && k != VersionKindSnapshot
}

type ProfileFormat string

const (
	ProfileFormatNative ProfileFormat = "native"
	ProfileFormatBundle ProfileFormat = "bundle"
)

func ParseProfileFormat(value string) (ProfileFormat, error) {
	switch ProfileFormat(strings.ToLower(strings.TrimSpace(value))) {
	case ProfileFormatNative, "":
		return ProfileFormatNative, nil
	case ProfileFormatBundle:
		return ProfileFormatBundle, nil
	}
	return "", fmt.Errorf("unknown profile format %q (expected native or bundle)", value)
}
