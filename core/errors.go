package core

import "errors"

// Error kinds returned by the resolution engine. Callers should compare with errors.Is, as
// they are always wrapped with the project or file they concern.
var (
	ErrUnknownVersion      = errors.New("unknown Minecraft version")
	ErrNoStableVersion     = errors.New("no stable version available")
	ErrNoCompatibleVersion = errors.New("no compatible version")
	ErrAmbiguousQuery      = errors.New("ambiguous query")
	ErrProjectNotFound     = errors.New("project not found")
	ErrNetworkFailure      = errors.New("network failure")
	ErrMalformedRecord     = errors.New("malformed record")

	ErrNotInstalled       = errors.New("not installed")
	ErrNoPack             = errors.New("no pack found")
	ErrUpgradeBlocked     = errors.New("upgrade blocked")
	ErrUnsupportedProject = errors.New("unsupported project type")
)
