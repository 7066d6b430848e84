package common

const (
	// ModuleFileExtension is the extension of a serialized module on disk.
	ModuleFileExtension = ".chimod"
	// WorkspaceMarkerFile names the file that marks a workspace root.
	WorkspaceMarkerFile = ".chigraphworkspace"
	// WorkspaceConfigFile is the optional TOML sidecar holding workspace settings.
	WorkspaceConfigFile = "chi-workspace.toml"
	// ChigraphVersion is the version string printed by `chi version`.
	ChigraphVersion = "0.1.0"
	// LangModuleName is the full name of the pre-installed primitives module.
	LangModuleName = "lang"
)
