package modrinth

// IndexFile is the name of the manifest inside a .mrpack archive
const IndexFile = "modrinth.index.json"

type Pack struct {
	FormatVersion uint32            `json:"formatVersion"`
	Game          string            `json:"game"`
	VersionID     string            `json:"versionId"`
	Name          string            `json:"name"`
	Summary       string            `json:"summary,omitempty"`
	Files         []PackFile        `json:"files"`
	Dependencies  map[string]string `json:"dependencies"`
}

type PackFile struct {
	Path      string            `json:"path"`
	Hashes    map[string]string `json:"hashes"`
	Env       *PackFileEnv      `json:"env,omitempty"`
	Downloads []string          `json:"downloads"`
	FileSize  int64             `json:"fileSize"`
}

// PackFileEnv declares whether a file is "required", "optional" or "unsupported" on each side
type PackFileEnv struct {
	Client string `json:"client"`
	Server string `json:"server"`
}
