package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Entry stores metadata about an installed project. This is written to a JSON file for each slug,
// in the folder of its content kind.
type Entry struct {
	ProjectID     string    `json:"project_id"`
	Slug          string    `json:"slug"`
	VersionID     string    `json:"version_id"`
	VersionNumber string    `json:"version_number"`
	Side          string    `json:"side"`
	File          EntryFile `json:"file"`
	// Explicit is true when the user asked for this entry, false when it only satisfies a dependency
	Explicit     bool     `json:"explicit"`
	Dependencies []string `json:"dependencies"`

	kind ContentKind
}

type EntryFile struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	SHA512   string `json:"sha512"`
	SHA1     string `json:"sha1,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// The three possible values of Side (the side that the entry is used on) are "server", "client", and "both".
const (
	ServerSide    = "server"
	ClientSide    = "client"
	UniversalSide = "both"
)

// ContentKind is the type of content an entry installs, which decides the folder it lives in
type ContentKind string

const (
	KindMod          ContentKind = "mod"
	KindResourcePack ContentKind = "resourcepack"
	KindShader       ContentKind = "shader"
)

// ContentKinds lists every kind in the order folders are read
var ContentKinds = []ContentKind{KindMod, KindResourcePack, KindShader}

// Folder returns the pack-relative folder that entries of this kind are stored in
func (k ContentKind) Folder() string {
	switch k {
	case KindResourcePack:
		return "resourcepacks"
	case KindShader:
		return "shaderpacks"
	default:
		return "mods"
	}
}

// Kind returns the content kind of the folder this entry was loaded from or will be written to
func (e *Entry) Kind() ContentKind {
	if e.kind == "" {
		return KindMod
	}
	return e.kind
}

func (e *Entry) SetKind(kind ContentKind) {
	e.kind = kind
}

// Path returns the pack-relative path of the file this entry installs
func (e *Entry) Path() string {
	return e.Kind().Folder() + "/" + e.File.Filename
}

// DependsOn reports whether projectID is one of the required dependencies of this entry
func (e *Entry) DependsOn(projectID string) bool {
	for _, v := range e.Dependencies {
		if v == projectID {
			return true
		}
	}
	return false
}

func (e *Entry) validate() error {
	var missing []string
	if e.ProjectID == "" {
		missing = append(missing, "project_id")
	}
	if e.Slug == "" {
		missing = append(missing, "slug")
	}
	if e.VersionID == "" {
		missing = append(missing, "version_id")
	}
	if e.File.URL == "" {
		missing = append(missing, "file.url")
	}
	if e.File.Filename == "" {
		missing = append(missing, "file.filename")
	}
	if e.File.SHA512 == "" {
		missing = append(missing, "file.sha512")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	switch e.Side {
	case ServerSide, ClientSide, UniversalSide:
	default:
		return fmt.Errorf("invalid side %q", e.Side)
	}
	return nil
}

// DecodeEntry parses and validates an entry file. Any mismatch with the expected shape is
// reported as ErrMalformedRecord, naming the file.
func DecodeEntry(name string, data []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, name, err)
	}
	if err := e.validate(); err != nil {
		return Entry{}, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, name, err)
	}
	if e.Dependencies == nil {
		e.Dependencies = []string{}
	}
	return e, nil
}

// Encode serialises the entry in the on-disk format
func (e *Entry) Encode() ([]byte, error) {
	if e.Dependencies == nil {
		e.Dependencies = []string{}
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
