package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/buger/jsonparser"

	"github.com/matzehuels/dbtlineage/pkg/errors"
)

// DefaultPath is where dbt writes the manifest, relative to the project dir.
const DefaultPath = "target/manifest.json"

// GenerateHint tells the user how to produce a missing manifest.
const GenerateHint = "Please run 'dbt docs generate' first."

// Entry is one element of the manifest's "nodes" or "sources" object.
// Fields the manifest omits, or stores with the wrong JSON type, are left empty.
// HasName and HasResourceType record whether the key was present at all, so
// an explicit "" can be told apart from a missing field.
type Entry struct {
	ID              string   // Key in the enclosing object; may be ""
	Name            string   // "name"
	ResourceType    string   // "resource_type"
	Description     string   // "description"
	DependsOn       []string // "depends_on.nodes", string items only
	HasName         bool
	HasResourceType bool
}

// Manifest is the subset of a dbt manifest needed to draw lineage.
// Nodes and Sources keep the order in which the document lists them.
type Manifest struct {
	Path        string
	ProjectName string // metadata.project_name
	DBTVersion  string // metadata.dbt_version
	Nodes       []Entry
	Sources     []Entry
}

// Len returns the number of entries in both sections.
func (m *Manifest) Len() int { return len(m.Nodes) + len(m.Sources) }

// Load reads and parses the manifest at path.
//
// A missing file yields an error with code FILE_NOT_FOUND carrying the path
// and [GenerateHint]. Invalid JSON yields INVALID_MANIFEST.
func Load(path string) (*Manifest, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(path, GenerateHint)
		}
		return nil, fmt.Errorf("stat manifest: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	m.Path = path
	return m, nil
}

// Parse decodes a manifest document. It fails only when the document is not
// valid JSON or its top-level value is not an object; malformed entries are
// decoded with empty fields instead.
func Parse(data []byte) (*Manifest, error) {
	if !json.Valid(data) {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, errInvalidJSON(data), "decode manifest")
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest must be a JSON object")
	}

	m := &Manifest{}
	m.ProjectName, _ = jsonparser.GetString(data, "metadata", "project_name")
	m.DBTVersion, _ = jsonparser.GetString(data, "metadata", "dbt_version")

	var err error
	if m.Nodes, err = section(data, "nodes"); err != nil {
		return nil, err
	}
	if m.Sources, err = section(data, "sources"); err != nil {
		return nil, err
	}
	return m, nil
}

// section walks one top-level object in document order. A missing key or a
// value of another type is an empty section.
func section(data []byte, key string) ([]Entry, error) {
	_, typ, _, err := jsonparser.Get(data, key)
	if err != nil || typ != jsonparser.Object {
		return nil, nil
	}

	var entries []Entry
	err = jsonparser.ObjectEach(data, func(k, v []byte, vt jsonparser.ValueType, _ int) error {
		entries = append(entries, parseEntry(string(k), v, vt))
		return nil
	}, key)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "walk %q", key)
	}
	return entries, nil
}

func parseEntry(id string, v []byte, vt jsonparser.ValueType) Entry {
	e := Entry{ID: id}
	if vt != jsonparser.Object {
		return e
	}
	e.Name, e.HasName = stringField(v, "name")
	e.ResourceType, e.HasResourceType = stringField(v, "resource_type")
	e.Description, _ = jsonparser.GetString(v, "description")

	_, _ = jsonparser.ArrayEach(v, func(item []byte, it jsonparser.ValueType, _ int, _ error) {
		if it != jsonparser.String {
			return
		}
		if s, err := jsonparser.ParseString(item); err == nil {
			e.DependsOn = append(e.DependsOn, s)
		}
	}, "depends_on", "nodes")
	return e
}

// stringField returns the string at key and whether key exists. Values of
// another JSON type exist but read as "".
func stringField(v []byte, key string) (string, bool) {
	_, vt, _, err := jsonparser.Get(v, key)
	if err != nil || vt == jsonparser.NotExist {
		return "", false
	}
	s, _ := jsonparser.GetString(v, key)
	return s, true
}

// errInvalidJSON recovers the decoder's message, which carries the offset.
func errInvalidJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return fmt.Errorf("invalid JSON")
}
