package npm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/nodeops/internal/domain/execution"
	"github.com/felixgeelhaar/nodeops/internal/ports"
)

const manifestName = "package.json"

var errNotObject = errors.New("manifest is not a JSON object")

// SetProjectVersion writes version into <sourceDirectory>/package.json,
// keeping every other member and their order intact.
func (r *Runner) SetProjectVersion(ctx context.Context, sourceDirectory, version string) (Result, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		r.logger.Error(ctx, "Version is required.")
		return Result{State: StateFailed}, nil
	}

	files := r.exec.Agent.Files
	dir := r.exec.ResolvePath(sourceDirectory)
	path := execution.JoinPath(r.exec.Separator(), dir, manifestName)

	exists, err := files.FileExists(ctx, path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check %s: %w", path, err)
	}
	if !exists {
		r.logger.Error(ctx, "package.json not found", ports.F("path", path))
		return Result{State: StateFailed}, nil
	}

	data, err := r.readFile(ctx, path)
	if err != nil {
		return Result{}, err
	}

	manifest, err := parseManifest(data)
	if err != nil {
		r.logger.Error(ctx, "package.json could not be deserialized.", ports.F("path", path))
		return Result{State: StateFailed}, nil
	}

	r.logger.Info(ctx, "Setting package version to "+version)
	manifest.set("version", version)

	out, err := manifest.marshal()
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := files.WriteAllText(ctx, path, out); err != nil {
		return Result{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return Result{Success: true, State: StateCompleted}, nil
}

func (r *Runner) readFile(ctx context.Context, path string) ([]byte, error) {
	rc, err := r.exec.Agent.Files.OpenFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// member is one top-level member of a manifest.
type member struct {
	key   string
	value json.RawMessage
}

// manifest is a JSON object whose member order survives a rewrite.
type manifest struct {
	members []member
}

func parseManifest(data []byte) (*manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}

	m := &manifest{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errNotObject
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		m.members = append(m.members, member{key: key, value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errNotObject
	}
	return m, nil
}

// set replaces the value of key, or inserts it after "name" (or first) when
// the manifest has no such member.
func (m *manifest) set(key, value string) {
	raw, _ := json.Marshal(value)

	for i := range m.members {
		if m.members[i].key == key {
			m.members[i].value = raw
			return
		}
	}

	at := 0
	for i, mem := range m.members {
		if mem.key == "name" {
			at = i + 1
			break
		}
	}
	m.members = append(m.members, member{})
	copy(m.members[at+1:], m.members[at:])
	m.members[at] = member{key: key, value: raw}
}

// marshal renders the manifest with two-space indentation and a trailing
// newline, the layout npm itself writes.
func (m *manifest) marshal() (string, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, mem := range m.members {
		if i > 0 {
			compact.WriteByte(',')
		}
		key, err := json.Marshal(mem.key)
		if err != nil {
			return "", err
		}
		compact.Write(key)
		compact.WriteByte(':')
		compact.Write(mem.value)
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return "", err
	}
	out.WriteByte('\n')
	return out.String(), nil
}
