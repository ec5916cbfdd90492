package store

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/msto63/kurswerk/internal/prereq"
	kwerror "github.com/msto63/kurswerk/pkg/core/error"
)

// JSONStore writes each run as a {code: tree} object to a single file.
// A later run replaces the file.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONStore creates a store writing to path
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the output file
func (s *JSONStore) Path() string {
	return s.path
}

// Save writes the run to the output file
func (s *JSONStore) Save(ctx context.Context, run *Run) error {
	if err := ctx.Err(); err != nil {
		return kwerror.Wrap(err, "save canceled").WithCode(kwerror.CodeCanceled)
	}

	data, err := Encode(run.Records)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	storageErr := func(err error, msg string) error {
		return kwerror.Wrap(err, msg).
			WithCode(kwerror.CodeStorageError).WithDetail("path", s.path).WithOperation("store.json.save")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return storageErr(err, "failed to create directory")
	}

	tmp, err := os.CreateTemp(dir, ".kurswerk-*.json")
	if err != nil {
		return storageErr(err, "failed to create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return storageErr(err, "failed to write output")
	}
	if err := tmp.Close(); err != nil {
		return storageErr(err, "failed to write output")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return storageErr(err, "failed to replace output")
	}
	return nil
}

// Load reads the tree for code from the output file. Only Code and
// Prerequisites are filled, the file carries nothing else.
func (s *JSONStore) Load(ctx context.Context, code string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, kwerror.Wrap(err, "load canceled").WithCode(kwerror.CodeCanceled)
	}

	s.mu.Lock()
	content, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(code)
		}
		return nil, kwerror.Wrap(err, "failed to read output").
			WithCode(kwerror.CodeStorageError).WithDetail("path", s.path)
	}

	var trees map[string]json.RawMessage
	if err := json.Unmarshal(content, &trees); err != nil {
		return nil, kwerror.Wrap(err, "failed to decode output").
			WithCode(kwerror.CodeInvalidFormat).WithDetail("path", s.path)
	}

	raw, ok := trees[code]
	if !ok {
		return nil, notFound(code)
	}
	tree, err := prereq.Decode(raw)
	if err != nil {
		return nil, kwerror.Wrap(err, "failed to decode prerequisites").
			WithCode(kwerror.CodeInvalidFormat).WithDetail("course", code)
	}
	return &Record{Code: code, Prerequisites: tree}, nil
}

// Close is a no-op
func (s *JSONStore) Close() error {
	return nil
}

// Encode renders records as a JSON object from course code to prerequisite
// tree, indented with two spaces, keys in record order. A code that occurs
// twice keeps its first position and its last tree.
func Encode(records []Record) ([]byte, error) {
	order := make([]string, 0, len(records))
	trees := make(map[string]prereq.Expr, len(records))
	for _, r := range records {
		if _, seen := trees[r.Code]; !seen {
			order = append(order, r.Code)
		}
		trees[r.Code] = r.Tree()
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, code := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(code)
		if err != nil {
			return nil, kwerror.Wrap(err, "failed to encode course code").WithCode(kwerror.CodeInternal)
		}
		value, err := json.Marshal(trees[code])
		if err != nil {
			return nil, kwerror.Wrap(err, "failed to encode prerequisites").
				WithCode(kwerror.CodeInternal).WithDetail("course", code)
		}

		buf.WriteString("\n  ")
		buf.Write(key)
		buf.WriteString(": ")
		if err := json.Indent(&buf, value, "  ", "  "); err != nil {
			return nil, kwerror.Wrap(err, "failed to indent prerequisites").WithCode(kwerror.CodeInternal)
		}
	}
	if len(order) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
