package persistence

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/talgya/hexisle/internal/errs"
)

//go:embed snapshot.schema.json
var snapshotSchemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func snapshotSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("snapshot.schema.json", snapshotSchemaJSON)
	})
	return schema, schemaErr
}

// Encode writes snap to w as zstd-compressed JSON.
func Encode(w io.Writer, snap Snapshot) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return enc.Close()
}

// Decode reads a zstd-compressed JSON snapshot from r and validates it
// against the save schema. Undecodable or invalid input is KindCorrupt.
func Decode(r io.Reader) (Snapshot, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return Snapshot{}, errs.WrapCorrupt("zstd reader", err)
	}
	defer dec.Close()

	raw, err := io.ReadAll(dec)
	if err != nil {
		return Snapshot{}, errs.WrapCorrupt("decompress snapshot", err)
	}
	return DecodeJSON(raw)
}

// DecodeJSON validates uncompressed snapshot JSON and decodes it.
func DecodeJSON(raw []byte) (Snapshot, error) {
	sch, err := snapshotSchema()
	if err != nil {
		return Snapshot{}, errs.WrapInternal("compile save schema", err)
	}
	var doc any
	d := json.NewDecoder(bytes.NewReader(raw))
	d.UseNumber()
	if err := d.Decode(&doc); err != nil {
		return Snapshot{}, errs.WrapCorrupt("parse snapshot", err)
	}
	if err := sch.Validate(doc); err != nil {
		return Snapshot{}, errs.WrapCorrupt("snapshot does not match schema", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, errs.WrapCorrupt("decode snapshot", err)
	}
	return snap, nil
}

// Marshal encodes snap into a compressed blob.
func Marshal(snap Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a blob produced by Marshal.
func Unmarshal(b []byte) (Snapshot, error) {
	return Decode(bytes.NewReader(b))
}

// WriteFile saves snap to path, replacing any existing file only once the
// new one is fully written.
func WriteFile(path string, snap Snapshot) error {
	blob, err := Marshal(snap)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	slog.Debug("snapshot written", "path", path, "size", humanize.Bytes(uint64(len(blob))))
	return nil
}

// ReadFile loads a snapshot written by WriteFile.
func ReadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()
	return Decode(f)
}
