package loader

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/rivaiamin/ddl-compare/schema"
)

const snapshotVersion = 1

var ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

// snapshotFile is the on-disk form of a parsed schema. Checksum is the
// BLAKE3 hash of the YAML encoding of Schema; an empty checksum is not
// verified so snapshots can be written by hand.
type snapshotFile struct {
	Version  int            `yaml:"version"`
	Checksum string         `yaml:"checksum,omitempty"`
	Schema   *schema.Schema `yaml:"schema"`
}

// SaveSnapshot writes s as a YAML snapshot.
func SaveSnapshot(w io.Writer, s *schema.Schema) error {
	sum, err := checksum(s)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snapshotFile{Version: snapshotVersion, Checksum: sum, Schema: s}); err != nil {
		return fmt.Errorf("marshalling YAML: %w", err)
	}
	return enc.Close()
}

// LoadSnapshot decodes a snapshot written by SaveSnapshot.
func LoadSnapshot(data []byte) (*schema.Schema, error) {
	var sf snapshotFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}
	if sf.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", sf.Version)
	}
	if sf.Checksum != "" {
		sum, err := checksum(sf.Schema)
		if err != nil {
			return nil, err
		}
		if sum != sf.Checksum {
			return nil, fmt.Errorf("%w: recorded %s, computed %s", ErrChecksumMismatch, sf.Checksum, sum)
		}
	}

	if sf.Schema == nil {
		sf.Schema = schema.NewSchema()
	}
	normalize(sf.Schema)
	return sf.Schema, nil
}

// normalize fills in what a hand-written snapshot may leave out: empty
// maps, names implied by map keys and tables missing from table_order.
func normalize(s *schema.Schema) {
	if s.Tables == nil {
		s.Tables = map[string]*schema.Table{}
	}
	for name, t := range s.Tables {
		if t == nil {
			t = schema.NewTable(name)
			s.Tables[name] = t
		}
		if t.Name == "" {
			t.Name = name
		}
		if t.Columns == nil {
			t.Columns = map[string]*schema.Column{}
		}
		for colName, c := range t.Columns {
			if c == nil {
				delete(t.Columns, colName)
				continue
			}
			if c.Name == "" {
				c.Name = colName
			}
		}
	}
	s.TableOrder = s.Names()
}

func checksum(s *schema.Schema) (string, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshalling YAML: %w", err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
