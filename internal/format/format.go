package format

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Format is an output encoding
type Format string

const (
	Table Format = "table"
	JSON  Format = "json"
	YAML  Format = "yaml"
	TOML  Format = "toml"
	CSV   Format = "csv"
)

// ErrUnknownFormat is returned for names Parse does not know
var ErrUnknownFormat = errors.New("unknown output format")

// Names lists the accepted format names
func Names() []string {
	return []string{string(Table), string(JSON), string(YAML), string(TOML), string(CSV)}
}

// Parse maps a user-supplied name to a Format; "" means table
func Parse(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return Table, nil
	case Table, JSON, YAML, TOML, CSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, name, strings.Join(Names(), ", "))
	}
}

// Dataset is one result set in every shape the formats need
type Dataset struct {
	// Key names the TOML array of tables
	Key string
	// Value is encoded by the structured formats
	Value any
	// Table holds a header row then display rows
	Table [][]string
	// Records holds a header row then raw rows for CSV; nil reuses Table
	Records [][]string
}

// Write renders d to w in format f
func Write(w io.Writer, f Format, d Dataset) error {
	switch f {
	case Table, "":
		return writeTable(w, d.Table)
	case JSON:
		data, err := sonic.MarshalIndent(d.Value, "", "  ")
		if err != nil {
			return fmt.Errorf("JSON encoding error: %w", err)
		}
		return writeLine(w, data)
	case YAML:
		data, err := yaml.Marshal(d.Value)
		if err != nil {
			return fmt.Errorf("YAML encoding error: %w", err)
		}
		_, err = w.Write(data)
		return err
	case TOML:
		data, err := toml.Marshal(map[string]any{d.Key: d.Value})
		if err != nil {
			return fmt.Errorf("TOML encoding error: %w", err)
		}
		_, err = w.Write(data)
		return err
	case CSV:
		records := d.Records
		if records == nil {
			records = d.Table
		}
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(records); err != nil {
			return fmt.Errorf("CSV write error: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, string(f))
	}
}

func writeTable(w io.Writer, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writeLine(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
