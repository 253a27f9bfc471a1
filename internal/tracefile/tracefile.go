// Package tracefile reads and writes sample traces as CSV or YAML files.
package tracefile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/accball/internal/motion"
)

// Supported file formats.
const (
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

const csvHeader = "# timestamp_nanos,ax,ay"

type yamlDoc struct {
	Samples []yamlSample `yaml:"samples"`
}

type yamlSample struct {
	TimestampNanos int64   `yaml:"t"`
	AX             float64 `yaml:"ax"`
	AY             float64 `yaml:"ay"`
}

// FormatForPath picks a format from the file extension, defaulting to CSV.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatCSV
	}
}

// Load reads samples from path using the format implied by its extension.
func Load(path string) ([]motion.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only trace file.
			_ = cerr
		}
	}()

	var samples []motion.Sample
	switch FormatForPath(path) {
	case FormatYAML:
		samples, err = decodeYAML(file)
	default:
		samples, err = decodeCSV(file)
	}
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("trace file is empty")
	}
	return samples, nil
}

func decodeCSV(r io.Reader) ([]motion.Sample, error) {
	var samples []motion.Sample
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s, err := parseCSVLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

func parseCSVLine(line string) (motion.Sample, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return motion.Sample{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return motion.Sample{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	ax, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return motion.Sample{}, fmt.Errorf("invalid ax: %w", err)
	}
	ay, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return motion.Sample{}, fmt.Errorf("invalid ay: %w", err)
	}
	return motion.Sample{AX: ax, AY: ay, TimestampNanos: ts}, nil
}

func decodeYAML(r io.Reader) ([]motion.Sample, error) {
	var doc yamlDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode yaml: %w", err)
	}
	samples := make([]motion.Sample, len(doc.Samples))
	for i, s := range doc.Samples {
		samples[i] = motion.Sample{AX: s.AX, AY: s.AY, TimestampNanos: s.TimestampNanos}
	}
	return samples, nil
}

// Encode writes samples to w in the given format.
func Encode(w io.Writer, samples []motion.Sample, format string) error {
	switch format {
	case FormatCSV:
		bw := bufio.NewWriter(w)
		if _, err := fmt.Fprintln(bw, csvHeader); err != nil {
			return err
		}
		for _, s := range samples {
			line := strconv.FormatInt(s.TimestampNanos, 10) + "," +
				strconv.FormatFloat(s.AX, 'g', -1, 64) + "," +
				strconv.FormatFloat(s.AY, 'g', -1, 64)
			if _, err := fmt.Fprintln(bw, line); err != nil {
				return err
			}
		}
		return bw.Flush()
	case FormatYAML:
		doc := yamlDoc{Samples: make([]yamlSample, len(samples))}
		for i, s := range samples {
			doc.Samples[i] = yamlSample{TimestampNanos: s.TimestampNanos, AX: s.AX, AY: s.AY}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q (use %s or %s)", format, FormatCSV, FormatYAML)
	}
}

// Write stores samples at path, replacing any existing file atomically.
func Write(path string, samples []motion.Sample, format string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create trace dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "trace-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp trace file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := Encode(tmpFile, samples, format); err != nil {
		return fmt.Errorf("failed to write trace file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close trace file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write trace file: %w", err)
	}
	return nil
}
