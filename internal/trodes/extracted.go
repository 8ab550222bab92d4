package trodes

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"labnwb/internal/services"
)

const (
	startSettings = "<Start settings>"
	endSettings   = "<End settings>"
)

// Field describes one column of an extracted data file record.
type Field struct {
	Name   string
	Type   string
	Repeat int
}

func (f Field) size() int {
	return scalarSize(f.Type) * f.Repeat
}

// ExtractedFile is the decoded contents of a Trodes extracted .dat file:
// the settings block plus the packed record region.
type ExtractedFile struct {
	Settings map[string]string
	Fields   []Field

	recordSize int
	records    []byte
}

// ReadExtractedFile reads a Trodes extracted data file (.dat).
func ReadExtractedFile(path string) (*ExtractedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrMissingInput, "trodes", "open", path, err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	first, err := readSettingsLine(reader)
	if err != nil || first != startSettings {
		return nil, services.Wrap(services.ErrCorruptInput, "trodes", "settings",
			fmt.Sprintf("%s: expected %q header", path, startSettings), err)
	}

	settings := make(map[string]string)
	for {
		line, err := readSettingsLine(reader)
		if err != nil {
			return nil, services.Wrap(services.ErrCorruptInput, "trodes", "settings",
				fmt.Sprintf("%s: unterminated settings block", path), err)
		}
		if line == endSettings {
			break
		}
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, services.Wrap(services.ErrCorruptInput, "trodes", "settings",
				fmt.Sprintf("%s: malformed settings line %q", path, line), nil)
		}
		settings[strings.ToLower(key)] = value
	}

	fieldSpec, ok := settings["fields"]
	if !ok {
		return nil, services.Wrap(services.ErrCorruptInput, "trodes", "settings",
			fmt.Sprintf("%s: settings block has no fields entry", path), nil)
	}
	fields, err := ParseFields(fieldSpec)
	if err != nil {
		return nil, services.Wrap(services.ErrCorruptInput, "trodes", "fields", path, err)
	}

	recordSize := 0
	for _, f := range fields {
		recordSize += f.size()
	}

	records, err := io.ReadAll(reader)
	if err != nil {
		return nil, services.Wrap(services.ErrCorruptInput, "trodes", "read", path, err)
	}
	if recordSize > 0 && len(records)%recordSize != 0 {
		return nil, services.Wrap(services.ErrCorruptInput, "trodes", "records",
			fmt.Sprintf("%s: %d data bytes is not a multiple of record size %d", path, len(records), recordSize), nil)
	}

	return &ExtractedFile{
		Settings:   settings,
		Fields:     fields,
		recordSize: recordSize,
		records:    records,
	}, nil
}

// readSettingsLine reads one ASCII line, tolerating \r\n endings.
func readSettingsLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var fieldSplitRE = regexp.MustCompile(`><|>|<`)

// ParseFields parses a Trodes field specification such as
// "<time uint32><state uint8>" into its typed columns.
func ParseFields(spec string) ([]Field, error) {
	cleaned := strings.TrimSpace(fieldSplitRE.ReplaceAllString(spec, " "))
	if cleaned == "" {
		return nil, fmt.Errorf("empty field specification")
	}
	tokens := strings.Fields(cleaned)
	if len(tokens)%2 != 0 {
		return nil, fmt.Errorf("field specification %q has odd token count", spec)
	}

	fields := make([]Field, 0, len(tokens)/2)
	for i := 0; i < len(tokens); i += 2 {
		name := tokens[i]
		typeToken := tokens[i+1]
		repeat := 1
		ftype := typeToken
		// A repeat may be written num*type or type*num.
		if left, right, ok := strings.Cut(typeToken, "*"); ok {
			if n, err := strconv.Atoi(left); err == nil {
				repeat, ftype = n, right
			} else if n, err := strconv.Atoi(right); err == nil {
				repeat, ftype = n, left
			} else {
				return nil, fmt.Errorf("malformed repeat in field type %q", typeToken)
			}
		}
		if scalarSize(ftype) == 0 {
			return nil, fmt.Errorf("%s is not a valid field type", ftype)
		}
		if repeat < 1 {
			return nil, fmt.Errorf("field %s has non-positive repeat %d", name, repeat)
		}
		fields = append(fields, Field{Name: name, Type: ftype, Repeat: repeat})
	}
	return fields, nil
}

func scalarSize(ftype string) int {
	switch ftype {
	case "uint8", "int8":
		return 1
	case "uint16", "int16":
		return 2
	case "uint32", "int32", "float32":
		return 4
	case "uint64", "int64", "float64":
		return 8
	default:
		return 0
	}
}

// NumRecords returns the number of packed records in the file.
func (f *ExtractedFile) NumRecords() int {
	if f.recordSize == 0 {
		return 0
	}
	return len(f.records) / f.recordSize
}

// Clockrate returns the acquisition clock rate declared in the settings
// block, in Hz.
func (f *ExtractedFile) Clockrate() (float64, error) {
	raw, ok := f.Settings["clockrate"]
	if !ok {
		return 0, fmt.Errorf("settings block has no clockrate")
	}
	rate, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || rate <= 0 {
		return 0, fmt.Errorf("invalid clockrate %q", raw)
	}
	return rate, nil
}

// ID returns the channel identifier declared in the settings block, if any.
func (f *ExtractedFile) ID() string {
	return f.Settings["id"]
}

func (f *ExtractedFile) fieldOffset(name string) (Field, int, error) {
	offset := 0
	for _, field := range f.Fields {
		if field.Name == name {
			return field, offset, nil
		}
		offset += field.size()
	}
	return Field{}, 0, fmt.Errorf("no field named %q", name)
}

// Int64Column decodes an integer field (any width, first element of a
// repeated field) into int64 values.
func (f *ExtractedFile) Int64Column(name string) ([]int64, error) {
	field, offset, err := f.fieldOffset(name)
	if err != nil {
		return nil, err
	}
	n := f.NumRecords()
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		raw := f.records[i*f.recordSize+offset:]
		switch field.Type {
		case "uint8":
			out[i] = int64(raw[0])
		case "int8":
			out[i] = int64(int8(raw[0]))
		case "uint16":
			out[i] = int64(binary.LittleEndian.Uint16(raw))
		case "int16":
			out[i] = int64(int16(binary.LittleEndian.Uint16(raw)))
		case "uint32":
			out[i] = int64(binary.LittleEndian.Uint32(raw))
		case "int32":
			out[i] = int64(int32(binary.LittleEndian.Uint32(raw)))
		case "uint64":
			out[i] = int64(binary.LittleEndian.Uint64(raw))
		case "int64":
			out[i] = int64(binary.LittleEndian.Uint64(raw))
		default:
			return nil, fmt.Errorf("field %q has non-integer type %s", name, field.Type)
		}
	}
	return out, nil
}

// Float64Column decodes a float field into float64 values.
func (f *ExtractedFile) Float64Column(name string) ([]float64, error) {
	field, offset, err := f.fieldOffset(name)
	if err != nil {
		return nil, err
	}
	n := f.NumRecords()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		raw := f.records[i*f.recordSize+offset:]
		switch field.Type {
		case "float32":
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw)))
		case "float64":
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw))
		default:
			ints, err := f.Int64Column(name)
			if err != nil {
				return nil, err
			}
			for j, v := range ints {
				out[j] = float64(v)
			}
			return out, nil
		}
	}
	return out, nil
}
