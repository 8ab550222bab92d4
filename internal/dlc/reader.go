// Package dlc reads DeepLabCut pose-estimation output.
//
// DLC writes one CSV per analyzed video: three header rows (scorer,
// bodyparts, coords) followed by one numeric row per frame holding x, y,
// and likelihood for every tracked body part. The reader returns per-part
// coordinate series in pixel units; alignment to video timestamps happens
// in the convert package.
package dlc

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"labnwb/internal/services"
)

// BodyPart is one tracked point's per-frame series.
type BodyPart struct {
	Name       string
	X          []float64
	Y          []float64
	Likelihood []float64
}

// PoseData is the decoded contents of one DLC output CSV.
type PoseData struct {
	Scorer     string
	FrameCount int
	Parts      []BodyPart
}

// ReadPoseCSV reads a DeepLabCut pose CSV.
func ReadPoseCSV(path string) (*PoseData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrMissingInput, "dlc", "open", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, services.Wrap(services.ErrCorruptInput, "dlc", "parse", path, err)
	}
	if len(rows) < 3 {
		return nil, services.Wrap(services.ErrCorruptInput, "dlc", "parse",
			fmt.Sprintf("%s: expected scorer, bodyparts, and coords header rows", path), nil)
	}

	scorerRow, partsRow, coordsRow := rows[0], rows[1], rows[2]
	if len(partsRow) != len(coordsRow) || len(partsRow) < 2 {
		return nil, services.Wrap(services.ErrCorruptInput, "dlc", "parse",
			fmt.Sprintf("%s: bodyparts and coords header rows disagree", path), nil)
	}

	scorer := ""
	if len(scorerRow) > 1 {
		scorer = scorerRow[1]
	}

	// Column 0 is the frame index; the remainder come in x/y/likelihood
	// triples per body part.
	type column struct {
		part  string
		coord string
	}
	columns := make([]column, 0, len(partsRow)-1)
	for i := 1; i < len(partsRow); i++ {
		columns = append(columns, column{part: partsRow[i], coord: coordsRow[i]})
	}

	partIndex := map[string]*BodyPart{}
	var order []string
	for _, col := range columns {
		if _, ok := partIndex[col.part]; !ok {
			partIndex[col.part] = &BodyPart{Name: col.part}
			order = append(order, col.part)
		}
	}

	frames := rows[3:]
	for _, part := range partIndex {
		part.X = make([]float64, 0, len(frames))
		part.Y = make([]float64, 0, len(frames))
		part.Likelihood = make([]float64, 0, len(frames))
	}

	for rowIdx, row := range frames {
		if len(row) != len(partsRow) {
			return nil, services.Wrap(services.ErrCorruptInput, "dlc", "parse",
				fmt.Sprintf("%s: frame row %d has %d columns, want %d", path, rowIdx, len(row), len(partsRow)), nil)
		}
		for i, col := range columns {
			value, err := strconv.ParseFloat(row[i+1], 64)
			if err != nil {
				return nil, services.Wrap(services.ErrCorruptInput, "dlc", "parse",
					fmt.Sprintf("%s: frame row %d column %s/%s", path, rowIdx, col.part, col.coord), err)
			}
			part := partIndex[col.part]
			switch col.coord {
			case "x":
				part.X = append(part.X, value)
			case "y":
				part.Y = append(part.Y, value)
			case "likelihood":
				part.Likelihood = append(part.Likelihood, value)
			default:
				return nil, services.Wrap(services.ErrCorruptInput, "dlc", "parse",
					fmt.Sprintf("%s: unknown coord label %q", path, col.coord), nil)
			}
		}
	}

	parts := make([]BodyPart, 0, len(order))
	for _, name := range order {
		parts = append(parts, *partIndex[name])
	}
	return &PoseData{
		Scorer:     scorer,
		FrameCount: len(frames),
		Parts:      parts,
	}, nil
}

// FilterParts keeps only the named body parts, preserving file order.
// An empty keep list keeps everything.
func (p *PoseData) FilterParts(keep []string) {
	if len(keep) == 0 {
		return
	}
	allowed := make(map[string]bool, len(keep))
	for _, name := range keep {
		allowed[name] = true
	}
	filtered := p.Parts[:0]
	for _, part := range p.Parts {
		if allowed[part.Name] {
			filtered = append(filtered, part)
		}
	}
	p.Parts = filtered
}
