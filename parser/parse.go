package parser

import (
	"capacity-planner/curve"
	"capacity-planner/errors"
	"capacity-planner/metrics"
	"capacity-planner/models"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// minFields is name, TPs, source and at least one demand value.
const minFields = 4

// Parse reads CSV pool data from the reader.
// Each record is: Name, TalentPartners, Source, Demand...
// Lines starting with '#' are headers/comments.
// A record with a single demand value is a hiring total spread over
// hiringDuration weeks; more values are taken as the weekly curve as given.
// The curve shape for totals is set by the header's fourth column
// (e.g., TotalLinear, TotalFlat) and applies to all subsequent rows until the
// next header. Defaults to flat.
// Source is auto or manual; an empty source is auto.
// Pools get ids "1", "2", ... in file order and palette colours by position.
func Parse(r io.Reader, hiringDuration int) ([]models.Scenario, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	shape := curve.Flat
	var data []models.Scenario
	lineNum := 0

	for {
		record, err := reader.Read()
		lineNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}

		// Handle headers/comments
		if len(record) > 0 && strings.HasPrefix(record[0], "#") {
			if len(record) >= minFields {
				header := strings.TrimSpace(record[3])
				if strings.HasPrefix(header, "Total") {
					if s, err := curve.ParseShape(strings.TrimPrefix(header, "Total")); err == nil {
						shape = s
					}
				}
			}
			continue
		}

		s, err := parseRecord(record, len(data), shape, hiringDuration)
		if err != nil {
			metrics.ParserErrorsTotal.WithLabelValues(errorType(err)).Inc()
			return nil, &errors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    err,
			}
		}
		data = append(data, s)
		metrics.ParserRecordsTotal.Inc()
	}

	return data, nil
}

func parseRecord(record []string, index int, shape curve.Shape, hiringDuration int) (models.Scenario, error) {
	if len(record) < minFields {
		return models.Scenario{}, errors.ErrInvalidFieldCount
	}

	s := models.Scenario{
		ID:    strconv.Itoa(index + 1),
		Name:  strings.TrimSpace(record[0]),
		Color: models.ColorFor(index),
	}
	if s.Name == "" {
		return s, errors.ErrEmptyName
	}

	tps, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return s, fmt.Errorf("%w: %v", errors.ErrInvalidTalentPartners, err)
	}
	if tps < 0 {
		return s, fmt.Errorf("%w: %v is negative", errors.ErrInvalidTalentPartners, tps)
	}

	switch strings.ToLower(strings.TrimSpace(record[2])) {
	case "", string(models.SourceAuto):
		s.TalentPartners = models.Auto(tps)
	case string(models.SourceManual):
		s.TalentPartners = models.Manual(tps)
	default:
		return s, fmt.Errorf("%w: %q", errors.ErrInvalidSource, record[2])
	}

	values := make([]float64, 0, len(record)-3)
	for _, field := range record[3:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return s, fmt.Errorf("%w: %v", errors.ErrInvalidDemand, err)
		}
		if v < 0 {
			return s, fmt.Errorf("%w: %v is negative", errors.ErrInvalidDemand, v)
		}
		values = append(values, v)
	}

	if len(values) == 1 {
		s.Demand = curve.Generate(shape, hiringDuration, values[0])
	} else {
		s.Demand = values
	}
	return s, nil
}

// errorType maps a parse failure to its metric label.
func errorType(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrInvalidFieldCount):
		return "field_count"
	case stderrors.Is(err, errors.ErrEmptyName):
		return "empty_name"
	case stderrors.Is(err, errors.ErrInvalidTalentPartners):
		return "talent_partners"
	case stderrors.Is(err, errors.ErrInvalidSource):
		return "source"
	case stderrors.Is(err, errors.ErrInvalidDemand):
		return "demand"
	default:
		return "other"
	}
}
