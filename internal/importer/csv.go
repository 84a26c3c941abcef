package importer

// CSV event import. Calendar exports in the wild disagree on header names
// and encodings; spreadsheet tools in particular save UTF-16 with a BOM.

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"jk-calendar/internal/calendar"
)

// Known header names per field, lowercased. The "subject" spelling is what
// Outlook and Google Calendar exports use.
var headerAliases = map[string][]string{
	"title":       {"title", "subject"},
	"start":       {"start", "start time", "start date"},
	"end":         {"end", "end time", "end date"},
	"description": {"description"},
	"location":    {"location"},
	"time_zone":   {"time zone", "time_zone", "timezone"},
}

// Accepted time layouts, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"01/02/2006 3:04 PM",
	"01/02/2006",
}

type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseEvents reads a CSV export and returns one event input per data row.
// The title column is required; start/end columns are optional and left
// nil when empty so creation-time defaulting applies downstream.
func ParseEvents(r io.Reader) ([]calendar.EventInput, error) {
	// BOMOverride switches the decoder on a UTF-8 or UTF-16 BOM and falls
	// back to plain UTF-8, so the stream never needs rewinding.
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = 0

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	idx := matchHeaders(headers)
	if _, ok := idx["title"]; !ok {
		return nil, fmt.Errorf("CSV file missing a title column")
	}

	var inputs []calendar.EventInput
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}

		input := calendar.EventInput{
			Title:       field(record, idx, "title"),
			Description: field(record, idx, "description"),
			Location:    field(record, idx, "location"),
			TimeZone:    field(record, idx, "time_zone"),
		}

		if raw := field(record, idx, "start"); raw != "" {
			t, err := parseTime(raw)
			if err != nil {
				return nil, &ParseError{Line: line, Err: err}
			}
			input.Start = &t
		}
		if raw := field(record, idx, "end"); raw != "" {
			t, err := parseTime(raw)
			if err != nil {
				return nil, &ParseError{Line: line, Err: err}
			}
			input.End = &t
		}

		inputs = append(inputs, input)
	}

	return inputs, nil
}

// Import parses the CSV and creates the events under the calendar. It
// stops at the first bad row; rows before it stay created (creates are not
// idempotent and are not retried).
func Import(ctx context.Context, svc *calendar.Service, calID int64, r io.Reader) (int, error) {
	inputs, err := ParseEvents(r)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, input := range inputs {
		if _, err := svc.CreateEvent(ctx, calID, input); err != nil {
			return created, fmt.Errorf("row %d: %w", created+1, err)
		}
		created++
	}
	return created, nil
}

func matchHeaders(headers []string) map[string]int {
	idx := make(map[string]int)
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		for fieldName, aliases := range headerAliases {
			if _, done := idx[fieldName]; done {
				continue
			}
			for _, alias := range aliases {
				if h == alias {
					idx[fieldName] = i
				}
			}
		}
	}
	return idx
}

func field(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", raw)
}
