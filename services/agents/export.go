package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrWrite means the export destination was not writable. fatal,
// surfaced to the invoker.
var ErrWrite = errors.New("could not write the user agent set")

type Format string

const (
	// one identifier per line
	FormatLines Format = "lines"
	// a JSON array of identifiers
	FormatJson Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatLines, FormatJson:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q, expected %q or %q", s, FormatLines, FormatJson)
}

// Export writes the stored user-agent set to path. the set is written in
// its canonical order, so identical stores export byte-identical files.
func (s Service) Export(ctx context.Context, path string, format Format) (int, error) {
	ctx, span := tracer.Start(ctx, "Export")
	defer span.End()
	span.SetAttributes(
		attribute.String("path", path),
		attribute.String("format", string(format)),
	)

	rows, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	values := make([]string, len(rows))
	for i, r := range rows {
		values[i] = r.Value
	}

	var content []byte
	switch format {
	case FormatJson:
		content, err = json.MarshalIndent(values, "", "  ")
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, err
		}
		content = append(content, '\n')
	default:
		if len(values) > 0 {
			content = []byte(strings.Join(values, "\n") + "\n")
		}
	}

	err = os.WriteFile(path, content, 0666)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrWrite, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Int("exported", len(values)))
	return len(values), nil
}
