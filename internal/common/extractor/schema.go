package extractor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/project-tktt/pl-crawler/internal/browser"
	"github.com/project-tktt/pl-crawler/internal/domain"
)

// FieldKind selects how a field's display text is converted
type FieldKind int

const (
	// KindText keeps the trimmed text
	KindText FieldKind = iota
	// KindInt parses the text as a non-negative integer
	KindInt
)

// Field declares how one record field is read from a row
type Field struct {
	Name     string
	Selector string // CSS selector relative to the row
	Attr     string // read this attribute instead of the element text
	Kind     FieldKind
	// Optional fields fall back to Default when the element or its value is missing
	Optional bool
	Default  any
}

// Schema describes a rendered table
type Schema struct {
	Container string // present once the table has rendered
	Row       string
	Fields    []Field
}

// Validate checks the schema is usable before driving a page
func (s Schema) Validate() error {
	if s.Container == "" {
		return errors.New("schema: container selector is empty")
	}
	if s.Row == "" {
		return errors.New("schema: row selector is empty")
	}
	if len(s.Fields) == 0 {
		return errors.New("schema: no fields")
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" || f.Selector == "" {
			return fmt.Errorf("schema: field %q needs a name and a selector", f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema: duplicate field %q", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// readRow applies every field of the schema to one row
func (s Schema) readRow(ctx context.Context, row browser.Element, pageNum, rowNum int) (domain.Record, error) {
	record := make(domain.Record, len(s.Fields))
	for _, f := range s.Fields {
		value, err := f.read(ctx, row)
		if err != nil {
			var fe *FieldError
			if errors.As(err, &fe) {
				fe.Page, fe.Row = pageNum, rowNum
			}
			return nil, err
		}
		record[f.Name] = value
	}
	return record, nil
}

func (f Field) read(ctx context.Context, row browser.Element) (any, error) {
	text, found, err := f.lookup(ctx, row)
	if err != nil {
		return nil, err
	}
	if !found {
		if f.Optional {
			return f.Default, nil
		}
		return nil, &FieldError{Field: f.Name, Err: ErrRequiredFieldMissing}
	}

	switch f.Kind {
	case KindInt:
		n, err := parseCount(text)
		if err != nil {
			return nil, &FieldError{Field: f.Name, Text: text, Err: fmt.Errorf("%w: %v", ErrFieldParse, err)}
		}
		return n, nil
	default:
		return text, nil
	}
}

// lookup reports found=false for an absent element, absent attribute, or blank value
func (f Field) lookup(ctx context.Context, row browser.Element) (string, bool, error) {
	el, err := row.Find(ctx, f.Selector)
	if errors.Is(err, browser.ErrElementNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find %s: %w", f.Name, err)
	}

	var text string
	if f.Attr != "" {
		value, ok, err := el.Attribute(ctx, f.Attr)
		if err != nil {
			return "", false, fmt.Errorf("read %s attribute %s: %w", f.Name, f.Attr, err)
		}
		if !ok {
			return "", false, nil
		}
		text = value
	} else {
		text, err = el.Text(ctx)
		if err != nil {
			return "", false, fmt.Errorf("read %s: %w", f.Name, err)
		}
	}

	text = strings.TrimSpace(text)
	return text, text != "", nil
}

// parseCount accepts display counts such as "123" or "1,234"
func parseCount(text string) (int, error) {
	n, err := strconv.Atoi(strings.ReplaceAll(text, ",", ""))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}
