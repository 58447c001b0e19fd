package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
)

// StructToCsvHeader takes a struct type and returns a slice of strings representing the CSV header.
// It uses the `csv` tag on struct fields to determine the header name.
// If a field doesn't have a `csv` tag, the field name is used. Fields tagged `csv:"-"` are skipped.
func StructToCsvHeader(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var headers []string
	for i := 0; i < t.NumField(); i++ {
		if name := headerName(t.Field(i)); name != "-" {
			headers = append(headers, name)
		}
	}
	return headers
}

func headerName(field reflect.StructField) string {
	if tag := field.Tag.Get("csv"); tag != "" {
		return tag
	}
	return field.Name
}

// WriteCsv writes the given headers and one row per item to w.
// Slice fields are joined with a semicolon (;) to handle multi-value fields.
func WriteCsv[T any](w io.Writer, headers []string, data []T) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, item := range data {
		row, err := csvRow(headers, item)
		if err != nil {
			return err
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvRow(headers []string, item any) ([]string, error) {
	row := make([]string, len(headers))
	v := reflect.ValueOf(item)

	// If item is a pointer, get the value it points to
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("data must be a slice of structs, got %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		idx := slices.Index(headers, headerName(t.Field(i)))
		if idx < 0 {
			continue // Skip fields not in the headers
		}

		fieldValue := v.Field(i)
		if fieldValue.Kind() == reflect.Slice {
			values := make([]string, fieldValue.Len())
			for j := range values {
				values[j] = fmt.Sprintf("%v", fieldValue.Index(j).Interface())
			}
			row[idx] = strings.Join(values, ";")
			continue
		}
		row[idx] = fmt.Sprintf("%v", fieldValue.Interface())
	}
	return row, nil
}
