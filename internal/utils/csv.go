package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
)

// StructToCsvHeader takes a struct type and returns a slice of strings representing the CSV header.
// It uses the `csv` tag on struct fields to determine the header name; fields tagged `csv:"-"`
// are skipped and untagged fields use the field name.
func StructToCsvHeader(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var headers []string
	for i := 0; i < t.NumField(); i++ {
		name, ok := csvName(t.Field(i))
		if !ok {
			continue
		}
		headers = append(headers, name)
	}
	return headers
}

func csvName(field reflect.StructField) (string, bool) {
	if !field.IsExported() {
		return "", false
	}
	tag := field.Tag.Get("csv")
	switch tag {
	case "-":
		return "", false
	case "":
		return field.Name, true
	default:
		return tag, true
	}
}

// WriteToCsvFile writes the given headers and data to a CSV file at the specified filePath.
func WriteToCsvFile[T any](filePath string, headers []string, data []T) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteCsv(file, ',', headers, data); err != nil {
		return err
	}
	return file.Close()
}

// WriteCsv writes headers and rows to w using comma as the field separator.
// For slices, it joins the elements using a semicolon (;) to handle multi-value fields.
func WriteCsv[T any](w io.Writer, comma rune, headers []string, data []T) error {
	writer := csv.NewWriter(w)
	writer.Comma = comma

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
		return nil, fmt.Errorf("data must be a slice of structs")
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name, ok := csvName(t.Field(i))
		if !ok {
			continue
		}
		idx := indexOf(headers, name)
		if idx < 0 {
			continue // Skip fields not in the headers
		}
		row[idx] = formatField(v.Field(i))
	}
	return row, nil
}

func formatField(fv reflect.Value) string {
	if fv.Kind() == reflect.Slice {
		var values []string
		for j := 0; j < fv.Len(); j++ {
			values = append(values, fmt.Sprintf("%v", fv.Index(j).Interface()))
		}
		return strings.Join(values, ";")
	}
	return fmt.Sprintf("%v", fv.Interface())
}

// indexOf returns the index of a string in a slice or -1 if not found
func indexOf(slice []string, item string) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}
