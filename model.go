package godbf

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/pkg/errors"
)

// modelColumnIndex maps the dbf tag of each exported struct field to its
// index. Untagged fields and fields tagged "-" are ignored.
func modelColumnIndex(rt reflect.Type) map[string]int {
	index := make(map[string]int, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		column := field.Tag.Get("dbf")
		if column == "" || column == "-" {
			continue
		}
		index[column] = i
	}
	return index
}

// RowsFromStructs converts a slice of structs, or of pointers to structs,
// into rows keyed by the fields' dbf tags. Values are formatted as text.
func RowsFromStructs(v interface{}) ([]Row, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("RowsFromStructs requires a slice of struct, not a %s", rv.Kind())
	}

	et := rv.Type().Elem()
	ptr := et.Kind() == reflect.Ptr
	if ptr {
		et = et.Elem()
	}
	if et.Kind() != reflect.Struct {
		return nil, fmt.Errorf("RowsFromStructs requires a slice of struct, not of %s", et.Kind())
	}

	index := modelColumnIndex(et)
	rows := make([]Row, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		ev := rv.Index(i)
		if ptr {
			if ev.IsNil() {
				rows[i] = Row{}
				continue
			}
			ev = ev.Elem()
		}
		row := make(Row, len(index))
		for column, fieldIndex := range index {
			val, err := formatValue(ev.Field(fieldIndex))
			if err != nil {
				return nil, errors.Wrapf(err, "row %d column %q", i, column)
			}
			row[column] = val
		}
		rows[i] = row
	}
	return rows, nil
}

func formatValue(fieldVal reflect.Value) (string, error) {
	switch fieldVal.Kind() {
	case reflect.String:
		return fieldVal.String(), nil
	case reflect.Bool:
		if fieldVal.Bool() {
			return "T", nil
		}
		return "F", nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(fieldVal.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(fieldVal.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(fieldVal.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(fieldVal.Float(), 'f', -1, 64), nil
	}
	return "", fmt.Errorf("unsupported kind %s", fieldVal.Kind())
}

// Scan appends one struct per row to the slice dst points to. Columns are
// matched to struct fields by dbf tag; empty values leave the zero value.
func (t *Table) Scan(dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("Scan requires a non-nil pointer to a slice of struct")
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Slice {
		return fmt.Errorf("Scan requires a pointer to a slice, not a %s", rv.Kind())
	}
	et := rv.Type().Elem()
	if et.Kind() != reflect.Struct {
		return fmt.Errorf("Scan requires a pointer to a slice of struct, not of %s", et.Kind())
	}

	index := modelColumnIndex(et)
	fieldIndexes := make([]int, len(t.Columns))
	for i, column := range t.Columns {
		fieldIndex, ok := index[column]
		if !ok {
			fieldIndex = -1
		}
		fieldIndexes[i] = fieldIndex
	}

	for r, values := range t.Rows {
		ev := reflect.New(et).Elem()
		for i, columnVal := range values {
			if fieldIndexes[i] < 0 || columnVal == "" {
				continue
			}
			if err := parseValue(ev.Field(fieldIndexes[i]), columnVal); err != nil {
				return errors.Wrapf(err, "row %d column %q", r, t.Columns[i])
			}
		}
		rv.Set(reflect.Append(rv, ev))
	}
	return nil
}

func parseValue(fieldValue reflect.Value, columnVal string) error {
	switch fieldValue.Kind() {
	case reflect.String:
		fieldValue.SetString(columnVal)
	case reflect.Bool:
		switch columnVal {
		case "T", "t", "Y", "y":
			fieldValue.SetBool(true)
		case "F", "f", "N", "n":
			fieldValue.SetBool(false)
		default:
			b, err := strconv.ParseBool(columnVal)
			if err != nil {
				return err
			}
			fieldValue.SetBool(b)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		num, err := strconv.ParseInt(columnVal, 10, fieldValue.Type().Bits())
		if err != nil {
			return err
		}
		fieldValue.SetInt(num)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		num, err := strconv.ParseUint(columnVal, 10, fieldValue.Type().Bits())
		if err != nil {
			return err
		}
		fieldValue.SetUint(num)
	case reflect.Float32, reflect.Float64:
		num, err := strconv.ParseFloat(columnVal, fieldValue.Type().Bits())
		if err != nil {
			return err
		}
		fieldValue.SetFloat(num)
	default:
		return fmt.Errorf("unsupported kind %s", fieldValue.Kind())
	}
	return nil
}
