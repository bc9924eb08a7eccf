package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// TableRef is an optional table identifier. Older documents stored the table
// as a number, so decoding accepts strings, integers and null.
type TableRef string

// UnmarshalBSONValue accepts string, numeric and null BSON types.
func (t *TableRef) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	switch bt {
	case bsontype.Null, bsontype.Undefined:
		*t = ""
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(bt, data, &value); err != nil {
			return err
		}
		*t = TableRef(strings.TrimSpace(value))
		return nil
	case bsontype.Int32, bsontype.Int64:
		var n int64
		if err := bson.UnmarshalValue(bt, data, &n); err != nil {
			return err
		}
		*t = TableRef(strconv.FormatInt(n, 10))
		return nil
	case bsontype.Double:
		var f float64
		if err := bson.UnmarshalValue(bt, data, &f); err != nil {
			return err
		}
		*t = TableRef(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	default:
		return fmt.Errorf("cannot decode %s into TableRef", bt)
	}
}

// MarshalBSONValue stores an empty reference as null so takeaway orders keep
// the same shape as before.
func (t TableRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if t == "" {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(string(t))
}

func (t TableRef) MarshalJSON() ([]byte, error) {
	if t == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

func (t *TableRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}
	if trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*t = TableRef(strings.TrimSpace(value))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("table must be a string or number")
	}
	*t = TableRef(n.String())
	return nil
}
