package database

import (
	"encoding/base64"
	"strings"
	"time"
)

// encodeValue converts one raw column value into its JSON-facing
// form: {columnTypeTag, rawValue} -> JSONValue. Each backend supplies
// the capability once; the switch below is the only dispatch point.
func (b Backend) encodeValue(typeTag string, v any) any {
	if v == nil {
		return nil
	}
	switch b {
	case BackendMySQL:
		return encodeMySQLValue(typeTag, v)
	case BackendSQLite:
		return encodeSQLiteValue(typeTag, v)
	case BackendPostgres:
		return encodePostgresValue(typeTag, v)
	case BackendSQLServer:
		return encodeSQLServerValue(typeTag, v)
	default:
		return encodeCommonValue(v, false)
	}
}

// encodeCommonValue handles the driver types shared by every backend.
// binary controls whether []byte is base64-encoded or treated as text.
func encodeCommonValue(v any, binary bool) any {
	switch val := v.(type) {
	case []byte:
		if binary {
			return base64.StdEncoding.EncodeToString(val)
		}
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return v
	}
}

var mysqlBinaryTags = map[string]struct{}{
	"BINARY": {}, "VARBINARY": {}, "TINYBLOB": {}, "BLOB": {},
	"MEDIUMBLOB": {}, "LONGBLOB": {}, "BIT": {}, "GEOMETRY": {},
}

// encodeMySQLValue maps go-sql-driver values: text-ish columns arrive
// as []byte and become strings, binary columns become base64.
func encodeMySQLValue(typeTag string, v any) any {
	_, binary := mysqlBinaryTags[typeTag]
	return encodeCommonValue(v, binary)
}

// encodeSQLiteValue maps go-sqlite3 values; only BLOB columns are
// binary, everything else is already a Go scalar or text.
func encodeSQLiteValue(typeTag string, v any) any {
	return encodeCommonValue(v, strings.EqualFold(typeTag, "BLOB"))
}

// encodePostgresValue maps pgx stdlib values; BYTEA is binary, other
// []byte values (uuid, numeric in some paths) are textual.
func encodePostgresValue(typeTag string, v any) any {
	return encodeCommonValue(v, typeTag == "BYTEA")
}

var sqlserverBinaryTags = map[string]struct{}{
	"BINARY": {}, "VARBINARY": {}, "IMAGE": {}, "TIMESTAMP": {}, "ROWVERSION": {},
}

func encodeSQLServerValue(typeTag string, v any) any {
	_, binary := sqlserverBinaryTags[typeTag]
	return encodeCommonValue(v, binary)
}
