// Package database opens connection pools against the supported
// relational backends and converts result rows into JSON-friendly
// values. The templating engine never touches a connection; this
// package is the execution collaborator the rendered statements are
// handed to.
package database

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PrivateRookie/psql/pkg/sqltoken"
)

// Backend is the tagged variant selecting driver, SQL dialect and row
// encoding. Serialization is implemented once per backend, never
// duplicated per driver type.
type Backend int

const (
	BackendUnknown Backend = iota
	BackendMySQL
	BackendSQLite
	BackendPostgres
	BackendSQLServer
)

func (b Backend) String() string {
	switch b {
	case BackendMySQL:
		return "mysql"
	case BackendSQLite:
		return "sqlite"
	case BackendPostgres:
		return "postgres"
	case BackendSQLServer:
		return "sqlserver"
	default:
		return "unknown"
	}
}

// Dialect returns the tokenizer dialect matching the backend.
func (b Backend) Dialect() sqltoken.Dialect {
	switch b {
	case BackendMySQL:
		return sqltoken.DialectMySQL
	case BackendSQLite:
		return sqltoken.DialectSQLite
	case BackendPostgres:
		return sqltoken.DialectPostgres
	case BackendSQLServer:
		return sqltoken.DialectSQLServer
	default:
		return sqltoken.DialectMySQL
	}
}

// driverName returns the database/sql driver registered for the
// backend.
func (b Backend) driverName() string {
	switch b {
	case BackendMySQL:
		return "mysql"
	case BackendSQLite:
		return "sqlite3"
	case BackendPostgres:
		return "pgx"
	case BackendSQLServer:
		return "sqlserver"
	default:
		return ""
	}
}

// DetectBackend inspects a connection URI's scheme.
func DetectBackend(uri string) Backend {
	switch {
	case strings.HasPrefix(uri, "mysql:"):
		return BackendMySQL
	case strings.HasPrefix(uri, "sqlite:"):
		return BackendSQLite
	case strings.HasPrefix(uri, "postgres:"), strings.HasPrefix(uri, "postgresql:"):
		return BackendPostgres
	case strings.HasPrefix(uri, "sqlserver:"), strings.HasPrefix(uri, "mssql:"):
		return BackendSQLServer
	default:
		return BackendUnknown
	}
}

// dsnFromURI converts a connection URI into the driver-specific DSN.
// pgx and go-mssqldb accept URI form directly; go-sql-driver/mysql
// wants user:pass@tcp(host:port)/db and go-sqlite3 wants a bare path.
func dsnFromURI(b Backend, uri string) (string, error) {
	switch b {
	case BackendPostgres, BackendSQLServer:
		return uri, nil
	case BackendSQLite:
		path := strings.TrimPrefix(uri, "sqlite://")
		path = strings.TrimPrefix(path, "sqlite:")
		if path == "" {
			path = ":memory:"
		}
		return path, nil
	case BackendMySQL:
		u, err := url.Parse(uri)
		if err != nil {
			return "", fmt.Errorf("parse mysql uri: %w", err)
		}
		host := u.Host
		if u.Port() == "" {
			host += ":3306"
		}
		var cred string
		if u.User != nil {
			cred = u.User.Username()
			if pass, ok := u.User.Password(); ok {
				cred += ":" + pass
			}
			cred += "@"
		}
		dsn := fmt.Sprintf("%stcp(%s)/%s", cred, host, strings.TrimPrefix(u.Path, "/"))
		if u.RawQuery != "" {
			dsn += "?" + u.RawQuery
		}
		return dsn, nil
	default:
		return "", fmt.Errorf("unsupported connection uri %q", uri)
	}
}
