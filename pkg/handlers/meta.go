package handlers

import (
	"github.com/PrivateRookie/psql/pkg/database"
	"github.com/PrivateRookie/psql/pkg/plan"
)

// catalogTemplates holds per-backend introspection SQL registered for
// every connection added at runtime. The table-scoped queries declare
// a `table` parameter so they bind like any handwritten query.
var catalogTemplates = map[database.Backend]map[string]string{
	database.BackendMySQL: {
		"schema": "SELECT DATABASE() AS db",
		"tables": "SELECT table_name AS name, engine FROM information_schema.tables " +
			"WHERE table_type = 'BASE TABLE' AND table_schema = DATABASE()",
		"table_index": "--? table: str // table name\n" +
			"SELECT INDEX_NAME AS name, COLUMN_NAME AS column_name, NON_UNIQUE AS can_duplicate, INDEX_TYPE AS type " +
			"FROM information_schema.STATISTICS WHERE table_name = @table AND TABLE_SCHEMA = DATABASE()",
		"table_column": "--? table: str // table name\n" +
			"SELECT COLUMN_NAME AS column_name, COLUMN_DEFAULT AS default_value, IS_NULLABLE AS is_nullable, DATA_TYPE AS type, COLUMN_KEY AS pk " +
			"FROM information_schema.columns WHERE table_name = @table AND TABLE_SCHEMA = DATABASE()",
		"table_fk": "--? table: str // table name\n" +
			"SELECT CONSTRAINT_NAME AS name, UPDATE_RULE AS update_rule, DELETE_RULE AS delete_rule, REFERENCED_TABLE_NAME AS referenced_table " +
			"FROM information_schema.REFERENTIAL_CONSTRAINTS WHERE CONSTRAINT_SCHEMA = DATABASE() AND TABLE_NAME = @table",
		"fk": "SELECT CONSTRAINT_NAME AS name, UPDATE_RULE AS update_rule, DELETE_RULE AS delete_rule, TABLE_NAME AS table_name, REFERENCED_TABLE_NAME AS referenced_table " +
			"FROM information_schema.REFERENTIAL_CONSTRAINTS WHERE CONSTRAINT_SCHEMA = DATABASE()",
	},
	database.BackendSQLite: {
		"schema": "SELECT 'main' AS db",
		"tables": "SELECT tbl_name AS name FROM sqlite_master " +
			"WHERE type = 'table' AND tbl_name NOT LIKE 'sqlite_%'",
		"table_index": "--? table: str // table name\n" +
			"SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = @table",
		"table_column": "--? table: str // table name\n" +
			"SELECT name AS column_name, dflt_value AS default_value, [notnull], type, pk " +
			"FROM pragma_table_info(@table)",
		"table_fk": "--? table: str // table name\n" +
			"SELECT [from] AS name, @table AS table_name, [table] AS referenced_table " +
			"FROM pragma_foreign_key_list(@table)",
		"fk": "SELECT p.[from], m.name AS table_name, p.[table] AS referenced_table " +
			"FROM sqlite_master m JOIN pragma_foreign_key_list(m.name) p ON m.name != p.[table] " +
			"WHERE m.type = 'table' ORDER BY m.name",
	},
	database.BackendPostgres: {
		"schema": "SELECT current_database() AS db",
		"tables": "SELECT tablename AS name FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename",
		"table_index": "--? table: str // table name\n" +
			"SELECT indexname AS name, indexdef AS definition FROM pg_indexes WHERE tablename = @table",
		"table_column": "--? table: str // table name\n" +
			"SELECT column_name, column_default AS default_value, is_nullable, data_type AS type " +
			"FROM information_schema.columns WHERE table_name = @table",
		"table_fk": "--? table: str // table name\n" +
			"SELECT constraint_name AS name, update_rule, delete_rule " +
			"FROM information_schema.referential_constraints " +
			"WHERE constraint_name IN (SELECT constraint_name FROM information_schema.table_constraints WHERE table_name = @table AND constraint_type = 'FOREIGN KEY')",
		"fk": "SELECT constraint_name AS name, update_rule, delete_rule " +
			"FROM information_schema.referential_constraints",
	},
	database.BackendSQLServer: {
		"schema": "SELECT DB_NAME() AS db",
		"tables": "SELECT name FROM sys.tables ORDER BY name",
		"table_index": "--? table: str // table name\n" +
			"SELECT name, type_desc AS type FROM sys.indexes WHERE object_id = OBJECT_ID(@table)",
		"table_column": "--? table: str // table name\n" +
			"SELECT column_name, column_default AS default_value, is_nullable, data_type AS type " +
			"FROM information_schema.columns WHERE table_name = @table",
		"table_fk": "--? table: str // table name\n" +
			"SELECT name, update_referential_action_desc AS update_rule, delete_referential_action_desc AS delete_rule " +
			"FROM sys.foreign_keys WHERE parent_object_id = OBJECT_ID(@table)",
		"fk": "SELECT name, update_referential_action_desc AS update_rule, delete_referential_action_desc AS delete_rule " +
			"FROM sys.foreign_keys",
	},
}

var catalogSummaries = map[string]string{
	"schema":       "get database name",
	"tables":       "list tables",
	"table_index":  "list indexes of a table",
	"table_column": "list columns of a table",
	"table_fk":     "list foreign keys of a table",
	"fk":           "list all foreign keys",
}

// metaQueries builds the catalog queries for a freshly added
// connection, routed under <conn>/__meta/.
func metaQueries(conn string, backend database.Backend) []plan.Query {
	templates := catalogTemplates[backend]
	queries := make([]plan.Query, 0, len(templates))
	for name, sql := range templates {
		queries = append(queries, plan.Query{
			Name:    name,
			Conn:    conn,
			SQL:     sql,
			Path:    conn + "/__meta/" + name,
			Method:  "GET",
			Summary: catalogSummaries[name],
			Tags:    []string{"meta"},
		})
	}
	return queries
}
