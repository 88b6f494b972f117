// Package fluentdb provides preset-based connections, a fluent SQL query builder
// and a traced execution session for SQLite, MySQL and PostgreSQL.
//
// # Quick Start
//
// Open a session from a preset or an explicit Config:
//
//	s, err := fluentdb.Open(ctx, fluentdb.Config{Dialect: "sqlite", File: "app.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
// Presets are read from .fluentdb.yaml (current directory, home directory or
// ~/.config/fluentdb) and may be overridden with FLUENTDB_ environment variables:
//
//	presets:
//	  default:
//	    dialect: mysql
//	    host: localhost
//	    database: app
//	    user: app
//	    password: ${DB_PASSWORD}
//	    prefix: app_
//
// # Select Queries
//
//	rec, ok, err := s.Table("users").
//	    Select("id, name").
//	    Where(map[string]any{"id": 5}).
//	    First()
//
//	res, err := s.Table("users").
//	    Where("age > ?", 18).
//	    OrWhere(fluentdb.In("role", "admin", "owner")).
//	    Order("created_at desc, name").
//	    Limit(10).
//	    All()
//
// # Where Clauses
//
// Where accepts a raw fragment with bindings, a column/value map, an
// [operator, column, value] triple or a Cond:
//
//	q.Where("YEAR(created_at) = ?", 2024)
//	q.Where(map[string]any{"status": "active", "deleted_at": nil})
//	q.Where([]any{">=", "age", 18})
//	q.Where(fluentdb.Like("email", "%@example.com"))
//
// # Insert, Update, Delete
//
//	ok, err := s.Table("users").Insert(map[string]any{"name": "Ann"})
//	id, _ := s.LastID()
//
//	ok, err = s.Table("users").Where(map[string]any{"id": id}).Update(map[string]any{"name": "Anna"})
//	ok, err = s.Table("users").Where(map[string]any{"id": id}).Delete()
//
// # Errors
//
// Configuration and connection errors are always returned. A failed query is
// recorded in LastError and the terminal returns an empty result, zero count or
// false; arm Fail(true) to have the next failure returned as a *QueryError:
//
//	if _, err := s.Fail(true).Execute(ctx, "DELETE FROM logs"); err != nil {
//	    var qerr *fluentdb.QueryError
//	    if errors.As(err, &qerr) && qerr.Constraint() == fluentdb.ConstraintForeignKey {
//	        ...
//	    }
//	}
//
// Every attempted statement is appended to Trace.
//
// # Security
//
// fluentdb protects against SQL injection through:
//   - Prepared statements for all values
//   - Identifier validation (table/column names)
//   - Operator whitelisting
//
// # Thread Safety
//
// A Session serialises its statements with a mutex and owns a single
// connection. Query values are NOT thread-safe; use Clone to branch.
// Use WithSession and FromContext to keep one session per request.
//
// # Supported Databases
//
//   - SQLite
//   - MySQL / MariaDB
//   - PostgreSQL
package fluentdb
