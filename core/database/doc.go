// Package database manages the MySQL connection used by the execution
// engine and the CLI. It wraps GORM connection setup with sane pool
// settings and an initial ping so failures surface at startup.
package database
