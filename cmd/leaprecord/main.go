// Package main provides the leaprecord CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/leaprecord/internal/cli"

	_ "github.com/leapstack-labs/leaprecord/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leaprecord/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leaprecord/pkg/adapters/sqlite"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
