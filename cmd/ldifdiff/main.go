// Command ldifdiff compares two LDIF directory snapshots and emits the
// change records that transform the original into the target.
package main

import (
	"os"

	"github.com/ldaputil/ldifdiff/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
