// Command fluentdb, preset'ler üzerinden veritabanına ad-hoc sorgular gönderir.
package main

import (
	"os"

	"github.com/biyonik/fluentdb/cmd/fluentdb/commands"
	"github.com/biyonik/fluentdb/internal/ui"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		ui.PrintError("%v", err)
		os.Exit(1)
	}
}
