package main

import (
	"fmt"
	"os"

	genericapiserver "k8s.io/apiserver/pkg/server"
	"k8s.io/component-base/logs"

	"github.com/gocrane/imputebench/cmd/imputebench/app"
)

// imputebench main.
func main() {
	logs.InitLogs()
	defer logs.FlushLogs()

	ctx := genericapiserver.SetupSignalContext()

	if err := app.NewImputeBenchCommand(ctx).Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
