package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hustlex/admin-gateway/internal/cli"
	"github.com/hustlex/admin-gateway/internal/config"
	"github.com/hustlex/admin-gateway/internal/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("RUNTIME_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	logger.InitWithWriter(os.Stderr, logger.CLI)

	if err := cli.NewRootCommand(cli.NewApp(cfg)).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
