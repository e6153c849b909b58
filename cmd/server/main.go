package main

import (
	"github.com/geoffsee/proseva-sub005/internal/server"
	"github.com/geoffsee/proseva-sub005/internal/util"
	"github.com/geoffsee/proseva-sub005/pkg/logger"
	"github.com/geoffsee/proseva-sub005/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
