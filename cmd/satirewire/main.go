package main

import (
	"satirewire/cmd/handlers"
	"satirewire/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
