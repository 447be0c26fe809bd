package main

import (
	"log"

	corecmd "dialogbot/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig:        loadConfig,
		Bootstrap:         newApp,
	})
	if err != nil {
		log.Fatalf("bot exited: %v", err)
	}
}
