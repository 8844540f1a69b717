package main

import (
	"flag"
	"log"
	"os"

	approuters "github.com/Suryanshu-Nabheet/Zenith/internal/app_routers"
	"github.com/Suryanshu-Nabheet/Zenith/internal/configuration"
)

func main() {
	configPath := flag.String("config", "", "path to the JSON config file")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("ZENITH_CONFIG")
	}
	if path == "" {
		path = "config.json"
	}

	container, err := configuration.BuildContainer(path)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}
	defer container.Close()

	approuters.StartServer(container)
}
