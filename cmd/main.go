package main

import (
	"log"

	"github.com/Imm0bilize/xai-prediction-gateway/internal/app"
	"github.com/Imm0bilize/xai-prediction-gateway/internal/config"
)

func main() {
	cfg, err := config.New(".env.public")
	if err != nil {
		log.Fatal(err)
	}

	app.Run(cfg)
}
