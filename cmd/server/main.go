package main

import (
	"log"

	"boardbuilder/internal/config"
	"boardbuilder/internal/server"

	_ "boardbuilder/docs"
)

// @title Board Builder API
// @version 1.0
// @description REST API for the visual board builder: boards, blocks, element sync and sharing.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("failed to initialize server: %v", err)
	}

	if err := s.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
