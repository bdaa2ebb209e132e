package main

import (
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jacentio/constellation/internal/app"
	"github.com/jacentio/constellation/internal/envs"
	"github.com/jacentio/constellation/stream"
)

func main() {
	env, err := envs.Load()
	if err != nil {
		log.Fatalf("Failed to load env: %v\n", err)
	}
	logger := env.Logger(os.Stdout)

	registry, err := app.NewRegistry()
	if err != nil {
		log.Fatal(err)
	}

	h := stream.NewHandler(registry, env.StoreConfig(), logger)
	changes := stream.LogChanges(logger)
	for _, partition := range registry.Partitions() {
		h.Subscribe(partition, changes)
	}

	lambda.Start(h.HandleEvent)
}
