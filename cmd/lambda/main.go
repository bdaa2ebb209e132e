package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/jacentio/constellation/api"
	"github.com/jacentio/constellation/internal/app"
	"github.com/jacentio/constellation/internal/envs"
	"github.com/jacentio/constellation/linehook"
	"github.com/jacentio/constellation/store"
)

func main() {
	ctx := context.Background()

	env, err := envs.Load()
	if err != nil {
		log.Fatalf("Failed to load env: %v\n", err)
	}
	logger := env.Logger(os.Stdout)

	client, err := env.DynamoDB(ctx)
	if err != nil {
		log.Fatalf("Failed to create dynamodb client: %v\n", err)
	}
	registry, err := app.NewRegistry()
	if err != nil {
		log.Fatal(err)
	}
	s := store.NewWithRegistry(client, env.StoreConfig(), registry)
	s.SetLogger(logger)

	svc := app.NewServices(s, logger)

	mux := http.NewServeMux()
	mux.Handle("/", api.NewServer(svc, logger))

	if env.LineEnabled() {
		replier, err := messaging_api.NewMessagingApiAPI(env.LineChannelToken)
		if err != nil {
			log.Fatalf("Failed to create LINE client: %v\n", err)
		}
		bot := linehook.New(env.LineChannelSecret, replier, svc.AltarfUsers, logger)
		mux.HandleFunc("POST /line/callback", bot.Callback)
	} else {
		logger.Warn("LINE channel not configured, webhook disabled")
	}

	lambda.Start(httpadapter.New(mux).ProxyWithContext)
}
