// Pipeline Trigger Lambda entry point. Runs the lifecycle pipeline when a
// transactions CSV lands in the ingest bucket.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"lifecycle-intelligence-engine/internal/handlers"
	"lifecycle-intelligence-engine/internal/utils"
)

func main() {
	// Initialize logger
	_ = utils.InitLogger("info")
	defer utils.Sync()

	// Create handler
	handler, err := handlers.NewPipelineTriggerHandler(context.Background())
	if err != nil {
		panic("Failed to create handler: " + err.Error())
	}
	defer handler.Close()

	// Start Lambda
	lambda.Start(handler.Handle)
}
