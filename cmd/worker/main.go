package main

import (
	"context"
	"log"
	"sync"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/parkeasy/parkeasy-backend/internal/activities"
	"github.com/parkeasy/parkeasy-backend/internal/config"
	"github.com/parkeasy/parkeasy-backend/internal/ingest"
	"github.com/parkeasy/parkeasy-backend/internal/service"
	"github.com/parkeasy/parkeasy-backend/internal/store"
	"github.com/parkeasy/parkeasy-backend/internal/workflows"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	stores := store.NewFileStores(cfg.DataDir)

	// Rekognition backs plate extraction. Without AWS credentials the
	// worker still runs; reports then need an explicit plate.
	var reader service.PlateReader
	awsCfg, awsErr := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if awsErr != nil {
		log.Printf("Warning: AWS config unavailable, plate recognition disabled: %v", awsErr)
	} else {
		reader = service.NewRekognitionPlateReader(rekognition.NewFromConfig(awsCfg))
	}

	temporalHost := cfg.TemporalHost
	if temporalHost == "" {
		temporalHost = "localhost:7233"
	}
	log.Printf("Connecting to Temporal at %s...", temporalHost)
	c, err := client.Dial(client.Options{HostPort: temporalHost})
	if err != nil {
		log.Fatalf("Failed to connect to Temporal: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.ViolationReportWorkflow)

	acts := activities.NewActivities(stores.Reservations, stores.Violations, reader)
	w.RegisterActivityWithOptions(acts.ExtractVehicleInfo, activity.RegisterOptions{Name: "ExtractVehicleInfo"})
	w.RegisterActivityWithOptions(acts.EvaluateViolation, activity.RegisterOptions{Name: "EvaluateViolation"})
	w.RegisterActivityWithOptions(acts.RecordViolation, activity.RegisterOptions{Name: "RecordViolation"})

	// Camera reports arrive over SQS and run through the same workflow.
	var wg sync.WaitGroup
	if cfg.SQSReportQueueURL != "" && awsErr == nil {
		violationService := service.NewViolationService(stores.Violations, stores.Reservations, reader, c)
		consumer := ingest.NewSQSConsumer(sqs.NewFromConfig(awsCfg), cfg.SQSReportQueueURL, violationService)

		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Start(ctx)
		}()
	}

	log.Println("Starting Temporal worker...")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}

	cancel()
	wg.Wait()
}
