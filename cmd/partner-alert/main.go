// Command partner-alert sends a deal alert to a list of funding partners
// without going through the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"deal-pipeline-api/config"
	"deal-pipeline-api/repository"
	"deal-pipeline-api/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var (
		dealID      int
		partnersRaw string
		actorID     int
		noEmail     bool
	)

	flag.IntVar(&dealID, "deal", 0, "deal id to alert partners about")
	flag.StringVar(&partnersRaw, "partners", "", "comma-separated list of partner ids")
	flag.IntVar(&actorID, "actor", 0, "admin user id recorded as the sender")
	flag.BoolVar(&noEmail, "no-email", false, "send in-app notifications only")
	flag.Parse()

	if dealID <= 0 {
		log.Fatal("-deal is required")
	}
	if actorID <= 0 {
		log.Fatal("-actor is required")
	}

	var partnerIDs []int
	for _, part := range strings.Split(partnersRaw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			log.Fatalf("invalid partner id '%s'", part)
		}
		partnerIDs = append(partnerIDs, id)
	}

	settings, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logFile, logger := config.InitLogging(settings.LogLevel, "partner-alert")
	if logFile != nil {
		defer logFile.Close()
	}

	config.ConfigureMailer(settings.Mail)
	db, err := config.InitDB(settings.Database, settings.IsProduction())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	kafkaWriter := config.NewKafkaWriter(settings.Kafka)
	if kafkaWriter != nil {
		defer kafkaWriter.Close()
	}

	store := repository.NewGormStore(db)
	wf := services.NewWorkflowService(
		store,
		services.NewMailNotifier(store, config.SendMail, settings.AppBaseURL),
		services.NewKafkaEventPublisher(kafkaWriter, logger),
		services.NewFileDocumentStore(settings.UploadPath),
		logger,
	)

	ctx := context.Background()
	caller, err := wf.ResolveCaller(ctx, actorID)
	if err != nil {
		logger.Fatal().Err(err).Int("actor_id", actorID).Msg("failed to resolve actor")
	}

	sendEmail := !noEmail
	results, err := services.NewPartnerAlertService(wf).Send(ctx, caller, dealID, partnerIDs, &sendEmail)
	if err != nil {
		logger.Error().Err(err).Int("deal_id", dealID).Msg("partner alert failed")
		os.Exit(1)
	}

	failed := 0
	for _, r := range results {
		ev := logger.Info()
		if r.Error != "" {
			failed++
			ev = logger.Warn().Str("error", r.Error)
		}
		ev.Int("partner_id", r.PartnerID).
			Bool("matches", r.Matches).
			Strs("match_reasons", r.MatchReasons).
			Bool("notification_sent", r.NotificationSent).
			Bool("email_sent", r.EmailSent).
			Msg("partner alerted")
	}

	fmt.Printf("Partners alerted: %d (errors: %d)\n", len(results), failed)
	if failed > 0 {
		os.Exit(1)
	}
}
