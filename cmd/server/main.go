package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/piparkaq/hackboard/internal/app"
	"github.com/piparkaq/hackboard/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	contestHandler := handlers.NewContestHandler(service)
	participationHandler := handlers.NewParticipationHandler(service)
	submissionHandler := handlers.NewSubmissionHandler(service)
	leaderboardHandler := handlers.NewLeaderboardHandler(service)

	http.HandleFunc("GET /api/v1/contests", contestHandler.HandleContestList)
	http.HandleFunc("POST /api/v1/contests", contestHandler.HandleContestCreate)
	http.HandleFunc("GET /api/v1/contests/{contest_id}", contestHandler.HandleContestGet)
	http.HandleFunc("PUT /api/v1/contests/{contest_id}", contestHandler.HandleContestUpdate)
	http.HandleFunc("POST /api/v1/contests/{contest_id}/archive", contestHandler.HandleContestArchive)
	http.HandleFunc("DELETE /api/v1/contests/{contest_id}", contestHandler.HandleContestDelete)
	http.HandleFunc("POST /api/v1/contests/{contest_id}/pages", contestHandler.HandlePageCreate)
	http.HandleFunc("DELETE /api/v1/pages/{page_id}", contestHandler.HandlePageDelete)

	http.HandleFunc("POST /api/v1/contests/{contest_id}/join", participationHandler.HandleJoin)
	http.HandleFunc("POST /api/v1/participants/{participant_id}/leave", participationHandler.HandleLeave)
	http.HandleFunc("GET /api/v1/users/{user_id}/participations", participationHandler.HandleUserParticipations)
	http.HandleFunc("GET /api/v1/contests/{contest_id}/participants", participationHandler.HandleContestParticipants)

	http.HandleFunc("POST /api/v1/contests/{contest_id}/submissions", submissionHandler.HandleCreate)
	http.HandleFunc("GET /api/v1/contests/{contest_id}/submissions", submissionHandler.HandleContestSubmissions)
	http.HandleFunc("GET /api/v1/submissions/{submission_id}", submissionHandler.HandleGet)
	http.HandleFunc("PATCH /api/v1/submissions/{submission_id}", submissionHandler.HandleEdit)
	http.HandleFunc("DELETE /api/v1/submissions/{submission_id}", submissionHandler.HandleDelete)
	http.HandleFunc("GET /api/v1/users/{user_id}/submissions", submissionHandler.HandleUserSubmissions)

	http.HandleFunc("GET /api/v1/contests/{contest_id}/prizes", leaderboardHandler.HandlePrizes)
	http.HandleFunc("GET /api/v1/contests/{contest_id}/winners", leaderboardHandler.HandleWinners)
	http.HandleFunc("GET /api/v1/seasons/{season_id}/leaderboard", leaderboardHandler.HandleSeasonLeaderboard)
	http.HandleFunc("POST /api/v1/seasons/{season_id}/leaderboard/rebuild", leaderboardHandler.HandleSeasonRebuild)

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting hackboard server on %s", service.Config.Server.Port)
	logger.Debug.Println("Requiring headers:")
	for _, h := range service.Config.API.RequiredHeaders {
		logger.Debug.Printf("  %s: %s", h.Name, h.Value)
	}
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Hackboard server failed: %v", err)
	}
}
