package export

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/piparkaq/hackboard/internal/app"
	"github.com/piparkaq/hackboard/internal/scoring"
	"github.com/piparkaq/hackboard/internal/store"
)

// GSheetExporter periodically rebuilds a season leaderboard and mirrors
// it to a Google Sheet. Each configured season gets its own cron entry
// on a shared scheduler.
type GSheetExporter struct {
	config        *app.Config
	store         store.ContestStore
	scheduler     *gocron.Scheduler
	sheetsService *sheets.Service
}

func NewGSheetExporter(config *app.Config, contestStore store.ContestStore) (*GSheetExporter, error) {
	ctx := context.Background()
	scheduler := gocron.NewScheduler(time.UTC)

	var last *GSheetExporter
	for i := range config.GSheet {
		cfg := config.GSheet[i]

		svc, err := sheets.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath))
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets service: %w", err)
		}

		// One exporter per target: the closure must hold this target's
		// sheets client, not whichever iteration ran last.
		exporter := &GSheetExporter{
			config:        config,
			store:         contestStore,
			scheduler:     scheduler,
			sheetsService: svc,
		}

		_, err = scheduler.Cron(cfg.Schedule).Do(func() {
			if err := exporter.Export(&cfg); err != nil {
				logger.Error.Printf("Export failed for season %s: %v", cfg.SeasonID, err)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to schedule export: %w", err)
		}

		last = exporter
	}

	scheduler.StartAsync()
	return last, nil
}

// Export rebuilds the season's leaderboard rows and overwrites the sheet
// with the fresh standings, header row included.
func (e *GSheetExporter) Export(cfg *app.GSheetConfig) error {
	reconciler := scoring.NewReconciler(e.store, e.config.Scoring.SubmissionBaseXP)
	written, err := reconciler.Run(cfg.SeasonID)
	if err != nil {
		return fmt.Errorf("failed to rebuild leaderboard: %w", err)
	}
	logger.Debug.Printf("Reconciled %d leaderboard rows for season %s", written, cfg.SeasonID)

	season, err := e.store.GetSeason(cfg.SeasonID)
	if err != nil {
		return fmt.Errorf("failed to resolve season: %w", err)
	}

	entries, err := e.store.SeasonLeaderboard(cfg.SeasonID)
	if err != nil {
		return fmt.Errorf("failed to fetch leaderboard: %w", err)
	}

	values := [][]interface{}{
		{"Rank", "Username", "XP", "Wins", "Submissions"},
	}
	for i, entry := range entries {
		values = append(values, []interface{}{
			i + 1,
			entry.Username,
			entry.Experience,
			entry.WinCount,
			entry.SubmissionCount,
		})
	}

	clearRange := fmt.Sprintf("%s!A:E", cfg.SheetName)
	_, err = e.sheetsService.Spreadsheets.Values.Clear(cfg.SheetID, clearRange, &sheets.ClearValuesRequest{}).Do()
	if err != nil {
		return fmt.Errorf("failed to clear sheet: %w", err)
	}

	writeRange := fmt.Sprintf("%s!A1", cfg.SheetName)
	_, err = e.sheetsService.Spreadsheets.Values.Update(cfg.SheetID, writeRange,
		&sheets.ValueRange{Values: values}).ValueInputOption("RAW").Do()
	if err != nil {
		return fmt.Errorf("failed to write leaderboard: %w", err)
	}

	timestamp := fmt.Sprintf("UPD: %s, season %s", time.Now().UTC().Format("2 January 15:04"), season.Name)
	timestampRange := fmt.Sprintf("%s!G1", cfg.SheetName)
	_, err = e.sheetsService.Spreadsheets.Values.Update(cfg.SheetID, timestampRange,
		&sheets.ValueRange{Values: [][]interface{}{{timestamp}}}).ValueInputOption("RAW").Do()

	return err
}
