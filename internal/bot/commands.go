package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/google/uuid"

	"github.com/piparkaq/hackboard/internal/metrics"
	"github.com/piparkaq/hackboard/internal/models"
	"github.com/piparkaq/hackboard/internal/scoring"
)

const (
	userHelp = `Available commands:
/contests - List contests
/prizes <contest_id> - Prize table for a contest
/winners <contest_id> - Winners of a contest
/seasons - List seasons
/leaderboard <season_id> - Season leaderboard
/help - Show this message`

	adminHelp = `Available commands:
/contests - List contests
/prizes <contest_id> - Prize table for a contest
/winners <contest_id> - Winners of a contest
/seasons - List seasons
/leaderboard <season_id> - Season leaderboard
/bind <contest_id> <name> - Bind this chat to a contest
/award add <contest_id> <type> position <n> value <v> - Attach an award
/award list <contest_id> - List award rows with ids
/winner set <contest_id> <username> <award_id> - Record a winner
/token <email> - Issue an API token for an organizer
/help - Show this message

Examples:
/award add 4f7d…c2 "Cash Prize" position 1 value 1000
/award list 4f7d…c2
/winner set 4f7d…c2 jane.doe 91bb…7a`
)

type commandHandler func(*tgbotapi.Message) error

func (b *Bot) routeUserCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"start":       b.handleStart,
		"help":        b.handleHelp,
		"contests":    b.handleContests,
		"prizes":      b.handlePrizes,
		"winners":     b.handleWinners,
		"seasons":     b.handleSeasons,
		"leaderboard": b.handleLeaderboard,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) routeAdminCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"bind":   b.handleBind,
		"award":  b.handleAward,
		"winner": b.handleWinner,
		"token":  b.handleToken,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		b.sendHelp(msg.Chat.ID)
		return
	}

	cmd := msg.Command()

	if handler, ok := b.routeUserCommands(cmd); ok {
		if err := handler(msg); err != nil {
			logger.Error.Printf("Command error: %v", err)
			b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error: %v", err))
		}
		return
	}

	if b.admins[msg.From.ID] {
		if handler, ok := b.routeAdminCommands(cmd); ok {
			if err := handler(msg); err != nil {
				logger.Error.Printf("Command error: %v", err)
				b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error: %v", err))
			}
		}
		return
	}

	b.sendHelp(msg.Chat.ID)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	var text string
	if b.admins[msg.From.ID] {
		text = adminHelp
	} else {
		text = userHelp
	}

	return b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) sendHelp(chatID int64) error {
	return b.sendMessage(chatID, "Use commands to interact with the bot. Send /help for the list.")
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	text := "Hi! I keep an eye on contests for you.\n\n"
	if b.admins[msg.From.ID] {
		text += "You are an organizer. Use /help for the command list."
	} else {
		text += "Use /contests to see what's running."
	}

	return b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) handleContests(msg *tgbotapi.Message) error {
	stats, err := b.store.ListContestStats()
	if err != nil {
		return fmt.Errorf("failed to list contests: %v", err)
	}

	if len(stats) == 0 {
		return b.sendMessage(msg.Chat.ID, "No contests found")
	}

	var out strings.Builder
	out.WriteString("Contests:\n\n")
	for _, s := range stats {
		start := time.Unix(s.StartDate, 0)
		end := time.Unix(s.EndDate, 0)
		out.WriteString(fmt.Sprintf("🏁 %s [%s]\n"+
			"🗓 %s — %s\n"+
			"👥 %d participants, 💰 %d total prize value\n"+
			"id: %s\n\n",
			s.Title,
			s.Difficulty,
			start.UTC().Format("2006-Jan-02"),
			end.UTC().Format("2006-Jan-02"),
			s.ParticipantCount,
			s.PrizeTotal,
			s.ID,
		))
	}

	return b.sendMessage(msg.Chat.ID, out.String())
}

// contestArg resolves the command argument or falls back to the contest
// bound to this chat via /bind.
func (b *Bot) contestArg(msg *tgbotapi.Message) (string, error) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) > 0 {
		return args[0], nil
	}

	if b.tokens != nil {
		mapping, err := b.tokens.FetchContestMappingByChatID(context.Background(), msg.Chat.ID)
		if err == nil {
			return mapping.ContestID, nil
		}
	}

	return "", fmt.Errorf("specify a contest id or /bind one to this chat")
}

func (b *Bot) handlePrizes(msg *tgbotapi.Message) error {
	contestID, err := b.contestArg(msg)
	if err != nil {
		return err
	}

	rows, err := b.store.ListContestPrizes(contestID)
	if err != nil {
		return fmt.Errorf("failed to fetch prizes: %v", err)
	}

	groups := scoring.GroupPrizes(rows)
	if len(groups) == 0 {
		return b.sendMessage(msg.Chat.ID, "No prizes configured for this contest")
	}

	var out strings.Builder
	out.WriteString("Prizes:\n\n")
	for _, group := range groups {
		out.WriteString(fmt.Sprintf("🏆 Place %d\n", group.Position))
		for _, award := range group.Awards {
			out.WriteString(fmt.Sprintf("   %s: %d\n", award.AwardType, award.Value))
		}
	}

	return b.sendMessage(msg.Chat.ID, out.String())
}

func (b *Bot) handleWinners(msg *tgbotapi.Message) error {
	contestID, err := b.contestArg(msg)
	if err != nil {
		return err
	}

	winners, err := b.store.ListContestWinners(contestID)
	if err != nil {
		return fmt.Errorf("failed to fetch winners: %v", err)
	}

	if len(winners) == 0 {
		return b.sendMessage(msg.Chat.ID, "No winners recorded yet")
	}

	var out strings.Builder
	out.WriteString("Winners:\n\n")
	for _, w := range winners {
		out.WriteString(fmt.Sprintf("🥇 %s — %d points, %d swag\n", w.Username, w.Points, w.Swag))
	}

	return b.sendMessage(msg.Chat.ID, out.String())
}

func (b *Bot) handleSeasons(msg *tgbotapi.Message) error {
	seasons, err := b.store.ListSeasons()
	if err != nil {
		return fmt.Errorf("failed to list seasons: %v", err)
	}

	if len(seasons) == 0 {
		return b.sendMessage(msg.Chat.ID, "No seasons found")
	}

	var out strings.Builder
	out.WriteString("Seasons:\n\n")
	for _, s := range seasons {
		start := time.Unix(s.StartDate, 0)
		end := time.Unix(s.EndDate, 0)
		out.WriteString(fmt.Sprintf("📅 %s\n"+
			"🗓 %s — %s\n"+
			"id: %s\n\n",
			s.Name,
			start.UTC().Format("2006-Jan-02"),
			end.UTC().Format("2006-Jan-02"),
			s.ID,
		))
	}

	return b.sendMessage(msg.Chat.ID, out.String())
}

func (b *Bot) handleLeaderboard(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		return fmt.Errorf("specify a season: /leaderboard <season_id>")
	}
	seasonID := args[0]

	season, err := b.store.GetSeason(seasonID)
	if err != nil {
		return fmt.Errorf("failed to resolve season: %v", err)
	}

	entries, err := b.store.SeasonLeaderboard(seasonID)
	if err != nil {
		return fmt.Errorf("failed to fetch leaderboard: %v", err)
	}

	if len(entries) == 0 {
		return b.sendMessage(msg.Chat.ID, fmt.Sprintf("Leaderboard for %s is empty", season.Name))
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("Leaderboard — %s:\n\n", season.Name))
	for i, e := range entries {
		out.WriteString(fmt.Sprintf("%d. %s — %d XP (%d wins, %d submissions)\n",
			i+1,
			e.Username,
			e.Experience,
			e.WinCount,
			e.SubmissionCount,
		))
	}

	return b.sendMessage(msg.Chat.ID, out.String())
}

func (b *Bot) handleBind(msg *tgbotapi.Message) error {
	if b.tokens == nil {
		return fmt.Errorf("chat binding requires redis, it is not configured")
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		return fmt.Errorf("usage: /bind <contest_id> <name>")
	}
	contestID := args[0]

	contest, err := b.store.GetContest(contestID)
	if err != nil {
		return fmt.Errorf("failed to resolve contest %s: %v", contestID, err)
	}

	name := contest.Title
	if len(args) > 1 {
		name = strings.Join(args[1:], " ")
	}

	err = b.tokens.AssociateChatWithContest(context.Background(), msg.Chat.ID, &models.ChatContestMapping{
		ContestID:       contestID,
		Name:            name,
		AssociationTime: time.Now().UTC(),
		RegisteredBy:    msg.From.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to bind chat: %v", err)
	}

	return b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Chat bound to contest %s (%s)", contest.Title, contestID))
}

func (b *Bot) handleAward(msg *tgbotapi.Message) error {
	args := splitArgs(msg.CommandArguments())
	if len(args) < 1 {
		return b.sendMessage(msg.Chat.ID, "Usage:\n"+
			"/award add <contest_id> <type> position <n> value <v> - Attach an award\n"+
			"/award list <contest_id> - List award rows")
	}

	switch args[0] {
	case "add":
		return b.handleAwardAdd(msg.Chat.ID, args[1:])
	case "list":
		if len(args) < 2 {
			return fmt.Errorf("specify a contest: /award list <contest_id>")
		}
		return b.handleAwardList(msg.Chat.ID, args[1])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func (b *Bot) handleAwardAdd(chatID int64, args []string) error {
	if len(args) < 6 {
		return fmt.Errorf("usage: add <contest_id> <type> position <n> value <v>")
	}

	contestID := args[0]
	typeName := args[1]

	var position int
	var value int64
	var err error

	for i := 2; i < len(args); i += 2 {
		if i+1 >= len(args) {
			return fmt.Errorf("missing value for %s", args[i])
		}

		switch args[i] {
		case "position":
			position, err = strconv.Atoi(args[i+1])
			if err != nil {
				return fmt.Errorf("invalid position: %v", err)
			}
		case "value":
			value, err = strconv.ParseInt(args[i+1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value: %v", err)
			}
		default:
			return fmt.Errorf("unknown parameter: %s", args[i])
		}
	}

	awardType, err := b.store.GetAwardTypeByName(typeName)
	if err != nil {
		return fmt.Errorf("unknown award type %q: %v", typeName, err)
	}

	award := &models.ContestAward{
		ID:          uuid.NewString(),
		ContestID:   contestID,
		AwardTypeID: awardType.ID,
		Position:    position,
		Value:       value,
	}

	if err := b.store.CreateContestAward(award); err != nil {
		return fmt.Errorf("failed to save award: %v", err)
	}

	metrics.PrizeValueHistogram.WithLabelValues(typeName).Observe(float64(value))

	return b.sendMessage(chatID, fmt.Sprintf("✅ Award attached to contest %s:\n"+
		"%s for place %d, value %d\n"+
		"id: %s",
		contestID,
		typeName,
		position,
		value,
		award.ID,
	))
}

func (b *Bot) handleAwardList(chatID int64, contestID string) error {
	awards, err := b.store.ListContestAwards(contestID)
	if err != nil {
		return fmt.Errorf("failed to list awards: %v", err)
	}

	if len(awards) == 0 {
		return b.sendMessage(chatID, "No awards configured")
	}

	typeNames := map[int64]string{}
	types, err := b.store.ListAwardTypes()
	if err != nil {
		return fmt.Errorf("failed to list award types: %v", err)
	}
	for _, t := range types {
		typeNames[t.ID] = t.Name
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("Awards of contest %s:\n\n", contestID))
	for _, award := range awards {
		out.WriteString(fmt.Sprintf(
			"👉🏻 place %d: %s, value %d\nid: %s\n\n",
			award.Position,
			typeNames[award.AwardTypeID],
			award.Value,
			award.ID,
		))
	}

	return b.sendMessage(chatID, out.String())
}

func (b *Bot) handleWinner(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		return b.sendMessage(msg.Chat.ID, "Usage:\n"+
			"/winner set <contest_id> <username> <award_id> - Record a winner")
	}

	switch args[0] {
	case "set":
		if len(args) < 4 {
			return fmt.Errorf("usage: set <contest_id> <username> <award_id>")
		}
		return b.handleWinnerSet(msg.Chat.ID, args[1], args[2], args[3])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func (b *Bot) handleWinnerSet(chatID int64, contestID, username, awardID string) error {
	if _, err := b.recordWinner(contestID, username, awardID); err != nil {
		return err
	}

	return b.sendMessage(chatID, fmt.Sprintf("✅ Winner recorded: %s takes award %s in contest %s",
		username,
		awardID,
		contestID,
	))
}

// recordWinner resolves the username and checks the award actually hangs
// off the named contest before inserting. A mistyped pair must not leak
// another contest's award values into this contest's winner sums.
func (b *Bot) recordWinner(contestID, username, awardID string) (*models.Winner, error) {
	user, err := b.store.GetUserByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %s: %v", username, err)
	}

	awards, err := b.store.ListContestAwards(contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list awards: %v", err)
	}
	found := false
	for _, award := range awards {
		if award.ID == awardID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("award %s does not belong to contest %s", awardID, contestID)
	}

	winner := &models.Winner{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		ContestID:      contestID,
		ContestAwardID: awardID,
		CreatedAt:      time.Now().Unix(),
	}

	if err := b.store.CreateWinner(winner); err != nil {
		return nil, fmt.Errorf("failed to record winner: %v", err)
	}

	return winner, nil
}

func (b *Bot) handleToken(msg *tgbotapi.Message) error {
	if b.tokens == nil {
		return fmt.Errorf("token issuing requires redis, it is not configured")
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		return fmt.Errorf("usage: /token <email>")
	}
	email := args[0]

	info, isNew, err := b.tokens.FetchOrCreateToken(context.Background(), email)
	if err != nil {
		return fmt.Errorf("failed to issue token: %v", err)
	}

	state := "existing"
	if isNew {
		state = "new"
	}

	return b.sendMessage(msg.Chat.ID, fmt.Sprintf("Token for %s (%s):\n%s", email, state, info.Token))
}

// splitArgs splits on whitespace but keeps double-quoted phrases whole,
// so award type names like "Cash Prize" survive.
func splitArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false

	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ' ' && !inQuotes:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}

	return args
}

func (b *Bot) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}
