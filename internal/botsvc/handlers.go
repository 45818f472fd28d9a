package botsvc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/tdnguyen/cardtable-services/internal/comm"
)

// MessageSender is the slice of the telegram API the handlers use.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Handler struct {
	Bot    MessageSender
	Client *Client
}

func NewHandler(bot MessageSender, client *Client) *Handler {
	return &Handler{
		Bot:    bot,
		Client: client,
	}
}

const helpText = `Available commands:
/newgame [poker|tienlen] - Start a new game
/join - Join the active game
/score <points> [rank] - Record your score
/scores - Scores of the current round
/total - Total scores of the game
/endgame - End the active game
/balance - Check your balance
/report [daily|weekly|monthly] - View financial report`

func (h *Handler) HandleHelp(msg *tgbotapi.Message) {
	h.reply(msg.Chat.ID, "Welcome to the Poker & Tien Len manager bot!\n\n"+helpText)
}

func (h *Handler) HandleNewGame(msg *tgbotapi.Message) {
	gameType := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	if gameType != "poker" && gameType != "tienlen" {
		h.reply(msg.Chat.ID, "Please specify game type: /newgame poker or /newgame tienlen")
		return
	}

	game, err := h.Client.CreateGame(gameType)
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("New %s game created! Round %d is open.", game.Type, game.CurrentRoundNumber))
}

func (h *Handler) HandleJoin(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	info := &comm.PlayerInfo{
		Username:    msg.From.UserName,
		DisplayName: strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName),
	}
	_, err := h.Client.JoinGame(playerID(msg.From), info)
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("%s joined the game!", displayName(msg.From)))
}

func (h *Handler) HandleScore(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	points, rank, err := parseScoreArgs(msg.CommandArguments())
	if err != nil {
		h.reply(msg.Chat.ID, "Usage: /score <points> [rank], e.g. /score -50 or /score 3 1")
		return
	}

	result, err := h.Client.RecordScore(playerID(msg.From), points, rank)
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.reply(msg.Chat.ID, formatRoundResult(result))
}

func (h *Handler) HandleCurrentScores(msg *tgbotapi.Message) {
	scores, err := h.Client.GetCurrentScores()
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.reply(msg.Chat.ID, formatCurrentScores(scores))
}

func (h *Handler) HandleTotalScores(msg *tgbotapi.Message) {
	totals, err := h.Client.GetTotalScores()
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.reply(msg.Chat.ID, formatTotals(totals))
}

func (h *Handler) HandleEndGame(msg *tgbotapi.Message) {
	game, err := h.Client.EndGame()
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.reply(msg.Chat.ID, formatGameEnd(game))
}

func (h *Handler) HandleBalance(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	balance, err := h.Client.GetPlayerBalance(playerID(msg.From))
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("Your balance: %s", balance.StringFixed(2)))
}

func (h *Handler) HandleReport(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	period := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	if period == "" {
		period = "daily"
	}
	start, end, err := reportPeriod(period, time.Now())
	if err != nil {
		h.reply(msg.Chat.ID, "Usage: /report [daily|weekly|monthly]")
		return
	}

	report, err := h.Client.GetReport(playerID(msg.From), start, end)
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.reply(msg.Chat.ID, fmt.Sprintf("%s report: %d transactions, net %s",
		period, len(report.Transactions), report.Balance.StringFixed(2)))
}

func (h *Handler) reply(chatID int64, text string) {
	if _, err := h.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Errorf("failed to send message: %s", err)
	}
}

func (h *Handler) replyError(chatID int64, err error) {
	h.reply(chatID, "Error: "+err.Error())
}

func playerID(user *tgbotapi.User) string {
	return strconv.FormatInt(user.ID, 10)
}

func displayName(user *tgbotapi.User) string {
	if user.FirstName != "" {
		return user.FirstName
	}
	return user.UserName
}
