package botsvc

import (
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

type Bot struct {
	bot     *tgbotapi.BotAPI
	handler *Handler
}

func NewBot(nc *nats.Conn) (*Bot, error) {
	botToken := os.Getenv("TELEGRAM_TOKEN")
	if botToken == "" {
		log.Fatal("TELEGRAM_TOKEN is not set")
	}

	botAPI, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}

	handler := NewHandler(botAPI, NewClient(nc))

	return &Bot{
		bot:     botAPI,
		handler: handler,
	}, nil
}

func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	log.Infof("bot started as @%s", b.bot.Self.UserName)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		msg := update.Message
		switch msg.Command() {
		case "start", "help":
			b.handler.HandleHelp(msg)
		case "newgame":
			b.handler.HandleNewGame(msg)
		case "join":
			b.handler.HandleJoin(msg)
		case "score":
			b.handler.HandleScore(msg)
		case "scores":
			b.handler.HandleCurrentScores(msg)
		case "total":
			b.handler.HandleTotalScores(msg)
		case "endgame":
			b.handler.HandleEndGame(msg)
		case "balance":
			b.handler.HandleBalance(msg)
		case "report":
			b.handler.HandleReport(msg)
		}
	}
}

func (b *Bot) Stop() {
	b.bot.StopReceivingUpdates()
}
