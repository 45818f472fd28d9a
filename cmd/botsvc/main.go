package main

import (
	"os"
	"os/signal"

	config "github.com/tdnguyen/cardtable-services/configs"
	"github.com/tdnguyen/cardtable-services/internal/botsvc"
	nats "github.com/tdnguyen/cardtable-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "bot"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {

	// Connect to NATS
	n, err := nats.Connect(SERVICE_NAME + " service")
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	bot, err := botsvc.NewBot(n.Conn)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	go bot.Start()
	log.Infof("%s service running", SERVICE_NAME)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	bot.Stop()
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
