/* main.go
 * The "main" method for running the hunt server. For details see `readme.md`
 * Usage: go run main.go -addr=":8080" -bot="true"
 * Authors: Zachary Bower
 */

package main

import (
	"context"
	"flag"
	"log"
	"os"

	"qrhunt/api/api"
	"qrhunt/bot"
	"qrhunt/web"

	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()

	// Flags
	addrPtr := flag.String("addr", ":8080", "Listen address for the HTTP server, e.g. :8080")
	botPtr := flag.String("bot", "false", "Run the Discord bot alongside the server: takes true or false as argument")

	flag.Parse()

	if err != nil {
		log.Fatal("Error loading .env file")
	}

	runBot, err := convertStrToBool(*botPtr)
	if err != nil {
		log.Fatal("Invalid \"bot\" flag. Should be true or false")
	}

	apiInstance, err := api.NewAPI(os.Getenv("HUNT_DB"), os.Getenv("MONGO_URI"), os.Getenv("CLAIM_TOKEN_SECRET"))
	if err != nil {
		log.Fatalf("failed to initialize API: %v", err)
	}
	defer func() {
		if err := apiInstance.Store.GetClient().Disconnect(context.TODO()); err != nil {
			panic(err)
		}
	}()

	if runBot {
		discordToken := os.Getenv("DISCORD_BOT_TOKEN")
		if discordToken == "" {
			log.Fatal("DISCORD_BOT_TOKEN is required when the bot flag is set")
		}
		b, err := bot.NewBot(discordToken, os.Getenv("ADMIN_CHANNEL_ID"), apiInstance)
		if err != nil {
			log.Fatalf("failed to initialize bot: %v", err)
		}
		go func() {
			if err := b.Run(); err != nil {
				log.Printf("bot stopped: %v", err)
			}
		}()
	}

	log.Fatal(web.Start(web.Config{
		Addr:      *addrPtr,
		API:       apiInstance,
		JWTSecret: os.Getenv("JWT_SECRET"),
	}))
}
