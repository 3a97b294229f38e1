/* bot.go
 * Contains the Discord bot used by event staff during the hunt. Requires a discord bot
 * token and ApiPtr, both of which are passed in from main.go. The freeze command is only
 * honored in the configured admin channel.
 * Authors: Zachary Bower
 */

package bot

import (
	"fmt"
	"strings"

	"qrhunt/api/api"
)

type Bot struct {
	BotToken       string
	AdminChannelID string
	APIPtr         *api.API
}

func NewBot(botToken string, adminChannelID string, apiPtr *api.API) (*Bot, error) {
	if botToken == "" {
		return nil, fmt.Errorf("botToken is required but none was provided")
	}

	return &Bot{
		BotToken:       botToken,
		AdminChannelID: adminChannelID,
		APIPtr:         apiPtr,
	}, nil
}

// Helper function to check if a string starts with a given substring
// Preconditions: Recieves an input string and a substring
// Postconditions: Returns true if the substring is at the start of the string, else returns false
func startsWith(inputString string, substring string) bool {
	return strings.HasPrefix(inputString, substring)
}
