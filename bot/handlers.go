/* handlers.go
 * Contains testable handler methods that accept DiscordSession interface
 * Authors: Zachary Bower
 */

package bot

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-andiamo/splitter"

	"qrhunt/api/logic"
)

// helpMessageHandler handles the $help command with a DiscordSession interface
func (b *Bot) helpMessageHandler(session DiscordSession, message *discordgo.MessageCreate) {
	var res strings.Builder
	res.WriteString("QR Hunt Bot\n")
	res.WriteString("`$leaderboard`: shows the current standings per match and group. While the leaderboard is frozen for the finale, standings are hidden\n")
	res.WriteString("`$phase`: shows the current event phase and the next milestone\n")
	res.WriteString("`$locate query`: searches location titles, best match first. Queries with spaces need to be encased in \" (e.g. \"Old Mill\")\n")
	res.WriteString("`$freeze on|off`: manually freezes or unfreezes the public leaderboard. Only works in the admin channel\n")
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// leaderboardHandler handles the $leaderboard command with a DiscordSession interface
func (b *Bot) leaderboardHandler(session DiscordSession, message *discordgo.MessageCreate) {
	lb, err := b.APIPtr.GetLeaderboard()
	if err != nil {
		log.Println(err)
		session.ChannelMessageSend(message.ChannelID, "An error occured getting the leaderboard")
		return
	}

	if lb.Masked {
		session.ChannelMessageSend(message.ChannelID, "The leaderboard is frozen until the finale. Keep hunting!")
		return
	}

	var res strings.Builder
	if lb.UnassignedNotice {
		res.WriteString("Some teams are not assigned to a group yet and are listed under Unassigned\n")
	}
	for _, match := range lb.Matches {
		res.WriteString(fmt.Sprintf("**%s**\n", match.Name))
		for _, group := range match.Groups {
			res.WriteString(fmt.Sprintf("__%s__\n", group.Name))
			for _, entry := range group.Entries {
				res.WriteString(fmt.Sprintf("%d. %s - %d points (%d solved", entry.Rank, entry.TeamName, entry.Score, entry.SolvedCount))
				if entry.ElapsedSeconds != nil {
					res.WriteString(fmt.Sprintf(", %s", (time.Duration(*entry.ElapsedSeconds) * time.Second).String()))
				}
				res.WriteString(")\n")
			}
		}
	}
	if res.Len() == 0 {
		res.WriteString("No standings yet")
	}
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// phaseHandler handles the $phase command with a DiscordSession interface
func (b *Bot) phaseHandler(session DiscordSession, message *discordgo.MessageCreate) {
	info, err := b.APIPtr.EventPhase()
	if err != nil {
		log.Println(err)
		session.ChannelMessageSend(message.ChannelID, "An error occured getting the event phase")
		return
	}

	var res string
	switch info.Phase {
	case logic.PhasePre:
		res = fmt.Sprintf("The hunt has not started yet. Starts at %s", info.CountdownTarget.Format(time.RFC1123))
	case logic.PhaseRunning:
		res = fmt.Sprintf("The hunt is on! Next milestone at %s", info.CountdownTarget.Format(time.RFC1123))
	case logic.PhaseFrozen:
		res = fmt.Sprintf("The leaderboard is frozen. The hunt ends at %s", info.CountdownTarget.Format(time.RFC1123))
	case logic.PhaseFinished:
		res = "The hunt is over. Final standings are up!"
	default:
		res = "The event window has not been configured yet"
	}
	session.ChannelMessageSend(message.ChannelID, res)
}

// locateHandler handles the $locate command with a DiscordSession interface
func (b *Bot) locateHandler(session DiscordSession, message *discordgo.MessageCreate) {
	spaceSplitter, _ := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	args, _ := spaceSplitter.Split(message.Content)
	if len(args) < 2 {
		session.ChannelMessageSend(message.ChannelID, "Usage: $locate query")
		return
	}
	query := strings.Trim(strings.Join(args[1:], " "), "\"")

	locations, err := b.APIPtr.SearchLocations(query)
	if err != nil {
		log.Println(err)
		session.ChannelMessageSend(message.ChannelID, "An error occured searching locations")
		return
	}
	if len(locations) == 0 {
		session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("No locations matching \"%s\"", query))
		return
	}

	var res strings.Builder
	res.WriteString("Matching locations:\n")
	for _, loc := range locations {
		res.WriteString(fmt.Sprintf("- %s (%s)\n", loc.Title, loc.ID))
	}
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// freezeHandler handles the $freeze command with a DiscordSession interface.
// Only messages in the admin channel are honored.
func (b *Bot) freezeHandler(session DiscordSession, message *discordgo.MessageCreate) {
	if b.AdminChannelID == "" || message.ChannelID != b.AdminChannelID {
		session.ChannelMessageSend(message.ChannelID, "The freeze command only works in the admin channel")
		return
	}

	args := strings.Fields(message.Content)
	if len(args) != 2 {
		session.ChannelMessageSend(message.ChannelID, "Usage: $freeze on|off")
		return
	}

	var frozen bool
	switch strings.ToLower(args[1]) {
	case "on", "true":
		frozen = true
	case "off", "false":
		frozen = false
	default:
		session.ChannelMessageSend(message.ChannelID, "Usage: $freeze on|off")
		return
	}

	if err := b.APIPtr.SetFreezeState(frozen); err != nil {
		log.Println(err)
		session.ChannelMessageSend(message.ChannelID, "An error occured updating the freeze state")
		return
	}

	if frozen {
		session.ChannelMessageSend(message.ChannelID, "Leaderboard frozen")
	} else {
		session.ChannelMessageSend(message.ChannelID, "Leaderboard unfrozen")
	}
}

// newMessageHandler routes messages to appropriate handlers with a DiscordSession interface
// botUserID is the bot's user ID to prevent self-responses
func (b *Bot) newMessageHandler(session DiscordSession, message *discordgo.MessageCreate, botUserID string) {
	// Prevent bot from responding to its own messages
	if message.Author.ID == botUserID {
		return
	}

	// Route to appropriate handler
	switch {
	case startsWith(message.Content, "$help"):
		b.helpMessageHandler(session, message)

	case startsWith(message.Content, "$leaderboard"):
		b.leaderboardHandler(session, message)

	case startsWith(message.Content, "$phase"):
		b.phaseHandler(session, message)

	case startsWith(message.Content, "$locate"):
		b.locateHandler(session, message)

	case startsWith(message.Content, "$freeze"):
		b.freezeHandler(session, message)
	}
}
