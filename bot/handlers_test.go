/* handlers_test.go
 * Contains tests for the bot handlers using the mocked Discord session
 * Authors: Zachary Bower
 * AI-Generated
 */

package bot

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrhunt/api/api"
	"qrhunt/api/store"
	"qrhunt/api/token"
)

const adminChannel = "chan-admin"

// testBot builds a Bot wired to fresh in-memory mocks
func testBot(t *testing.T) (*Bot, *api.MockStore) {
	t.Helper()
	codec, err := token.NewCodec("claim-secret")
	require.NoError(t, err)

	ms := api.NewMockStore()
	apiPtr := &api.API{Store: ms, Identity: api.NewMockOracle(), Tokens: codec}
	b, err := NewBot("test-token", adminChannel, apiPtr)
	require.NoError(t, err)
	return b, ms
}

// newMessage builds a MessageCreate from a user in the given channel
func newMessage(content, channelID string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{
		Message: &discordgo.Message{
			Content:   content,
			ChannelID: channelID,
			Author:    &discordgo.User{ID: "user-1", Username: "tester"},
		},
	}
}

// region construction tests

func TestNewBotRequiresToken(t *testing.T) {
	_, err := NewBot("", adminChannel, nil)
	require.Error(t, err)
}

// endregion

// region routing tests

func TestNewMessageHandlerIgnoresOwnMessages(t *testing.T) {
	b, _ := testBot(t)
	session := NewMockDiscordSession()

	msg := newMessage("$help", "chan-1")
	b.newMessageHandler(session, msg, "user-1")
	assert.Empty(t, session.SentMessages)
}

func TestNewMessageHandlerRoutesHelp(t *testing.T) {
	b, _ := testBot(t)
	session := NewMockDiscordSession()

	b.newMessageHandler(session, newMessage("$help", "chan-1"), "bot-id")
	require.Len(t, session.SentMessages, 1)
	assert.Contains(t, session.GetLastMessage().Content, "$leaderboard")
	assert.Contains(t, session.GetLastMessage().Content, "$freeze")
}

func TestNewMessageHandlerIgnoresUnknownCommand(t *testing.T) {
	b, _ := testBot(t)
	session := NewMockDiscordSession()

	b.newMessageHandler(session, newMessage("$unknown", "chan-1"), "bot-id")
	assert.Empty(t, session.SentMessages)
}

// endregion

// region leaderboard command tests

func TestLeaderboardHandlerShowsStandings(t *testing.T) {
	b, _ := testBot(t)
	session := NewMockDiscordSession()

	b.leaderboardHandler(session, newMessage("$leaderboard", "chan-1"))
	require.Len(t, session.SentMessages, 1)
	content := session.GetLastMessage().Content
	assert.Contains(t, content, "City Match")
	assert.Contains(t, content, "Morning Wave")
	assert.Contains(t, content, "Torchbearers")
}

func TestLeaderboardHandlerHonorsMask(t *testing.T) {
	b, ms := testBot(t)
	ms.Snapshot = &store.Leaderboard{SchemaVersion: store.LeaderboardSchemaVersion, Masked: true}
	session := NewMockDiscordSession()

	b.leaderboardHandler(session, newMessage("$leaderboard", "chan-1"))
	require.Len(t, session.SentMessages, 1)
	assert.Contains(t, session.GetLastMessage().Content, "frozen")
	assert.NotContains(t, session.GetLastMessage().Content, "Torchbearers")
}

// endregion

// region phase command tests

func TestPhaseHandlerUnconfigured(t *testing.T) {
	b, _ := testBot(t)
	session := NewMockDiscordSession()

	b.phaseHandler(session, newMessage("$phase", "chan-1"))
	require.Len(t, session.SentMessages, 1)
	assert.Contains(t, session.GetLastMessage().Content, "not been configured")
}

func TestPhaseHandlerPreEvent(t *testing.T) {
	b, ms := testBot(t)
	start := time.Now().Add(time.Hour)
	end := time.Now().Add(3 * time.Hour)
	ms.Settings = store.Settings{EventStart: &start, EventEnd: &end}
	session := NewMockDiscordSession()

	b.phaseHandler(session, newMessage("$phase", "chan-1"))
	require.Len(t, session.SentMessages, 1)
	assert.Contains(t, session.GetLastMessage().Content, "not started")
}

// endregion

// region locate command tests

func TestLocateHandler(t *testing.T) {
	b, _ := testBot(t)
	session := NewMockDiscordSession()

	b.locateHandler(session, newMessage("$locate mill", "chan-1"))
	require.Len(t, session.SentMessages, 1)
	assert.Contains(t, session.GetLastMessage().Content, "Old Mill")
}

func TestLocateHandlerQuotedQuery(t *testing.T) {
	b, _ := testBot(t)
	session := NewMockDiscordSession()

	b.locateHandler(session, newMessage("$locate \"Old Mill\"", "chan-1"))
	require.Len(t, session.SentMessages, 1)
	assert.Contains(t, session.GetLastMessage().Content, "Old Mill")
}

func TestLocateHandlerNoQuery(t *testing.T) {
	b, _ := testBot(t)
	session := NewMockDiscordSession()

	b.locateHandler(session, newMessage("$locate", "chan-1"))
	require.Len(t, session.SentMessages, 1)
	assert.Contains(t, session.GetLastMessage().Content, "Usage")
}

func TestLocateHandlerNoMatches(t *testing.T) {
	b, _ := testBot(t)
	session := NewMockDiscordSession()

	b.locateHandler(session, newMessage("$locate zzzzzz", "chan-1"))
	require.Len(t, session.SentMessages, 1)
	assert.Contains(t, session.GetLastMessage().Content, "No locations")
}

// endregion

// region freeze command tests

func TestFreezeHandlerWrongChannel(t *testing.T) {
	b, ms := testBot(t)
	session := NewMockDiscordSession()

	b.freezeHandler(session, newMessage("$freeze on", "chan-public"))
	require.Len(t, session.SentMessages, 1)
	assert.Contains(t, session.GetLastMessage().Content, "admin channel")
	assert.False(t, ms.Settings.FreezeOverride)
}

func TestFreezeHandlerTogglesOverride(t *testing.T) {
	b, ms := testBot(t)
	session := NewMockDiscordSession()

	b.freezeHandler(session, newMessage("$freeze on", adminChannel))
	assert.True(t, ms.Settings.FreezeOverride)
	assert.Contains(t, session.GetLastMessage().Content, "frozen")

	b.freezeHandler(session, newMessage("$freeze off", adminChannel))
	assert.False(t, ms.Settings.FreezeOverride)
	assert.Contains(t, session.GetLastMessage().Content, "unfrozen")
}

func TestFreezeHandlerBadArgument(t *testing.T) {
	b, ms := testBot(t)
	session := NewMockDiscordSession()

	b.freezeHandler(session, newMessage("$freeze maybe", adminChannel))
	require.Len(t, session.SentMessages, 1)
	assert.Contains(t, session.GetLastMessage().Content, "Usage")
	assert.False(t, ms.Settings.FreezeOverride)
}

// endregion
