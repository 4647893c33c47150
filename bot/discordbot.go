package bot

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/robertkozin/video-link-resolver/resolve"
	"github.com/robertkozin/video-link-resolver/tr"
)

var (
	tracer     = otel.Tracer("bot")
	urlPattern = regexp.MustCompile(`https://\S+`)
)

const replyTimeout = 45 * time.Second

// Discord replies to messages containing a video link with its download links.
type Discord struct {
	id      string
	session *discordgo.Session

	Token    string
	Resolver MediaResolver
}

func (b *Discord) Start() error {
	dg, err := discordgo.New("Bot " + b.Token)
	if err != nil {
		return fmt.Errorf("discordgo.New: %w", err)
	}
	b.session = dg

	dg.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentDirectMessages | discordgo.IntentMessageContent

	dg.SyncEvents = false
	dg.StateEnabled = false

	dg.AddHandler(b.readyHandler)
	dg.AddHandler(b.messageCreateHandler)

	if err = dg.Open(); err != nil {
		return fmt.Errorf("dg.Open: %w", err)
	}
	return nil
}

func (b *Discord) Close() error {
	if b.session == nil {
		return nil
	}
	return b.session.Close()
}

func (b *Discord) readyHandler(s *discordgo.Session, m *discordgo.Ready) {
	b.id = m.User.ID
	slog.Info("discord bot ready", "user", m.User.Username)
}

func (b *Discord) messageCreateHandler(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == b.id || m.Author.Bot {
		return
	}

	url := findSupportedURL(m.Content)
	if url == "" {
		return
	}

	go b.replyToMessage(context.Background(), s, m, url)
}

// findSupportedURL returns the first link in content that points at a known
// video platform.
func findSupportedURL(content string) string {
	for _, url := range urlPattern.FindAllString(content, -1) {
		if resolve.IsSupported(url) {
			return url
		}
	}
	return ""
}

func (b *Discord) replyToMessage(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, url string) {
	var err error
	ctx, span := tracer.Start(ctx, "discord_reply")
	defer tr.End(span, &err)
	span.SetAttributes(attribute.String("channel_id", m.ChannelID), attribute.String("url", url))

	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	result, err := b.Resolver.Resolve(ctx, url)
	if err != nil {
		return
	}

	reply := &discordgo.MessageSend{
		Content:   buildReply(withDefaults(result)),
		Reference: m.Reference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
		},
	}

	_, err = s.ChannelMessageSendComplex(m.ChannelID, reply)
	if err != nil {
		slog.Error("channel send message", "channel_id", m.ChannelID, "url", url, "err", err)
	}
}

// buildReply renders a result as markdown links wrapped in <> so Discord does
// not unfurl each of them.
func buildReply(res resolve.MediaLinkResult) string {
	var sb strings.Builder
	sb.WriteString("**" + escapeMarkdown(res.Title) + "**")
	for _, item := range res.Items {
		label := item.Label
		if item.Kind == resolve.KindAudio {
			label = "audio"
		}
		fmt.Fprintf(&sb, "\n[%s .%s](<%s>)", label, item.Extension, item.URL)
		if item.SizeHint != "" {
			sb.WriteString(" " + item.SizeHint)
		}
	}
	return sb.String()
}

var markdownReplacer = strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`", "~", `\~`, "|", `\|`)

func escapeMarkdown(s string) string {
	return markdownReplacer.Replace(s)
}
