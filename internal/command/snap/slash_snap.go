package snap

import (
	"context"
	"fmt"

	"github.com/keshon/snapshot-bot/internal/command"
	"github.com/keshon/snapshot-bot/internal/snapshot"
	"github.com/keshon/snapshot-bot/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

const optionPolicyID = "policy_id"

// Snapshotter runs one snapshot invocation and replies through r.
type Snapshotter interface {
	Handle(ctx context.Context, req snapshot.Request, r snapshot.Replier) error
}

type SnapCommand struct {
	Snapshots Snapshotter
}

func (c *SnapCommand) Name() string        { return "snap" }
func (c *SnapCommand) Description() string { return "Take a snapshot of Cardano NFTs by policy ID" }

func (c *SnapCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        optionPolicyID,
				Description: "The policy ID of the Cardano NFT collection",
				Required:    true,
			},
		},
	}
}

func (c *SnapCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	slash, ok := inv.Data.(*command.SlashInteractionContext)
	if !ok {
		return fmt.Errorf("snap: unsupported context %T", inv.Data)
	}

	policyID, _ := inv.Option(optionPolicyID)

	// Paging through a large policy takes longer than Discord's 3s window.
	if err := command.RespondDeferred(slash.Session, slash.Event); err != nil {
		return fmt.Errorf("defer response: %w", err)
	}

	return c.Snapshots.Handle(ctx, snapshot.Request{
		PolicyID:     policyID,
		InvocationID: slash.Event.ID,
	}, &interactionReplier{session: slash.Session, event: slash.Event})
}

// interactionReplier edits the deferred response of one interaction.
type interactionReplier struct {
	session command.InteractionSession
	event   *discordgo.InteractionCreate
}

func (r *interactionReplier) ReplyReport(ctx context.Context, content string, file snapshot.Attachment) error {
	return command.EditResponseWithFiles(r.session, r.event, content, &discordgo.File{
		Name:        file.Name,
		ContentType: file.ContentType,
		Reader:      file.Reader,
	})
}

func (r *interactionReplier) ReplyError(ctx context.Context, content string) error {
	return command.EditResponse(r.session, r.event, content)
}
