// Package directory is the narrow view of the chat platform used by the
// registration flow: private channels, messages, members and the role grant.
package directory

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrDMUnavailable means the user does not accept direct messages from the bot.
	ErrDMUnavailable = errors.New("directory: direct messages unavailable")
	// ErrRoleNotFound means the configured role does not exist in the guild.
	ErrRoleNotFound = errors.New("directory: role not found")
	// ErrForbidden means the bot lacks permission for the action.
	ErrForbidden = errors.New("directory: missing permission")
	// ErrMemberNotFound means the user is not a member of the guild.
	ErrMemberNotFound = errors.New("directory: member not found")
	// ErrMessageNotFound means the referenced message was deleted or never existed.
	ErrMessageNotFound = errors.New("directory: message not found")
	// ErrRoleNotConfigured means no role id is configured.
	ErrRoleNotConfigured = errors.New("directory: role not configured")
)

// Discord JSON error codes.
const (
	codeUnknownMember      = 10007
	codeUnknownMessage     = 10008
	codeUnknownRole        = 10011
	codeMissingAccess      = 50001
	codeCannotMessageUser  = 50007
	codeMissingPermissions = 50013
)

// Directory is implemented by Discord and by test fakes.
type Directory interface {
	// OpenDM returns the id of the private channel with userID.
	OpenDM(ctx context.Context, userID string) (string, error)
	// Send posts a message and returns its id.
	Send(ctx context.Context, channelID string, msg *discordgo.MessageSend) (string, error)
	Edit(ctx context.Context, edit *discordgo.MessageEdit) error
	Message(ctx context.Context, channelID, messageID string) (*discordgo.Message, error)
	// GrantRole adds the configured registration role to userID.
	GrantRole(ctx context.Context, userID string) error
	Member(ctx context.Context, userID string) (*discordgo.Member, error)
}

// Classify maps a Discord REST error onto the package's sentinel errors. The
// original error stays in the chain. Errors it does not recognise are
// returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return err
	}
	var sentinel error
	switch restErr.Message.Code {
	case codeCannotMessageUser:
		sentinel = ErrDMUnavailable
	case codeUnknownRole:
		sentinel = ErrRoleNotFound
	case codeMissingAccess, codeMissingPermissions:
		sentinel = ErrForbidden
	case codeUnknownMember:
		sentinel = ErrMemberNotFound
	case codeUnknownMessage:
		sentinel = ErrMessageNotFound
	default:
		return err
	}
	return errors.Join(sentinel, err)
}
