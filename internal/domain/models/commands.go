package models

import "strings"

// CommandType enumerates supported operator command categories.
type CommandType string

const (
	CommandMilkIn   CommandType = "milkin"
	CommandSale     CommandType = "sale"
	CommandSpoilt   CommandType = "spoilt"
	CommandEligible CommandType = "eligible"
	CommandStock    CommandType = "stock"
	CommandUnknown  CommandType = "unknown"
)

// Command represents a parsed operator instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages. The command word is
// case-insensitive; arguments keep their case because they carry IDs and names.
func ParseCommand(message string) Command {
	cmd := Command{Raw: message, Type: CommandUnknown}

	tokens := strings.Fields(strings.TrimSpace(message))
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	switch CommandType(head) {
	case CommandMilkIn, CommandSale, CommandSpoilt, CommandEligible, CommandStock:
		cmd.Type = CommandType(head)
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
