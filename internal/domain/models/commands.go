package models

import "strings"

// CommandType enumerates the status commands a farmer can send over WhatsApp.
type CommandType string

const (
	CommandTasks   CommandType = "tasks"
	CommandFeed    CommandType = "feed"
	CommandHatch   CommandType = "hatch"
	CommandMeds    CommandType = "meds"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

var commandAliases = map[string]CommandType{
	"tasks":       CommandTasks,
	"today":       CommandTasks,
	"feed":        CommandFeed,
	"hatch":       CommandHatch,
	"incubations": CommandHatch,
	"meds":        CommandMeds,
	"medications": CommandMeds,
	"help":        CommandHelp,
	"start":       CommandHelp,
}

// Command represents a parsed instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text. The leading slash is optional.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(strings.ToLower(message))
	if len(tokens) == 0 {
		return cmd
	}

	if t, ok := commandAliases[strings.TrimPrefix(tokens[0], "/")]; ok {
		cmd.Type = t
	}
	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}
	return cmd
}
