package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandSend    Command = "send"
	CommandWatch   Command = "watch"
	CommandDemo    Command = "demo"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandSend:    {},
	CommandWatch:   {},
	CommandDemo:    {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

// takesArgs marks commands that accept trailing positional arguments.
var takesArgs = map[Command]struct{}{
	CommandSend: {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	Args       []string
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp

			if _, ok := takesArgs[cmd]; ok {
				parsed.Args = args[i+1:]
				return parsed, nil
			}
			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command>

Commands:
  send <pos>...   Press+release keys at linear matrix positions (0-based)
  watch           Stream firmware events until interrupted
  demo            Interactive session: watch events and inject keys
  doctor          Run configuration and environment checks
  version         Print version information
  help            Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/keywire/config.conf)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
