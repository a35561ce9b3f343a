package shell

import "strings"

// dispatch parses one submitted line and runs the matching builtin. An
// empty line and an unknown command are both quiet no-ops beyond a short
// message - there is no history to recall, keeping the command parser
// intentionally thin.
func dispatch(input string) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return
	}

	cmd, exists := commands[fields[0]]
	if !exists {
		writeString("unknown command: " + fields[0] + "\n")
		return
	}
	cmd(fields[1:])
}

func cmdHelp([]string) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	writeString(strings.Join(names, " ") + "\n")
}

func cmdEcho(args []string) {
	writeString(strings.Join(args, " ") + "\n")
}
