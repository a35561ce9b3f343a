// Package shell implements the minimal line editor and command dispatcher
// that runs as a task on top of the decoded keyboard character stream. The
// command parser and history are treated as an external collaborator; what's
// here is just enough to give the console a keyboard-driven front end to
// exercise, trimmed from gopheros's terminal layering down to a single line
// buffer with no scrollback.
package shell

import "io"

// lineMax bounds how many characters a single unsubmitted line may hold.
// Input past this point is dropped rather than grown without bound, since
// there is no dynamic terminal width to wrap against.
const lineMax = 256

// The state below is unguarded package-level state, safe only because
// exactly one cooperative task ever calls HandleByte - the executor never
// preempts a task mid-poll, so there is no concurrent writer to race
// against. A multi-task shell would need a sync.Spinlock around this state
// instead.
var (
	out      io.Writer
	line     []byte
	commands map[string]func(args []string)
)

// Init wires the shell's output sink and registers its builtin commands.
// Must be called once before the shell task is spawned.
func Init(w io.Writer) {
	out = w
	line = line[:0]
	commands = map[string]func(args []string){
		"help": cmdHelp,
		"echo": cmdEcho,
		"clear": func(args []string) {
			if c, ok := out.(clearer); ok {
				c.Clear()
			}
		},
	}
	writeString("> ")
}

// clearer is implemented by console sinks that support clearing their
// visible contents (console.VGAText's Fill over its full dimensions).
type clearer interface {
	Clear()
}

func writeString(s string) {
	if out != nil {
		out.Write([]byte(s))
	}
}

// HandleByte feeds one decoded keyboard character into the line editor.
// Backspace (0x08) erases the previous character; newline submits the
// line for dispatch; any other printable byte is appended to the buffer
// and echoed.
func HandleByte(b byte) {
	switch b {
	case '\b':
		if len(line) > 0 {
			line = line[:len(line)-1]
			writeString("\b \b")
		}
	case '\n':
		writeString("\n")
		dispatch(string(line))
		line = line[:0]
		writeString("> ")
	default:
		if b < 0x20 || b > 0x7E || len(line) >= lineMax {
			return
		}
		line = append(line, b)
		writeString(string(b))
	}
}
