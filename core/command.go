package core

// ByteSource supplies bytes from the host channel without blocking.
type ByteSource interface {
	// TryReadByte returns the next buffered byte, or ok=false when no byte
	// is waiting. It must never block.
	TryReadByte() (byte, bool)
}

// Command maps a single host byte to a target mode.
type Command struct {
	Flag        byte
	Target      Mode
	Description string
}

// The host wire protocol is single ASCII bytes; everything outside this table
// is discarded without a response, as the channel has no error framing.
var commands = []Command{
	{Flag: '1', Target: ModeGrip, Description: "start grip strength assessment"},
	{Flag: '2', Target: ModeStiffness, Description: "start joint stiffness assessment"},
	{Flag: '3', Target: ModeStopping, Description: "stop and release the actuator"},
}

// Menu returns the command menu lines emitted during the boot sequence.
func Menu() []string {
	lines := make([]string, 0, len(commands))
	for _, cmd := range commands {
		lines = append(lines, "Send '"+string(cmd.Flag)+"' to "+cmd.Description)
	}
	return lines
}

// Interpreter polls the host channel and drives the mode state machine.
type Interpreter struct {
	src   ByteSource
	sm    *StateMachine
	table map[byte]Mode
}

func NewInterpreter(src ByteSource, sm *StateMachine) *Interpreter {
	table := make(map[byte]Mode, len(commands))
	for _, cmd := range commands {
		table[cmd.Flag] = cmd.Target
	}

	return &Interpreter{
		src:   src,
		sm:    sm,
		table: table,
	}
}

// Poll consumes at most one buffered byte per tick. A recognized command byte
// transitions the state machine; anything else is silently discarded.
func (i *Interpreter) Poll() {
	b, ok := i.src.TryReadByte()
	if !ok {
		return
	}

	target, ok := i.table[b]
	if !ok {
		return
	}

	i.sm.Set(target)
}
