package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Workiva/go-datastructures/queue"

	"github.com/srediag/mumble-link/api"
	"github.com/srediag/mumble-link/pkg/layout"
)

type command int

const (
	cmdLeft command = iota
	cmdRight
	cmdMiddle
	cmdDistant
	cmdRed
	cmdBlue
	cmdFree
	cmdExit
)

const help = "Commands are: left, right, middle, distant, red, blue, free, exit"

var commandNames = map[string]command{
	"left":    cmdLeft,
	"right":   cmdRight,
	"middle":  cmdMiddle,
	"distant": cmdDistant,
	"red":     cmdRed,
	"blue":    cmdBlue,
	"free":    cmdFree,
	"exit":    cmdExit,
}

func parseCommand(line string) (command, bool) {
	c, ok := commandNames[strings.TrimSpace(line)]
	return c, ok
}

// readCommands forwards the commands read from r to q until exit or EOF,
// which also queues exit.
func readCommands(r io.Reader, q *queue.Queue, out io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		c, ok := parseCommand(scanner.Text())
		if !ok {
			fmt.Fprintln(out, help)
			continue
		}
		if err := q.Put(c); err != nil {
			return err
		}
		if c == cmdExit {
			return nil
		}
	}
	if err := q.Put(cmdExit); err != nil {
		return err
	}
	return scanner.Err()
}

// player drives a session one frame at a time.
type player struct {
	session     api.SharedLink
	commands    *queue.Queue
	out         io.Writer
	statusEvery int

	position layout.Position
	frames   int
}

func newPlayer(session api.SharedLink, commands *queue.Queue, out io.Writer, statusEvery int) *player {
	p := &player{
		session:     session,
		commands:    commands,
		out:         out,
		statusEvery: statusEvery,
		position:    layout.DefaultPosition(),
	}
	p.position.Position = [3]float32{0.005, 0, 0}
	return p
}

// frame runs one frame and returns false once exit was received.
func (p *player) frame() bool {
	p.session.Update(p.position, p.position)
	p.frames++
	if p.frames == p.statusEvery {
		p.frames = 0
		fmt.Fprintf(p.out, "Status: %s\n", p.session.Status())
	}

	for p.commands.Len() > 0 {
		items, err := p.commands.Get(p.commands.Len())
		if err != nil {
			return false
		}
		for _, item := range items {
			if !p.apply(item.(command)) {
				return false
			}
		}
	}
	return true
}

func (p *player) apply(c command) bool {
	switch c {
	case cmdLeft:
		p.position.Position = [3]float32{-2, 0, 0}
	case cmdRight:
		p.position.Position = [3]float32{2, 0, 0}
	case cmdMiddle:
		p.position.Position = [3]float32{0.005, 0, 0}
	case cmdDistant:
		p.position.Position = [3]float32{1000, 0, 0}
	case cmdRed:
		p.session.SetContext([]byte("red"))
	case cmdBlue:
		p.session.SetContext([]byte("blue"))
	case cmdFree:
		p.session.Deactivate()
	case cmdExit:
		return false
	}
	return true
}
