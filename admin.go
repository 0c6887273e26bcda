package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// CommandParam describes one argument of an admin command
type CommandParam struct {
	Name     string
	Type     string
	Optional bool
}

// Command is an admin command. Remote commands can be called from chat,
// the rest only from the server console or the HTTP admin endpoint.
type Command struct {
	Name   string
	Params []CommandParam
	Help   string
	Remote bool
	Run    func(c *CommandContext)
}

// Usage renders the command with its parameters
func (cmd *Command) Usage() string {
	var b strings.Builder
	b.WriteString(cmd.Name)
	for _, p := range cmd.Params {
		if p.Optional {
			fmt.Fprintf(&b, " [%s %s]", p.Type, p.Name)
		} else {
			fmt.Fprintf(&b, " <%s %s>", p.Type, p.Name)
		}
	}
	return b.String()
}

// CommandContext is one command call
type CommandContext struct {
	g       *Game
	Caller  *Player // nil for the console
	Args    []string
	replies []string
}

// Reply answers the caller
func (c *CommandContext) Reply(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.replies = append(c.replies, msg)
	if c.Caller != nil {
		c.g.serverMessageTo(c.Caller.ID, msg)
	}
}

// Arg returns argument i or "" when it is missing
func (c *CommandContext) Arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

// Rest joins the arguments from i on
func (c *CommandContext) Rest(i int) string {
	if i >= len(c.Args) {
		return ""
	}
	return strings.Join(c.Args[i:], " ")
}

// Dispatcher parses and runs admin commands against a game
type Dispatcher struct {
	g        *Game
	commands map[string]*Command
}

// NewDispatcher creates a dispatcher with the built-in commands
func NewDispatcher(g *Game) *Dispatcher {
	d := &Dispatcher{g: g, commands: make(map[string]*Command)}
	for _, cmd := range builtinCommands(d) {
		d.commands[cmd.Name] = cmd
	}
	return d
}

// Names returns the command names in order
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes line for caller and returns the replies. Must be called on
// the game loop.
func (d *Dispatcher) Run(caller *Player, line string) []string {
	args := splitArgs(line)
	c := &CommandContext{g: d.g, Caller: caller}
	if len(args) == 0 {
		return nil
	}
	name := strings.ToLower(args[0])
	c.Args = args[1:]

	cmd, ok := d.commands[name]
	if !ok {
		c.Reply("Unknown command %s. See ´commands´", name)
		return c.replies
	}
	if caller != nil && !cmd.Remote {
		c.Reply("The command you tried to call is server-side only.")
		return c.replies
	}
	for i, p := range cmd.Params {
		if !p.Optional && i >= len(c.Args) {
			c.Reply("You must give parameter %s %s. See ´help %s´", p.Type, p.Name, cmd.Name)
			return c.replies
		}
	}

	who := "console"
	if caller != nil {
		who = caller.Name
	}
	log.Printf("admin: %s ran %s", who, line)
	cmd.Run(c)
	return c.replies
}

// RunCommand runs a console command on the game loop
func (g *Game) RunCommand(ctx context.Context, line string) ([]string, error) {
	var replies []string
	err := g.Do(ctx, func() {
		replies = g.commands.Run(nil, line)
	})
	return replies, err
}

// commandName returns the lowercased first word of a command line
func commandName(line string) string {
	args := splitArgs(line)
	if len(args) == 0 {
		return ""
	}
	return strings.ToLower(args[0])
}

// splitArgs splits on spaces and keeps "quoted text" together
func splitArgs(line string) []string {
	var (
		args   []string
		cur    strings.Builder
		quoted bool
		inArg  bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			inArg = true
		case r == ' ' && !quoted:
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args
}

func builtinCommands(d *Dispatcher) []*Command {
	return []*Command{
		{
			Name:   "help",
			Params: []CommandParam{{Name: "command", Type: "string", Optional: true}},
			Help:   "Shows help for a command.",
			Remote: true,
			Run: func(c *CommandContext) {
				if c.Arg(0) == "" {
					c.Reply("Usage: help <command>. See ´commands´ for the list.")
					return
				}
				cmd, ok := d.commands[strings.ToLower(c.Arg(0))]
				if !ok {
					c.Reply("Unknown command %s.", c.Arg(0))
					return
				}
				c.Reply("%s: %s", cmd.Usage(), cmd.Help)
			},
		},
		{
			Name:   "commands",
			Help:   "Lists the commands.",
			Remote: true,
			Run: func(c *CommandContext) {
				c.Reply("Commands: %s", strings.Join(d.Names(), ", "))
			},
		},
		{
			Name:   "say",
			Params: []CommandParam{{Name: "message", Type: "string"}},
			Help:   "Sends a server message to everyone.",
			Run: func(c *CommandContext) {
				c.g.serverMessage(c.Rest(0))
			},
		},
		{
			Name:   "close",
			Help:   "Closes the server.",
			Remote: true,
			Run: func(c *CommandContext) {
				c.g.serverMessage("Server is closing.")
				if c.g.shutdown != nil {
					go c.g.shutdown()
				}
			},
		},
		{
			Name: "list",
			Help: "Lists the connected players.",
			Run: func(c *CommandContext) {
				var names []string
				for _, p := range c.g.slots() {
					if p.Human() {
						names = append(names, p.Name)
					}
				}
				c.Reply("%d player(s) connected: %s", len(names), strings.Join(names, ", "))
			},
		},
		{
			Name: "kick",
			Params: []CommandParam{
				{Name: "who", Type: "player"},
				{Name: "reason", Type: "string", Optional: true},
			},
			Help:   "Kicks a player by id or name.",
			Remote: true,
			Run: func(c *CommandContext) {
				p := c.g.getPlayer(c.Arg(0))
				if p == nil {
					c.Reply("Couldn't find player!")
					return
				}
				if p.Zombie {
					c.Reply("You can't kick bots!")
					return
				}
				c.g.kickPlayer(p, c.Caller, c.Rest(1))
				c.Reply("Kicked %s.", p.Name)
			},
		},
		{
			Name:   "login",
			Params: []CommandParam{{Name: "password", Type: "string"}},
			Help:   "Logs in as admin.",
			Remote: true,
			Run: func(c *CommandContext) {
				if c.Caller == nil || c.Caller.Admin {
					c.Reply("You are already an admin!")
					return
				}
				if c.g.auth == nil || !c.g.auth.CheckPassword(c.Caller.Peer.Addr.Addr().String(), c.Arg(0)) {
					log.Printf("admin: %s: Incorrect password!", c.Caller.Name)
					c.Reply("Incorrect password!")
					return
				}
				c.Caller.Admin = true
				c.Reply("You are now an admin!")
			},
		},
		{
			Name:   "op",
			Params: []CommandParam{{Name: "who", Type: "player"}},
			Help:   "Gives a player admin rights.",
			Remote: true,
			Run: func(c *CommandContext) {
				p := c.g.getPlayer(c.Arg(0))
				if p == nil || p.Zombie {
					c.Reply("Couldn't find player!")
					return
				}
				if p.Admin {
					c.Reply("%s is already an admin!", p.Name)
					return
				}
				p.Admin = true
				c.g.serverMessageTo(p.ID, "You are now an admin!")
				c.Reply("Done! :)")
			},
		},
		{
			Name: "rename",
			Params: []CommandParam{
				{Name: "who", Type: "player"},
				{Name: "name", Type: "string"},
			},
			Help:   "Renames a player.",
			Remote: true,
			Run: func(c *CommandContext) {
				p := c.g.getPlayer(c.Arg(0))
				if p == nil {
					c.Reply("Couldn't find player!")
					return
				}
				if p.Zombie {
					c.Reply("You can't rename bots!")
					return
				}
				name := strings.TrimSpace(c.Arg(1))
				if name == "" || len(name) > maxStringLen || c.g.nameInUse(name, p) {
					c.Reply("Name %s is already in use!", name)
					return
				}
				old := p.Name
				p.Name = name
				for _, o := range c.g.slots() {
					if o.Human() {
						o.SendNames = true
					}
				}
				c.g.serverMessage(fmt.Sprintf("%s is now known as %s.", old, name))
			},
		},
		{
			Name:   "botlimit",
			Params: []CommandParam{{Name: "count", Type: "int"}},
			Help:   "Sets how many bots play.",
			Remote: true,
			Run: func(c *CommandContext) {
				n, err := strconv.Atoi(c.Arg(0))
				if err != nil || n < 0 {
					c.Reply("Invalid bot count %q.", c.Arg(0))
					return
				}
				c.g.botCount = min(n, MaxSlots)
				c.Reply("Bot limit set to %d.", c.g.botCount)
			},
		},
		{
			Name:   "botweapons",
			Params: []CommandParam{{Name: "weapons", Type: "int", Optional: true}},
			Help:   "Sets the weapons bots spawn with. No weapons uses the map's pool.",
			Remote: true,
			Run: func(c *CommandContext) {
				var pool []int
				for _, a := range c.Args {
					w, err := strconv.Atoi(a)
					if err != nil || !ValidWeapon(w) {
						c.Reply("Unknown weapon %s.", a)
						return
					}
					pool = append(pool, w)
				}
				c.g.botWeapons = pool
				c.Reply("Bot weapons set.")
			},
		},
		{
			Name:   "debug",
			Help:   "Toggles bot debug drawing.",
			Remote: true,
			Run: func(c *CommandContext) {
				c.g.debug = !c.g.debug
				if c.g.debug {
					c.Reply("Debug drawing on.")
				} else {
					c.Reply("Debug drawing off.")
				}
			},
		},
		{
			Name:   "uptime",
			Help:   "Shows how long the server has been running.",
			Remote: true,
			Run: func(c *CommandContext) {
				since := strings.TrimSpace(humanize.RelTime(c.g.startedAt, c.g.clock(), "", ""))
				c.Reply("This server has been running for %s.", since)
			},
		},
	}
}
