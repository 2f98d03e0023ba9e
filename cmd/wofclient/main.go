// Package main provides a thin terminal client for the game server: it logs
// in, forwards typed commands as wire messages, and prints every inbound
// message in a readable form.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/z26games/wof/internal/config"
	"github.com/z26games/wof/internal/game/match"
	"github.com/z26games/wof/internal/netwire"
	"github.com/z26games/wof/internal/observability"
)

const usage = `commands:
  join            take a seat in a game
  start           start your game (empty seats are filled with bots)
  spin            spin the wheel
  guess <letter>  guess a letter
  solve <phrase>  guess the whole phrase
  update          fetch the phrase catalogue and leaderboard
  new             rematch an ended game
  leave           leave your game
  quit            log out and exit
`

func main() {
	addr := flag.String("addr", "localhost:56969", "game server address")
	name := flag.String("name", "", "player name")
	join := flag.Bool("join", false, "join a game immediately after login")
	flag.Parse()

	if *name == "" {
		log.Fatal("missing -name")
	}

	// Terminal output belongs to the game; keep the transport log quiet.
	logger, err := observability.NewLogger(config.LoggingConfig{Level: "warn", Format: "console"})
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	client, err := netwire.Dial(*addr, logger)
	if err != nil {
		log.Fatalf("connecting to %s: %v", *addr, err)
	}
	defer client.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range client.Messages() {
			printMessage(msg)
		}
		fmt.Println("server closed the connection")
	}()

	if *join {
		send(client, netwire.Message{Action: netwire.ActionLoginJoin, Player: *name})
	} else {
		send(client, netwire.Message{Action: netwire.ActionLogin, Player: *name})
	}

	fmt.Print(usage)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		switch strings.ToLower(cmd) {
		case "join":
			send(client, netwire.Message{Action: netwire.ActionJoin, Player: *name})
		case "start":
			send(client, netwire.Message{Action: netwire.ActionStart, Player: *name})
		case "spin":
			send(client, netwire.Message{Action: netwire.ActionSpin, Player: *name})
		case "guess":
			letter := strings.TrimSpace(rest)
			if letter == "" {
				fmt.Println("usage: guess <letter>")
				continue
			}
			send(client, netwire.Message{Action: netwire.ActionGuessLetter, Player: *name, Letter: letter})
		case "solve":
			if strings.TrimSpace(rest) == "" {
				fmt.Println("usage: solve <phrase>")
				continue
			}
			send(client, netwire.Message{Action: netwire.ActionGuessPhrase, Player: *name, Phrase: rest})
		case "update":
			send(client, netwire.Message{Action: netwire.ActionUpdate, Player: *name})
		case "new":
			send(client, netwire.Message{Action: netwire.ActionNewGame, Player: *name})
		case "leave":
			send(client, netwire.Message{Action: netwire.ActionLeave, Player: *name})
		case "quit":
			send(client, netwire.Message{Action: netwire.ActionLogout, Player: *name})
			client.Close()
			<-done
			return
		case "help":
			fmt.Print(usage)
		default:
			fmt.Printf("unknown command %q; type help\n", cmd)
		}
	}
}

func send(client *netwire.Client, msg netwire.Message) {
	if err := client.Send(msg); err != nil {
		log.Fatalf("sending %s: %v", msg.Action, err)
	}
}

// printMessage renders one server message for the terminal.
func printMessage(msg netwire.Message) {
	switch msg.Action {
	case netwire.ActionLoginConf, netwire.ActionLoginJoinConf:
		fmt.Printf("login: %s\n", msg.Text)
		if len(msg.Players) > 0 {
			fmt.Printf("seated with: %s\n", strings.Join(msg.Players, ", "))
		}
	case netwire.ActionJoinConf:
		fmt.Printf("seated with: %s\n", strings.Join(msg.Players, ", "))
	case netwire.ActionJoinOther:
		fmt.Printf("%s joined the game\n", msg.Player)
	case netwire.ActionLeft:
		fmt.Printf("%s left the game, %s takes the seat\n", msg.Player, msg.Repl)
	case netwire.ActionStart:
		fmt.Printf("%s started the game\n", msg.Player)
	case netwire.ActionState:
		printState(msg)
	case netwire.ActionUpdate:
		fmt.Printf("catalogue: %d phrases\n", len(msg.Phrases))
		for name, score := range msg.Leaderboard {
			fmt.Printf("  %-20s %d\n", name, score)
		}
	case netwire.ActionError:
		fmt.Printf("rejected: %s\n", msg.Text)
	default:
		fmt.Printf("%s: %+v\n", msg.Action, msg)
	}
}

func printState(msg netwire.Message) {
	if msg.Event != "" {
		for _, ev := range strings.Split(msg.Event, "; ") {
			fmt.Printf("* %s\n", ev)
		}
	}
	var snap match.Snapshot
	if err := json.Unmarshal(msg.Game, &snap); err != nil {
		fmt.Printf("state: %s\n", msg.Game)
		return
	}
	switch snap.State {
	case "IN_PROGRESS":
		fmt.Printf("[%s] %s\n", snap.Category, snap.Masked)
		if len(snap.Guessed) > 0 {
			fmt.Printf("guessed: %s\n", strings.Join(snap.Guessed, " "))
		}
		if snap.WheelValue > 0 {
			fmt.Printf("%s is up for $%d a letter\n", snap.Current, snap.WheelValue)
		} else {
			fmt.Printf("%s is up, wheel unspun\n", snap.Current)
		}
	case "ENDED":
		fmt.Printf("game over, %s wins\n", snap.Winner)
	default:
		fmt.Println("waiting for the game to start")
	}
	for _, p := range snap.Players {
		tag := ""
		if p.Bot {
			tag = " (bot)"
		}
		fmt.Printf("  %-20s round $%-6d total $%d%s\n", p.Name, p.RoundScore, p.TotalScore, tag)
	}
}
