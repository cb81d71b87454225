// Command ecochat-cli answers Building 413 questions from the terminal
// using the same services as the HTTP server.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/va6996/ecochat/agents"
	"github.com/va6996/ecochat/bootstrap"
	"github.com/va6996/ecochat/config"
	"github.com/va6996/ecochat/log"
)

const prompt = "eco> "

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf(context.Background(), "Failed to load config: %v", err)
	}
	log.Init(cfg.Log.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := bootstrap.Setup(ctx, cfg)
	if err != nil {
		log.Fatalf(ctx, "Setup failed: %v", err)
	}
	defer app.Close()

	if err := repl(ctx, app.Chat, os.Stdin, os.Stdout); err != nil {
		log.Errorf(ctx, "%v", err)
	}
}

// chatter is satisfied by *agents.ChatService.
type chatter interface {
	Chat(ctx context.Context, message string) (*agents.Answer, error)
}

// repl reads one question per line until EOF, "exit" or cancellation.
func repl(ctx context.Context, chat chatter, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, prompt)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
		case "exit", "quit":
			return nil
		default:
			answer, err := chat.Chat(ctx, line)
			if err != nil {
				log.Warnf(ctx, "Chat failed: %v", err)
			}
			if answer != nil {
				fmt.Fprintf(out, "%s\n[%s]\n", strings.TrimSpace(answer.Text), answer.Source)
			}
		}
		fmt.Fprint(out, prompt)
	}
	return scanner.Err()
}
