package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

func (a *App) Run(ctx context.Context) {

	log.Println("Welcome to LedgerVault CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprint(a.out, "lvault> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(a.out, "Available commands: upload <path> [name], download <id>, list, exit")

		case "upload":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: upload <path> [name]")
				continue
			}
			a.upload(ctx, args)
		case "download":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: download <id>")
				continue
			}
			a.download(ctx, args[0])
		case "list":
			a.list(ctx)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}

}
