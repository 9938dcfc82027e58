package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/horlapookie/supportsite/internal/client"

	"golang.org/x/term"
)

// adminctl is a small terminal companion for administrators: verify the
// passkey once, then publish uploads or resolve complaints with the held
// session token.
func main() {
	serverURL := flag.String("server", "http://localhost:8080", "support backend base URL")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		printUsageAndExit()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := client.NewClient(*serverURL, client.NewMemoryTokenStore())

	var err error
	switch args[0] {
	case "upload":
		err = runUpload(ctx, c, args[1:])
	case "resolve":
		err = runResolve(ctx, c, args[1:])
	default:
		printUsageAndExit()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func printUsageAndExit() {
	fmt.Fprintln(os.Stderr, `usage:
  adminctl [-server URL] upload <file|video|link> <title> <url> [description]
  adminctl [-server URL] resolve <complaint-id>`)
	os.Exit(2)
}

// verify prompts for the passkey and exchanges it for a session token.
func verify(ctx context.Context, c *client.Client) error {
	fmt.Print("admin passkey: ")
	passkeyBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read passkey: %w", err)
	}

	ok, err := c.Verify(ctx, string(passkeyBytes))
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if !ok {
		return errors.New("passkey rejected")
	}
	return nil
}

func runUpload(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 3 {
		printUsageAndExit()
	}
	uploadType, title, url := args[0], args[1], args[2]
	description := ""
	if len(args) > 3 {
		description = args[3]
	}

	if err := verify(ctx, c); err != nil {
		return err
	}

	id, err := c.Upload(ctx, uploadType, title, url, description)
	if err != nil {
		return err
	}
	fmt.Printf("upload stored, id: %d\n", id)
	return nil
}

func runResolve(ctx context.Context, c *client.Client, args []string) error {
	if len(args) != 1 {
		printUsageAndExit()
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("complaint id must be a number: %q", args[0])
	}

	if err := verify(ctx, c); err != nil {
		return err
	}

	if err := c.ResolveComplaint(ctx, id); err != nil {
		return err
	}
	fmt.Printf("complaint %d resolved\n", id)
	return nil
}
