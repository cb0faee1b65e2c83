// Package main is a terminal client demonstrating the entitlement
// gate in front of the voice transcription command.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/agent8/licensing/internal/speech"
	"github.com/agent8/licensing/pkg/gate"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	baseURL := os.Getenv("LICENSING_URL")
	if baseURL == "" {
		baseURL = "http://localhost:4242"
	}

	cachePath, err := gate.DefaultCachePath()
	if err != nil {
		logger.Error("cannot locate user config dir", "error", err)
		os.Exit(1)
	}

	g := gate.New(
		gate.NewClient(baseURL, 0),
		gate.NewCredentialCache(cachePath),
		&terminalUI{in: bufio.NewReader(os.Stdin)},
		logger,
	)

	ctx := context.Background()
	g.StartupCheck(ctx)

	if !g.Allow(ctx) {
		fmt.Println("Voice commands require an active subscription.")
		os.Exit(1)
	}

	recognizer := speech.New(
		os.Getenv("SPEECH_PROVIDER"),
		os.Getenv("WHISPER_SERVER_URL"),
		logger,
	)

	fmt.Println("Listening...")
	transcript, err := recognizer.Start(ctx)
	recognizer.Stop()
	if err != nil {
		logger.Error("recognition failed", "error", err)
		os.Exit(1)
	}
	fmt.Println("Transcript:", transcript)
}

// terminalUI drives the gate's prompts on stdin/stdout.
type terminalUI struct {
	in *bufio.Reader
}

func (u *terminalUI) Choose(ctx context.Context, prompt string, options []string) (string, error) {
	fmt.Println(prompt)
	for i, opt := range options {
		fmt.Printf("  %d) %s\n", i+1, opt)
	}
	fmt.Print("> ")

	line, err := u.in.ReadString('\n')
	if err != nil {
		return "", gate.ErrDismissed
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > len(options) {
		return "", gate.ErrDismissed
	}
	return options[n-1], nil
}

func (u *terminalUI) Prompt(ctx context.Context, prompt string, masked bool) (string, error) {
	fmt.Print(prompt + ": ")

	if masked {
		// Secrets never echo to the terminal.
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", gate.ErrDismissed
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := u.in.ReadString('\n')
	if err != nil {
		return "", gate.ErrDismissed
	}
	return strings.TrimSpace(line), nil
}

func (u *terminalUI) Notify(message string) {
	fmt.Println(message)
}

func (u *terminalUI) OpenURL(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "linux":
		if err := exec.Command("xdg-open", url).Start(); err == nil {
			return nil
		}
		fallthrough
	default:
		// No opener; showing the address still lets the user proceed.
		fmt.Println("Open this page in your browser:", url)
		return nil
	}
}
