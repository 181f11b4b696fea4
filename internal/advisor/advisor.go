// Package advisor bridges to the machine-learning scripts that power the
// chat assistant and the next-day spending prediction. The scripts are
// external commands: they print a loader banner first, then the answer.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"smartsaku/internal/core"
)

// ErrDisabled means no script is configured for the requested operation.
var ErrDisabled = errors.New("advisor not configured")

// PredictionWindowDays is the history length the prediction model expects.
const PredictionWindowDays = 7

// Client runs the advisory scripts with a bounded timeout.
type Client struct {
	command          string
	chatScript       string
	predictionScript string
	timeout          time.Duration
}

func NewClient(command, chatScript, predictionScript string, timeout time.Duration) *Client {
	if command == "" {
		command = "python3"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		command:          command,
		chatScript:       chatScript,
		predictionScript: predictionScript,
		timeout:          timeout,
	}
}

// ChatEnabled reports whether the chat script is configured.
func (c *Client) ChatEnabled() bool { return c.chatScript != "" }

// PredictionEnabled reports whether the prediction script is configured.
func (c *Client) PredictionEnabled() bool { return c.predictionScript != "" }

// Chat sends the user's message to the chatbot script and returns its reply.
// The script prints a loader line before the reply, so the reply is the
// second stdout line; if the banner is absent the first non-empty line wins.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	if !c.ChatEnabled() {
		return "", ErrDisabled
	}

	out, err := c.run(ctx, c.chatScript, message)
	if err != nil {
		return "", fmt.Errorf("chat script: %w", err)
	}

	lines := strings.Split(out, "\n")
	if len(lines) > 1 && strings.TrimSpace(lines[1]) != "" {
		return strings.TrimSpace(lines[1]), nil
	}
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("chat script produced no reply")
}

// PredictNextDay feeds the last seven daily expense totals (oldest first,
// rupiah units) to the prediction script and returns the predicted amount.
func (c *Client) PredictNextDay(ctx context.Context, history []core.Money) (core.Money, error) {
	if !c.PredictionEnabled() {
		return core.Money{}, ErrDisabled
	}
	if len(history) != PredictionWindowDays {
		return core.Money{}, fmt.Errorf("prediction needs %d days of history, got %d", PredictionWindowDays, len(history))
	}

	args := make([]string, 0, len(history))
	for _, day := range history {
		args = append(args, strconv.FormatFloat(day.Float(), 'f', 2, 64))
	}

	out, err := c.run(ctx, c.predictionScript, args...)
	if err != nil {
		return core.Money{}, fmt.Errorf("prediction script: %w", err)
	}

	// The prediction is the last non-empty stdout line.
	var last string
	for _, line := range strings.Split(out, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			last = s
		}
	}
	if last == "" {
		return core.Money{}, fmt.Errorf("prediction script produced no output")
	}

	cents, err := core.ParseDecimalToCents(last)
	if err != nil {
		// The model can drift to zero or below; report no predicted
		// spending instead of failing.
		if v, ferr := strconv.ParseFloat(last, 64); ferr == nil && v <= 0 {
			return core.Money{}, nil
		}
		return core.Money{}, fmt.Errorf("parse prediction %q: %w", last, err)
	}

	return core.Money{Cents: cents}, nil
}

func (c *Client) run(ctx context.Context, script string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmdArgs := append([]string{script}, args...)
	cmd := exec.CommandContext(ctx, c.command, cmdArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	slog.DebugContext(ctx, "Advisor script finished",
		"script", script,
		"duration", time.Since(start),
		"error", err)

	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w", msg, err)
		}
		return "", err
	}

	return stdout.String(), nil
}
