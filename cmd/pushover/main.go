package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ampersa/pushover"
	"github.com/ampersa/pushover/internal/config"
)

func main() {
	var (
		message   = flag.String("message", "", "message body to send")
		title     = flag.String("title", "", "message title")
		priority  = flag.Int("priority", 0, "priority from -2 (lowest) to 2 (emergency)")
		device    = flag.String("device", "", "target device name")
		sound     = flag.String("sound", "", "notification sound")
		link      = flag.String("url", "", "supplementary url")
		linkTitle = flag.String("url-title", "", "supplementary url title")
		html      = flag.Bool("html", false, "enable html formatting")
		retry     = flag.Int("retry", 0, "emergency retry interval in seconds")
		expire    = flag.Int("expire", 0, "emergency expiry in seconds")
		check     = flag.String("check", "", "check the status of an emergency receipt")
		cancel    = flag.String("cancel", "", "cancel retries for an emergency receipt")
	)
	flag.Parse()

	// .env is optional; deployed environments set the variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	client := pushover.NewClient(cfg.Token,
		pushover.WithTimeout(cfg.Timeout),
		pushover.WithLogger(logger),
	)

	ctx, cancelCtx := context.WithTimeout(context.Background(), cfg.Timeout+5*time.Second)
	defer cancelCtx()

	switch {
	case *check != "":
		status, err := client.CheckReceipt(ctx, pushover.Receipt(*check))
		if err != nil {
			fail(logger, err)
		}
		fmt.Printf("acknowledged=%t expired=%t delivered_at=%s\n",
			status.Acknowledged, status.Expired, status.LastDeliveredAt.Format(time.RFC3339))

	case *cancel != "":
		res, err := client.CancelReceipt(ctx, pushover.Receipt(*cancel))
		if err != nil {
			fail(logger, err)
		}
		logger.Info("receipt cancelled", "request", res.Request)

	default:
		if *message == "" {
			fmt.Fprintln(os.Stderr, "usage: pushover -message <text> [flags], or -check/-cancel <receipt>")
			flag.PrintDefaults()
			os.Exit(2)
		}

		msg := pushover.NewMessage(cfg.Recipient, *message)
		msg.Title = *title
		msg.Priority = pushover.Priority(*priority)
		msg.HTML = *html
		msg.Device = cfg.Device
		if *device != "" {
			msg.Device = *device
		}
		if *sound != "" {
			msg.Sound = *sound
		}
		if *link != "" {
			msg.URL = *link
			msg.URLTitle = *linkTitle
		}
		if *retry > 0 {
			msg.Retry = *retry
		}
		if *expire > 0 {
			msg.Expire = *expire
		}

		res, err := client.Send(ctx, msg)
		if err != nil {
			fail(logger, err)
		}
		logger.Info("message sent", "request", res.Request, "receipt", string(res.Receipt))
		if limits, ok := client.RateLimits(); ok {
			logger.Info("rate limits",
				"limit", limits.Limit,
				"remaining", limits.Remaining,
				"reset_at", limits.ResetAt,
			)
		}
	}
}

func fail(logger *slog.Logger, err error) {
	var apiErr *pushover.APIError
	if errors.As(err, &apiErr) && apiErr.Retryable() {
		logger.Error("request failed, safe to retry", "kind", apiErr.Kind.String(), "error", err)
	} else {
		logger.Error("request failed", "error", err)
	}
	os.Exit(1)
}
