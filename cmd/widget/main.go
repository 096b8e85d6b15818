// Command widget renders an availability view in the terminal using the
// same controller as the embeddable widget.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/example/availability-scheduler/internal/slottime"
	"github.com/example/availability-scheduler/internal/widget"
)

func main() {
	var (
		apiURL = flag.String("api", getenv("AVAILABILITY_API_URL", "http://localhost:8080"), "availability API base url")
		state  = flag.String("state", getenv("AVAILABILITY_WIDGET_STATE", defaultStatePath()), "file keeping language, view and admin session")
		view   = flag.String("view", "", "profile slug to show")
		lang   = flag.String("lang", "", "display language (ro, en, ru)")
		tz     = flag.String("tz", "", "time zone the slots are shown in")
		pick   = flag.String("select", "", "comma separated slot ids to put in the message")
		login  = flag.Bool("login", false, "start an admin session with AVAILABILITY_ADMIN_PASSWORD")
		logout = flag.Bool("logout", false, "end the stored admin session")
		share  = flag.Bool("share", false, "print the share link")
		copyIt = flag.Bool("copy", false, "copy the message, printing it when no clipboard is available")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(*state), 0o700); err != nil {
		fatal(err.Error())
	}
	storage := widget.NewFileStorage(*state)
	store, err := widget.NewHTTPStore(*apiURL, &http.Client{Timeout: 15 * time.Second}, storage)
	if err != nil {
		fatal(err.Error())
	}

	location := widget.WithPreferences(&url.URL{Path: "/"}, widget.Preferences{Language: *lang, Timezone: *tz, View: *view})
	c := widget.NewController(store,
		widget.WithStorage(storage),
		widget.WithLocation(location),
		widget.WithPrompter(widget.WriterPrompter{W: os.Stdout}),
		widget.WithLogger(logger),
		widget.WithViewerZone(getenv("TZ", slottime.DefaultZone)),
	)
	defer c.Close()

	c.Load(ctx)
	switch {
	case *logout:
		if err := c.Logout(ctx); err != nil {
			logger.Warn("logout did not reach the API", "error", err)
		}
	case *login:
		if _, err := c.Login(ctx, os.Getenv("AVAILABILITY_ADMIN_PASSWORD")); err != nil {
			logger.Warn("login failed", "error", err)
		}
	default:
		c.RestoreSession(ctx)
	}

	if missing := selectSlots(c, splitIDs(*pick)); len(missing) > 0 {
		logger.Warn("slots not found or not selectable", "ids", strings.Join(missing, ","))
	}

	render(os.Stdout, c)
	if *share {
		fmt.Fprintln(os.Stdout, c.ShareLink().String())
	}
	if *copyIt {
		c.CopyMessage(ctx)
	}
	if notice := c.State().Notice; notice != "" {
		fmt.Fprintln(os.Stderr, notice)
	}
}

// splitIDs parses a comma separated id list, dropping blanks.
func splitIDs(value string) []string {
	var ids []string
	for _, part := range strings.Split(value, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// selectSlots selects the visible slots with the given ids in order and
// returns the ids that could not be selected.
func selectSlots(c *widget.Controller, ids []string) []string {
	var missing []string
	for _, id := range ids {
		found := false
		for _, slot := range c.VisibleSlots() {
			if slot.ID != id {
				continue
			}
			found = true
			if !slot.Selectable() {
				missing = append(missing, id)
				break
			}
			c.ClickSlot(slot)
			break
		}
		if !found {
			missing = append(missing, id)
		}
	}
	return missing
}

// render prints the slot cards followed by the message for the current
// selection, or the preview when nothing is selected.
func render(w io.Writer, c *widget.Controller) {
	st := c.State()
	if label := c.RangeLabel(); label != "" {
		fmt.Fprintln(w, label)
	}
	for _, card := range c.Cards() {
		mark := " "
		if card.Selected {
			mark = "*"
		}
		line := fmt.Sprintf("%s %-12s %-10s %s", mark, card.DayLabel, card.Range, card.Slot.Label)
		if card.Spots != "" {
			line += " (" + card.Spots + ")"
		}
		if card.Disabled {
			line += " [" + card.Slot.Status.String() + "]"
		}
		fmt.Fprintf(w, "%s  #%s\n", strings.TrimRight(line, " "), card.Slot.ID)
	}
	fmt.Fprintln(w)
	if len(st.Selected) > 0 {
		fmt.Fprintln(w, c.Message())
		return
	}
	fmt.Fprintln(w, c.PreviewMessage())
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".availability-widget.env"
	}
	return filepath.Join(dir, "availability", "widget.env")
}

func getenv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func fatal(message string) {
	fmt.Fprintln(os.Stderr, message)
	os.Exit(1)
}
