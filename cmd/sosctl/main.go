package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cse408-project/secureherai-go/internal/client"
	"github.com/cse408-project/secureherai-go/internal/config"
	"github.com/cse408-project/secureherai-go/internal/controller"
	"github.com/cse408-project/secureherai-go/internal/dto"
	"github.com/cse408-project/secureherai-go/internal/model"
	"github.com/cse408-project/secureherai-go/internal/reconciler"
	"github.com/cse408-project/secureherai-go/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const usage = `sosctl <command> [flags]

Commands:
  login          -email -password
  trigger        -method -message [-lat -lng] [-contacts "Name:email,..."]
  cancel         -id <alert-id>
  resolve        -id <alert-id>
  pending
  accepted
  accept         -id <alert-id> -user <alert-user-id> -name <responder-name>
  notifications  [-page -size]
  unread
  count
  read           -id <notification-id>
  read-all
  alert          -id <alert-id>
  watch

The token printed by login is read from the SOS_TOKEN environment variable.
`

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]
	args := os.Args[2:]

	if command == "login" {
		runLogin(cfg, args)
		return
	}

	token := os.Getenv("SOS_TOKEN")
	if token == "" {
		fatal("SOS_TOKEN is not set; run sosctl login first")
	}

	api := client.New(cfg.BackendBaseURL, cfg.HTTPTimeout, client.StaticToken(token), logger)
	notifications := store.NewNotificationStore()
	alerts := store.NewAlertStore()

	ctx := context.Background()

	switch command {
	case "trigger":
		runTrigger(ctx, cfg, api, alerts, logger, args)
	case "cancel":
		runTransition(ctx, api, alerts, logger, cfg, args, "cancel")
	case "resolve":
		runTransition(ctx, api, alerts, logger, cfg, args, "resolve")
	case "pending":
		coordinator := controller.NewAcceptanceCoordinator(api, alerts, notifications, logger)
		must(coordinator.RefreshPending(ctx))
		printJSON(coordinator.PendingAlerts())
	case "accepted":
		coordinator := controller.NewAcceptanceCoordinator(api, alerts, notifications, logger)
		must(coordinator.RefreshAccepted(ctx))
		printJSON(coordinator.AcceptedAlerts())
	case "accept":
		runAccept(ctx, api, alerts, notifications, logger, args)
	case "notifications":
		fs := flag.NewFlagSet("notifications", flag.ExitOnError)
		page := fs.Int("page", 1, "page number")
		size := fs.Int("size", 20, "page size")
		parse(fs, args)
		items, meta, err := api.ListNotifications(ctx, *page, *size)
		must(err)
		printJSON(dto.NotificationListResponse{Data: items, Meta: meta})
	case "unread":
		items, err := api.UnreadNotifications(ctx)
		must(err)
		printJSON(items)
	case "count":
		count, err := api.UnreadCount(ctx)
		must(err)
		fmt.Println(count)
	case "read":
		id := parseID(args, "read")
		must(api.MarkRead(ctx, id))
		fmt.Println("marked as read")
	case "read-all":
		must(api.MarkAllRead(ctx))
		fmt.Println("all notifications marked as read")
	case "alert":
		id := parseID(args, "alert")
		bundle, err := api.AlertNotifications(ctx, id)
		must(err)
		printJSON(bundle)
	case "watch":
		runWatch(ctx, cfg, api, alerts, notifications, logger)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runLogin(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	parse(fs, args)
	if *email == "" || *password == "" {
		fatal("login requires -email and -password")
	}

	body, _ := json.Marshal(dto.LoginInput{Email: *email, Password: *password})
	resp, err := http.Post(cfg.BackendBaseURL+"/auth/login", "application/json", bytes.NewReader(body))
	must(err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		fatal("login failed: " + payload.Error)
	}

	var auth dto.AuthResponse
	must(json.NewDecoder(resp.Body).Decode(&auth))
	fmt.Printf("export SOS_TOKEN=%s\n", auth.AccessToken)
}

// staticLocation satisfies the controller's location dependency with a fix
// passed on the command line. Omitting it exercises the degraded path.
type staticLocation struct {
	loc *model.Location
}

func (s staticLocation) CurrentLocation(ctx context.Context, timeout time.Duration) (*model.Location, error) {
	if s.loc == nil {
		return nil, fmt.Errorf("no location fix available")
	}
	return s.loc, nil
}

type staticRecipients struct {
	contacts []model.ContactRef
}

func (s staticRecipients) ResolveRecipients(ctx context.Context) ([]model.ContactRef, error) {
	return s.contacts, nil
}

func runTrigger(ctx context.Context, cfg *config.Config, api *client.Client, alerts *store.AlertStore, logger *logrus.Logger, args []string) {
	fs := flag.NewFlagSet("trigger", flag.ExitOnError)
	method := fs.String("method", "manual", "trigger method: manual, voice or text")
	message := fs.String("message", "", "message for recipients")
	audioRef := fs.String("audio", "", "reference to recorded audio evidence")
	lat := fs.Float64("lat", 0, "latitude")
	lng := fs.Float64("lng", 0, "longitude")
	contacts := fs.String("contacts", "", "comma-separated Name:email pairs")
	parse(fs, args)

	var loc *model.Location
	if visited(fs, "lat") && visited(fs, "lng") {
		loc = &model.Location{Latitude: *lat, Longitude: *lng}
	}

	lifecycle := controller.NewLifecycleController(
		api,
		staticLocation{loc: loc},
		staticRecipients{contacts: parseContacts(*contacts)},
		alerts,
		cfg.LocationTimeout,
		logger,
	)

	alert, err := lifecycle.Trigger(ctx, model.TriggerMethod(*method), *message, *audioRef)
	must(err)
	printJSON(alert)
}

func runTransition(ctx context.Context, api *client.Client, alerts *store.AlertStore, logger *logrus.Logger, cfg *config.Config, args []string, action string) {
	id := parseID(args, action)

	// One-shot CLI use starts with an empty local history, so the controller's
	// local guard defers to the backend's state checks.
	lifecycle := controller.NewLifecycleController(api, staticLocation{}, staticRecipients{}, alerts, cfg.LocationTimeout, logger)

	switch action {
	case "cancel":
		must(lifecycle.Cancel(ctx, id))
		fmt.Println("alert cancelled")
	case "resolve":
		must(lifecycle.Resolve(ctx, id))
		fmt.Println("alert resolved")
	}
}

func runAccept(ctx context.Context, api *client.Client, alerts *store.AlertStore, notifications *store.NotificationStore, logger *logrus.Logger, args []string) {
	fs := flag.NewFlagSet("accept", flag.ExitOnError)
	alertID := fs.String("id", "", "alert id")
	alertUser := fs.String("user", "", "alert creator user id")
	name := fs.String("name", "", "responder display name")
	parse(fs, args)

	id, err := uuid.Parse(*alertID)
	must(err)
	userID, err := uuid.Parse(*alertUser)
	must(err)

	coordinator := controller.NewAcceptanceCoordinator(api, alerts, notifications, logger)
	_ = coordinator.RefreshPending(ctx)

	responder, err := coordinator.Accept(ctx, id, userID, *name, nil)
	must(err)
	printJSON(responder)
}

// runWatch polls the responder views and keeps the notification store
// reconciled until interrupted.
func runWatch(ctx context.Context, cfg *config.Config, api *client.Client, alerts *store.AlertStore, notifications *store.NotificationStore, logger *logrus.Logger) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	coordinator := controller.NewAcceptanceCoordinator(api, alerts, notifications, logger)
	sweeper := reconciler.NewTTLReconciler(notifications, cfg.SweepInterval, logger)
	go sweeper.Run(ctx)

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	logger.WithField("interval", cfg.PollInterval.String()).Info("watching for alerts")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := coordinator.RefreshPending(ctx); err != nil {
				logger.WithError(err).Warn("pending refresh failed")
				continue
			}
			if unread, err := api.UnreadNotifications(ctx); err == nil {
				notifications.MergeUnread(unread)
			}
			for _, alert := range coordinator.PendingAlerts() {
				logger.WithFields(logrus.Fields{
					"alert_id": alert.ID,
					"method":   alert.TriggerMethod,
				}).Info("pending alert")
			}
			logger.WithField("unread", notifications.UnreadCount()).Info("notification state")
		}
	}
}

func parseContacts(raw string) []model.ContactRef {
	if raw == "" {
		return nil
	}
	var contacts []model.ContactRef
	for _, pair := range strings.Split(raw, ",") {
		name, email, _ := strings.Cut(strings.TrimSpace(pair), ":")
		contacts = append(contacts, model.ContactRef{
			ID:    uuid.New(),
			Name:  name,
			Email: email,
		})
	}
	return contacts
}

func parseID(args []string, name string) uuid.UUID {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	raw := fs.String("id", "", "target id")
	parse(fs, args)
	id, err := uuid.Parse(*raw)
	must(err)
	return id
}

func visited(fs *flag.FlagSet, name string) bool {
	seen := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			seen = true
		}
	})
	return seen
}

func parse(fs *flag.FlagSet, args []string) {
	_ = fs.Parse(args)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func must(err error) {
	if err != nil {
		fatal(err.Error())
	}
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "sosctl: "+msg)
	os.Exit(1)
}
