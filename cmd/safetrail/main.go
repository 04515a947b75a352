package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/safetrail/safetrail/internal/client/alerts"
	clientauth "github.com/safetrail/safetrail/internal/client/auth"
	"github.com/safetrail/safetrail/internal/client/dashboard"
	"github.com/safetrail/safetrail/internal/client/gateway"
	"github.com/safetrail/safetrail/internal/client/session"
	"github.com/safetrail/safetrail/internal/client/tracking"
	"github.com/safetrail/safetrail/internal/config"
	"github.com/safetrail/safetrail/internal/logging"
	"github.com/safetrail/safetrail/internal/model"
	"github.com/safetrail/safetrail/internal/notification"
)

const usage = `safetrail <command> [flags]

Commands:
  login     Sign in and persist the session
  register  Create an account and sign in
  logout    Clear the persisted session
  profile   Show the signed-in tourist's profile
  track     Stream simulated location fixes to the service
  panic     Send a panic alert from the current location
  alerts    List alerts (authority accounts)
  resolve   Resolve an alert by id (authority accounts)
  watch     Poll the authority dashboard
  zones     List high-risk zones
`

// consoleNotifier prints user-facing notices to stdout.
type consoleNotifier struct{}

func (consoleNotifier) Send(_ context.Context, message notification.Message) error {
	fmt.Println(message.Body)
	return nil
}

// app bundles the wired client core for command handlers.
type app struct {
	cfg     config.Config
	gw      *gateway.Gateway
	session *clientauth.Session
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewText(os.Stderr, cfg.LogLevel)
	notifier := consoleNotifier{}

	gw := gateway.New(cfg.APIBaseURL, nil, notifier, logger)
	store := session.NewFileStore(cfg.SessionFile)
	sess := clientauth.New(gw, store, notifier, logger)
	sess.Restore()

	a := &app{cfg: cfg, gw: gw, session: sess}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "login":
		err = a.login(ctx, args)
	case "register":
		err = a.register(ctx, args)
	case "logout":
		a.session.Logout(ctx)
	case "profile":
		err = a.profile(ctx)
	case "track":
		err = a.track(ctx, args)
	case "panic":
		err = a.panic(ctx, args)
	case "alerts":
		err = a.alerts(ctx, args)
	case "resolve":
		err = a.resolve(ctx, args)
	case "watch":
		err = a.watch(ctx, args)
	case "zones":
		err = a.zones(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "safetrail %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("login", pflag.ExitOnError)
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	if err := flags.Parse(args); err != nil {
		return err
	}
	user, err := a.session.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s)\n", user.FullName, user.Role)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("register", pflag.ExitOnError)
	input := clientauth.RegisterInput{}
	flags.StringVar(&input.Email, "email", "", "account email")
	flags.StringVar(&input.Password, "password", "", "account password")
	flags.StringVar(&input.ConfirmPassword, "confirm", "", "password confirmation")
	flags.StringVar(&input.FullName, "name", "", "full name")
	flags.StringVar(&input.Role, "role", model.RoleTourist, "tourist or authority")
	flags.StringVar(&input.Phone, "phone", "", "phone number")
	flags.StringVar(&input.EmergencyContact, "emergency-contact", "", "emergency contact name")
	flags.StringVar(&input.EmergencyPhone, "emergency-phone", "", "emergency contact phone")
	flags.StringVar(&input.IDProofNumber, "id-proof", "", "id proof number (tourists)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	user, err := a.session.Register(ctx, input)
	if err != nil {
		return err
	}
	fmt.Printf("registered %s (%s)\n", user.FullName, user.Role)
	return nil
}

func (a *app) profile(ctx context.Context) error {
	var profile model.TouristProfile
	if err := a.gw.Get(ctx, "/tourist/profile", &profile); err != nil {
		return err
	}
	fmt.Printf("digital id:   %s\n", profile.DigitalID)
	fmt.Printf("safety score: %d\n", profile.SafetyScore)
	if profile.CurrentLocation != nil {
		fmt.Printf("location:     %.5f, %.5f\n", profile.CurrentLocation.Latitude, profile.CurrentLocation.Longitude)
	}
	for _, contact := range profile.EmergencyContacts {
		fmt.Printf("contact:      %s %s\n", contact.Name, contact.Phone)
	}
	return nil
}

func (a *app) track(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("track", pflag.ExitOnError)
	lat := flags.Float64("lat", 28.6139, "simulated origin latitude")
	lng := flags.Float64("lng", 77.2090, "simulated origin longitude")
	every := flags.Duration("every", 5*time.Second, "fix interval")
	if err := flags.Parse(args); err != nil {
		return err
	}

	tracker := a.newTracker(*lat, *lng, *every)
	if err := tracker.Start(ctx); err != nil {
		return err
	}
	fmt.Println("tracking started, press Ctrl-C to stop")
	<-ctx.Done()
	tracker.Stop()
	return nil
}

func (a *app) panic(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("panic", pflag.ExitOnError)
	lat := flags.Float64("lat", 28.6139, "simulated latitude")
	lng := flags.Float64("lng", 77.2090, "simulated longitude")
	if err := flags.Parse(args); err != nil {
		return err
	}

	tracker := a.newTracker(*lat, *lng, time.Second)
	if _, err := tracker.Locate(ctx); err != nil {
		return err
	}
	panicClient := alerts.New(a.gw, tracker, consoleNotifier{})
	alertID, err := panicClient.RaisePanic(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("alert id: %s\n", alertID)
	// Leave room for the follow-up notice.
	select {
	case <-time.After(3 * time.Second):
	case <-ctx.Done():
	}
	return nil
}

func (a *app) alerts(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("alerts", pflag.ExitOnError)
	view := flags.String("view", "all", "all, active, resolved or an alert type")
	if err := flags.Parse(args); err != nil {
		return err
	}

	client := alerts.New(a.gw, nil, consoleNotifier{})
	list, err := client.List(ctx)
	if err != nil {
		return err
	}
	for _, alert := range alerts.Filter(list, *view) {
		fmt.Printf("%s  [%s/%s]  %s  %s\n",
			alert.ID, alert.AlertType, alerts.Priority(alert.AlertType), alert.Status, alert.Message)
	}
	return nil
}

func (a *app) resolve(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("resolve", pflag.ExitOnError)
	id := flags.String("id", "", "alert id")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("--id is required")
	}
	client := alerts.New(a.gw, nil, consoleNotifier{})
	if err := client.Resolve(ctx, *id); err != nil {
		return err
	}
	fmt.Println("alert resolved")
	return nil
}

func (a *app) watch(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("watch", pflag.ExitOnError)
	interval := flags.Duration("interval", a.cfg.PollInterval, "refresh interval")
	if err := flags.Parse(args); err != nil {
		return err
	}

	logger := logging.NewText(os.Stderr, a.cfg.LogLevel)
	poller := dashboard.New(dashboard.NewGatewayFetcher(a.gw), logger)
	poller.Start(ctx, *interval)
	defer poller.Stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		if view, ok := poller.Current(); ok {
			fmt.Printf("[%s] tourists=%d active_alerts=%d zones=%d\n",
				view.FetchedAt.Format(time.TimeOnly),
				view.Snapshot.Tourists, view.Snapshot.ActiveAlerts, len(view.Snapshot.HighRiskZones))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (a *app) zones(ctx context.Context) error {
	var zones []model.Zone
	if err := a.gw.Get(ctx, "/zones", &zones); err != nil {
		return err
	}
	for _, zone := range zones {
		fmt.Printf("%s  [%s]  %.4f,%.4f r=%.0fm  %s\n",
			zone.Name, zone.RiskLevel, zone.CenterLat, zone.CenterLng, zone.Radius, zone.Description)
	}
	return nil
}

func (a *app) newTracker(lat, lng float64, every time.Duration) *tracking.Tracker {
	provider := tracking.NewSimulatedProvider(lat, lng, every)
	reporter := tracking.NewGatewayReporter(a.gw, func() string {
		if user, ok := a.session.Identity(); ok {
			return user.ID
		}
		return ""
	})
	logger := logging.NewText(os.Stderr, a.cfg.LogLevel)
	return tracking.New(provider, reporter, consoleNotifier{}, logger, tracking.DefaultOptions())
}
