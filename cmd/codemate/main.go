package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/ArponRoy7/codemate-go/internal/api"
	"github.com/ArponRoy7/codemate-go/internal/chat"
	"github.com/ArponRoy7/codemate-go/internal/config"
	"github.com/ArponRoy7/codemate-go/internal/connections"
	"github.com/ArponRoy7/codemate-go/internal/feed"
	"github.com/ArponRoy7/codemate-go/internal/guard"
	"github.com/ArponRoy7/codemate-go/internal/live"
	"github.com/ArponRoy7/codemate-go/internal/metrics"
	"github.com/ArponRoy7/codemate-go/internal/prefs"
	"github.com/ArponRoy7/codemate-go/internal/premium"
	"github.com/ArponRoy7/codemate-go/internal/profile"
	"github.com/ArponRoy7/codemate-go/internal/requests"
	"github.com/ArponRoy7/codemate-go/internal/session"
)

func main() {
	cfg := config.Load()

	log.Printf("CodeMate client starting")
	log.Printf("  api_url:      %s", cfg.BaseURL)
	log.Printf("  socket_url:   %s", cfg.ResolveSocketURL())
	log.Printf("  http_timeout: %s", cfg.HTTPTimeout)
	log.Printf("  ack_timeout:  %s", cfg.AckTimeout)
	log.Printf("  typing_idle:  %s", cfg.TypingIdle)
	log.Printf("  data_dir:     %s", cfg.DataDir)

	store, err := prefs.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to open preference store: %v", err)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			log.Printf("[metrics] listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Printf("[metrics] server stopped: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := api.New(cfg.BaseURL, cfg.HTTPTimeout)
	sess := session.NewStore()
	stdin := bufio.NewScanner(os.Stdin)

	app := &app{
		cfg:    cfg,
		api:    client,
		sess:   sess,
		prefs:  store,
		stdin:  stdin,
		conns:  connections.New(client),
		pager:  feed.New(client, feed.DefaultLimit),
		plans:  premium.NewCatalog(client),
		stdout: os.Stdout,
	}
	app.inbox = requests.New(client, app.conns)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("received %s, shutting down", sig)
		cancel()
		app.shutdown()
		os.Exit(0)
	}()

	if err := app.ensureAuthenticated(ctx); err != nil {
		log.Fatalf("login failed: %v", err)
	}

	channel, err := app.dial(ctx)
	if err != nil {
		log.Fatalf("failed to open live channel: %v", err)
	}
	app.channel = channel

	app.loop(ctx)
	app.shutdown()
}

// app wires the screens to their shared dependencies.
type app struct {
	cfg     config.Config
	api     *api.Client
	sess    *session.Store
	prefs   *prefs.Store
	channel *live.Channel
	stdin   *bufio.Scanner
	stdout  io.Writer

	closeOnce sync.Once

	pager *feed.Pager
	inbox *requests.Inbox
	conns *connections.List
	plans *premium.Catalog
}

// shutdown is reachable from both the signal handler and the end of main;
// the Once keeps the second caller from closing the store twice.
func (a *app) shutdown() {
	a.closeOnce.Do(func() {
		if a.channel != nil {
			a.channel.Close()
		}
		if err := a.prefs.Close(); err != nil {
			log.Printf("closing preference store: %v", err)
		}
	})
}

func (a *app) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.stdout, format+"\n", args...)
}

func (a *app) readLine(prompt string) (string, bool) {
	fmt.Fprint(a.stdout, prompt)
	if !a.stdin.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.stdin.Text()), true
}

// ensureAuthenticated probes the session and runs the login prompt when the
// probe comes back unauthorized. After login the user returns to the route
// recorded before the redirect.
func (a *app) ensureAuthenticated(ctx context.Context) error {
	err := a.sess.Probe(ctx, a.api)
	if err == nil {
		user, _ := a.sess.Current()
		a.printf("welcome back, %s", user.Name)
		return nil
	}
	if !errors.Is(err, api.ErrUnauthorized) {
		return err
	}

	from := a.prefs.LastRoute()
	decision := guard.Decide(a.sess, from, guard.Options{})
	if decision.RedirectTo != guard.DefaultRedirect {
		return fmt.Errorf("unexpected redirect %q", decision.RedirectTo)
	}

	for {
		email, ok := a.readLine("email (or 'signup'): ")
		if !ok {
			return fmt.Errorf("stdin closed")
		}
		if email == "signup" {
			if err := a.signup(ctx); err != nil {
				a.printf("signup failed: %v", err)
				continue
			}
			return nil
		}
		password, ok := a.readLine("password: ")
		if !ok {
			return fmt.Errorf("stdin closed")
		}
		user, err := a.api.Login(ctx, email, password)
		if err != nil {
			a.printf("login failed: %v", err)
			continue
		}
		a.sess.Set(user)
		if decision.From != "" {
			a.printf("logged in as %s, returning to %s", user.Name, decision.From)
		} else {
			a.printf("logged in as %s", user.Name)
		}
		return nil
	}
}

func (a *app) signup(ctx context.Context) error {
	var req api.SignupRequest
	var ok bool
	if req.Name, ok = a.readLine("name: "); !ok {
		return fmt.Errorf("stdin closed")
	}
	if req.Email, ok = a.readLine("email: "); !ok {
		return fmt.Errorf("stdin closed")
	}
	if req.Password, ok = a.readLine("password: "); !ok {
		return fmt.Errorf("stdin closed")
	}
	if err := profile.ValidateNewPassword(req.Password); err != nil {
		return err
	}

	user, err := a.api.Signup(ctx, req)
	if err != nil {
		return err
	}
	a.sess.Set(user)
	a.printf("account created, logged in as %s", user.Name)
	return nil
}

func (a *app) dial(ctx context.Context) (*live.Channel, error) {
	liveCfg := live.DefaultConfig(a.cfg.ResolveSocketURL())
	liveCfg.AckTimeout = a.cfg.AckTimeout
	return live.Dial(ctx, liveCfg)
}

func (a *app) loop(ctx context.Context) {
	a.printf("commands: feed, next, prev, search <q>, interested <id>, ignored <id>,")
	a.printf("          requests, accept <id>, reject <id>, connections, chat <id>,")
	a.printf("          profile, premium, theme, quit")

	for {
		line, ok := a.readLine("> ")
		if !ok {
			return
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		var err error
		switch cmd {
		case "":
		case "feed":
			err = a.showFeed(ctx)
		case "next":
			if err = a.pager.Next(ctx); err == nil {
				err = a.printFeed()
			}
		case "prev":
			if err = a.pager.Prev(ctx); err == nil {
				err = a.printFeed()
			}
		case "search":
			a.pager.SetSearch(arg)
			err = a.showFeed(ctx)
		case "interested":
			err = a.pager.Act(ctx, api.ActionInterested, arg)
		case "ignored":
			err = a.pager.Act(ctx, api.ActionIgnored, arg)
		case "requests":
			err = a.showRequests(ctx)
		case "accept":
			err = a.inbox.Review(ctx, api.ReviewAccepted, arg)
		case "reject":
			err = a.inbox.Review(ctx, api.ReviewRejected, arg)
		case "connections":
			err = a.showConnections(ctx)
		case "chat":
			if arg == "" {
				a.printf("usage: chat <userID>")
				continue
			}
			a.runChat(ctx, arg)
		case "profile":
			a.runProfileEditor(ctx)
		case "premium":
			a.showPremium(ctx)
		case "theme":
			var theme string
			if theme, err = a.prefs.ToggleTheme(); err == nil {
				a.printf("theme: %s", theme)
			}
		case "quit", "exit":
			return
		default:
			a.printf("unknown command %q", cmd)
		}
		if err != nil {
			a.printf("error: %v", err)
		}
	}
}

func (a *app) showFeed(ctx context.Context) error {
	if err := a.pager.Load(ctx); err != nil {
		return err
	}
	return a.printFeed()
}

func (a *app) printFeed() error {
	for _, u := range a.pager.Users() {
		a.printf("  %s  %s (%d) %s", u.ID, u.Name, u.Age, u.About)
	}
	nav := ""
	if a.pager.HasPrev() {
		nav += " [prev]"
	}
	if a.pager.HasNext() {
		nav += " [next]"
	}
	a.printf("%s%s", a.pager.RangeText(), nav)
	return nil
}

func (a *app) showRequests(ctx context.Context) error {
	if err := a.inbox.Load(ctx); err != nil {
		return err
	}
	items := a.inbox.Items()
	if len(items) == 0 {
		a.printf("no pending requests")
		return nil
	}
	for _, r := range items {
		a.printf("  %s  from %s (%s)", r.ID, r.From.Name, r.From.ID)
	}
	return nil
}

func (a *app) showConnections(ctx context.Context) error {
	if err := a.conns.Load(ctx); err != nil {
		return err
	}
	users := a.conns.Users()
	if len(users) == 0 {
		a.printf("no connections yet")
		return nil
	}
	for _, u := range users {
		a.printf("  %s  %s", u.ID, u.Name)
	}
	return nil
}

// transcript tracks which chat messages have already been printed. Messages
// usually grow at the tail, but seeding conversation history prepends entries
// under lines already on screen; when the printed lines stop being a prefix
// of the log the whole transcript is drawn again.
type transcript struct {
	printed []chat.Message
}

func (tr *transcript) render(a *app, selfID string, msgs []chat.Message) {
	from := len(tr.printed)
	if !hasMessagePrefix(msgs, tr.printed) {
		a.printf("--- conversation history ---")
		from = 0
	}
	for _, m := range msgs[from:] {
		who := m.SenderName
		if m.SenderID == selfID {
			who = "you"
		}
		a.printf("[%s] %s: %s", m.CreatedAt, who, m.Text)
	}
	tr.printed = append(tr.printed[:0], msgs...)
}

func hasMessagePrefix(msgs, prefix []chat.Message) bool {
	if len(prefix) > len(msgs) {
		return false
	}
	for i := range prefix {
		if msgs[i] != prefix[i] {
			return false
		}
	}
	return true
}

// runChat opens a conversation and relays stdin lines into it until /back.
// A connection's name and photo travel with the navigation so the chat can
// skip its profile lookup.
func (a *app) runChat(ctx context.Context, targetID string) {
	self, ok := a.sess.Current()
	if !ok {
		a.printf("not logged in")
		return
	}
	if err := a.prefs.SetLastRoute("/chat/" + targetID); err != nil {
		log.Printf("[prefs] saving route: %v", err)
	}

	ctl := chat.Open(ctx, a.api, a.channel, self, targetID, chat.Options{
		NavProfile: a.conns.NavProfile(targetID),
		TypingIdle: a.cfg.TypingIdle,
	})
	defer ctl.Close()

	done := make(chan struct{})
	go func() {
		var tr transcript
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ctl.Updates():
				tr.render(a, self.ID, ctl.Messages())
				p := ctl.Presence()
				switch {
				case ctl.PeerTyping():
					a.printf("(typing...)")
				case p.Online:
					// quiet while online and idle
				case p.LastSeen != "":
					a.printf("(last seen %s)", p.LastSeen)
				}
			}
		}
	}()

	name := ctl.Profile().Name
	if name == "" {
		name = targetID
	}
	a.printf("chatting with %s; /back to leave", name)
	for {
		line, ok := a.readLine("")
		if !ok || line == "/back" {
			close(done)
			return
		}
		ctl.Input(line)
		if err := ctl.Send(ctx); err != nil {
			a.printf("send failed: %v", err)
		}
	}
}

func (a *app) runProfileEditor(ctx context.Context) {
	editor, err := profile.NewEditor(a.api, a.sess)
	if err != nil {
		a.printf("error: %v", err)
		return
	}

	f := editor.Form()
	a.printf("name: %s | age: %s | gender: %s | about: %s | skills: %s",
		f.Name, f.Age, f.Gender, f.About, strings.Join(f.Skills, ", "))
	a.printf("fields: name, photo, age, gender, about, +skill, -skill; save, password, back")

	for {
		line, ok := a.readLine("profile> ")
		if !ok {
			return
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "name":
			editor.SetName(arg)
		case "photo":
			editor.SetPhotoURL(arg)
		case "age":
			editor.SetAge(arg)
		case "gender":
			if err := editor.SetGender(arg); err != nil {
				a.printf("error: %v", err)
			}
		case "about":
			editor.SetAbout(arg)
		case "+skill":
			if err := editor.AddSkill(arg); err != nil {
				a.printf("error: %v", err)
			}
		case "-skill":
			editor.RemoveSkill(arg)
		case "save":
			saved, err := editor.Save(ctx)
			switch {
			case err != nil:
				a.printf("error: %v", err)
			case saved:
				a.printf("profile saved")
			default:
				a.printf("nothing to save")
			}
		case "password":
			a.changePassword(ctx)
		case "back", "":
			return
		default:
			a.printf("unknown field %q", cmd)
		}
	}
}

func (a *app) changePassword(ctx context.Context) {
	current, ok := a.readLine("current password: ")
	if !ok {
		return
	}
	next, ok := a.readLine("new password: ")
	if !ok {
		return
	}
	confirm, ok := a.readLine("confirm new password: ")
	if !ok {
		return
	}
	if err := profile.ChangePassword(ctx, a.api, current, next, confirm); err != nil {
		a.printf("error: %v", err)
		return
	}
	a.printf("password changed")
}

func (a *app) showPremium(ctx context.Context) {
	a.plans.Load(ctx)
	for _, plan := range []string{premium.PlanSilver, premium.PlanGold} {
		a.printf("%s:", strings.ToUpper(plan[:1])+plan[1:])
		for _, billing := range []string{premium.BillingMonthly, premium.BillingYearly} {
			if amount, ok := a.plans.Price(plan, billing); ok {
				a.printf("  ₹%d / %s", amount, billing)
			}
		}
		for _, perk := range a.plans.Features(plan) {
			a.printf("  - %s", perk)
		}
	}

	choice, ok := a.readLine("checkout <plan> <billing>, portal, or blank to go back: ")
	if !ok || choice == "" {
		return
	}
	switch {
	case strings.HasPrefix(choice, "checkout "):
		fields := strings.Fields(choice)
		if len(fields) != 3 {
			a.printf("usage: checkout <silver|gold> <monthly|yearly>")
			return
		}
		url, err := a.plans.Checkout(ctx, fields[1], fields[2])
		if err != nil {
			a.printf("error: %v", err)
			return
		}
		a.printf("open to pay: %s", url)
	case choice == "portal":
		url, err := a.plans.Portal(ctx)
		if err != nil {
			a.printf("error: %v", err)
			return
		}
		a.printf("billing portal: %s", url)
	default:
		a.printf("unknown choice %q", choice)
	}
}
