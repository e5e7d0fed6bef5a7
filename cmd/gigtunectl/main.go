package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gigtune/gigtune/internal/app"
	"github.com/gigtune/gigtune/internal/config"
	"github.com/gigtune/gigtune/internal/model"
	"github.com/gigtune/gigtune/internal/realtime"
	"github.com/gigtune/gigtune/internal/session"
	"github.com/gigtune/gigtune/internal/status"
	"github.com/gigtune/gigtune/internal/syncstore"
	"github.com/sethvargo/go-retry"
	"go.uber.org/fx"
)

const (
	commandTimeout = 30 * time.Second
	sendPoll       = 100 * time.Millisecond
	sendAttempts   = 50
)

var errUsage = errors.New("usage")

type cli struct {
	mgr     *session.Manager
	email   string
	jsonOut bool
}

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	configFlag := flag.String("config", "", "config file (default $GIGTUNE_HOME/config.toml)")
	emailFlag := flag.String("email", "", "musician to act as")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfgPath := *configFlag
	if cfgPath == "" {
		cfgPath = config.Path()
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	profile := config.ResolveProfile(*profileFlag, cfg)
	if err := config.ValidateName(profile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	c := &cli{email: *emailFlag, jsonOut: *jsonFlag}
	fxApp := fx.New(
		app.Module(app.Params{Profile: profile, ConfigPath: cfgPath, Quiet: true}),
		app.FxLogger(),
		fx.Populate(&c.mgr),
	)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := fxApp.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	runErr := c.run(ctx, args[0], args[1:])

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	_ = fxApp.Stop(stopCtx)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		if errors.Is(runErr, errUsage) {
			printUsage()
		}
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: gigtunectl [--profile <name>] [--email <email>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  musicians                             List musicians")
	fmt.Fprintln(os.Stderr, "  register <name> <email> <instrument> [location]")
	fmt.Fprintln(os.Stderr, "                                        Create a profile")
	fmt.Fprintln(os.Stderr, "  gigs                                  List gigs")
	fmt.Fprintln(os.Stderr, "  notifications                         List notifications")
	fmt.Fprintln(os.Stderr, "  conversations                         List conversations")
	fmt.Fprintln(os.Stderr, "  read-all                              Mark all notifications read")
	fmt.Fprintln(os.Stderr, "  follow <musician>                     Follow or unfollow")
	fmt.Fprintln(os.Stderr, "  send <musician> <text>                Send a chat message")
	fmt.Fprintln(os.Stderr, "  review <musician> <rating> <comment>  Review a musician")
	fmt.Fprintln(os.Stderr, "  react <item> <emoji>                  React to a portfolio item")
	fmt.Fprintln(os.Stderr, "  comment <item> <text>                 Comment on a portfolio item")
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "musicians":
		return c.cmdMusicians(ctx)
	case "register":
		return c.cmdRegister(ctx, args)
	}

	st, err := c.login(ctx)
	if err != nil {
		return err
	}

	switch cmd {
	case "gigs":
		return c.cmdGigs(st)
	case "notifications":
		return c.cmdNotifications(st)
	case "conversations":
		return c.cmdConversations(st)
	case "read-all":
		return st.MarkAllNotificationsRead(ctx)
	case "follow":
		id, err := intArg(args, 0, "follow <musician>")
		if err != nil {
			return err
		}
		res, err := st.ToggleFollow(ctx, id)
		if err != nil {
			return err
		}
		if res == nil {
			return c.reportFollow(ctx, st, id)
		}
		if c.jsonOut {
			outputJSON(res)
			return nil
		}
		printFollow(res.UpdatedCurrentUser, res.UpdatedTargetUser)
		return nil
	case "send":
		id, err := intArg(args, 0, "send <musician> <text>")
		if err != nil {
			return err
		}
		text, err := restArg(args, 1, "send <musician> <text>")
		if err != nil {
			return err
		}
		return c.cmdSend(ctx, st, id, text)
	case "review":
		id, err := intArg(args, 0, "review <musician> <rating> <comment>")
		if err != nil {
			return err
		}
		rating, err := intArg(args, 1, "review <musician> <rating> <comment>")
		if err != nil {
			return err
		}
		comment, err := restArg(args, 2, "review <musician> <rating> <comment>")
		if err != nil {
			return err
		}
		m, err := st.AddReview(ctx, id, rating, comment)
		if err != nil {
			return err
		}
		if m == nil {
			reloaded, err := c.reload(ctx, st, id)
			if err != nil {
				return err
			}
			m = &reloaded
		}
		fmt.Printf("Reviewed %s (%d reviews)\n", m.Name, len(m.Reviews))
		return nil
	case "react":
		id, err := intArg(args, 0, "react <item> <emoji>")
		if err != nil {
			return err
		}
		emoji, err := restArg(args, 1, "react <item> <emoji>")
		if err != nil {
			return err
		}
		_, err = st.AddReaction(ctx, id, emoji)
		return err
	case "comment":
		id, err := intArg(args, 0, "comment <item> <text>")
		if err != nil {
			return err
		}
		text, err := restArg(args, 1, "comment <item> <text>")
		if err != nil {
			return err
		}
		_, err = st.AddComment(ctx, id, text)
		return err
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// login opens a session for --email and requires the bulk load to succeed.
func (c *cli) login(ctx context.Context) (*syncstore.Store, error) {
	if c.email == "" {
		return nil, fmt.Errorf("%w: --email is required", errUsage)
	}
	st, err := c.mgr.Login(ctx, c.email)
	if err != nil {
		return nil, err
	}
	if state, msg := st.Status(); state != status.Ready {
		return nil, errors.New(msg)
	}
	return st, nil
}

// reload refetches everything after a confirmation that carried no body
// and returns the musician it concerned.
func (c *cli) reload(ctx context.Context, st *syncstore.Store, id int) (model.Musician, error) {
	if err := st.Load(ctx); err != nil {
		return model.Musician{}, err
	}
	m, ok := st.Musician(id)
	if !ok {
		return model.Musician{}, fmt.Errorf("%w: %d", syncstore.ErrUnknownMusician, id)
	}
	return m, nil
}

func (c *cli) reportFollow(ctx context.Context, st *syncstore.Store, id int) error {
	target, err := c.reload(ctx, st, id)
	if err != nil {
		return err
	}
	me := st.CurrentUser()
	if c.jsonOut {
		outputJSON(model.FollowResult{UpdatedCurrentUser: me, UpdatedTargetUser: target})
		return nil
	}
	printFollow(me, target)
	return nil
}

func printFollow(me, target model.Musician) {
	if me.IsFollowing(target.ID) {
		fmt.Printf("Following %s\n", target.Name)
	} else {
		fmt.Printf("Unfollowed %s\n", target.Name)
	}
}

func (c *cli) cmdMusicians(ctx context.Context) error {
	var list []model.Musician
	if c.email != "" {
		st, err := c.login(ctx)
		if err != nil {
			return err
		}
		list = st.Musicians()
	} else {
		roster, err := c.mgr.FetchRoster(ctx)
		if err != nil {
			return err
		}
		list = roster
	}
	if c.jsonOut {
		outputJSON(list)
		return nil
	}
	for _, m := range list {
		fmt.Printf("%-4d %-24s %-10s %-20s %s\n", m.ID, m.Name, m.Instrument, m.Location, m.Email)
	}
	return nil
}

func (c *cli) cmdRegister(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: register <name> <email> <instrument> [location]", errUsage)
	}
	inst, ok := model.ParseInstrument(args[2])
	if !ok {
		return fmt.Errorf("unknown instrument %q", args[2])
	}
	draft := model.ProfileDraft{Name: args[0], Email: args[1], Instrument: inst}
	if len(args) > 3 {
		draft.Location = strings.Join(args[3:], " ")
	}
	st, err := c.mgr.Register(ctx, draft)
	if err != nil {
		return err
	}
	me := st.CurrentUser()
	if c.jsonOut {
		outputJSON(me)
		return nil
	}
	fmt.Printf("Registered %s (id %d)\n", me.Name, me.ID)
	return nil
}

func (c *cli) cmdGigs(st *syncstore.Store) error {
	gigs := st.Gigs()
	if c.jsonOut {
		outputJSON(gigs)
		return nil
	}
	if len(gigs) == 0 {
		fmt.Println("No gigs posted.")
		return nil
	}
	for _, g := range gigs {
		fmt.Printf("%-4d %-30s %-20s needs %-10s %s\n", g.ID, g.Title, g.BandName, g.InstrumentNeeded, g.Status)
	}
	return nil
}

func (c *cli) cmdNotifications(st *syncstore.Store) error {
	list := st.Notifications()
	if c.jsonOut {
		outputJSON(list)
		return nil
	}
	for _, n := range list {
		mark := " "
		if !n.Read {
			mark = "*"
		}
		fmt.Printf("%s %-4d %-22s %s\n", mark, n.ID, n.Type, n.Title)
	}
	fmt.Printf("%d unread\n", st.UnreadNotificationCount())
	return nil
}

func (c *cli) cmdConversations(st *syncstore.Store) error {
	convs := st.SortedConversations()
	if c.jsonOut {
		outputJSON(convs)
		return nil
	}
	me := st.UserID()
	for _, conv := range convs {
		peer := fmt.Sprintf("#%d", conv.Peer(me))
		if m, ok := st.Musician(conv.Peer(me)); ok {
			peer = m.Name
		}
		last := ""
		if msg, ok := conv.LastMessage(); ok {
			last = msg.Text
		}
		fmt.Printf("%-8s %-24s %s\n", conv.ID, peer, last)
	}
	return nil
}

// cmdSend waits for the realtime connection, since the session opens it in
// the background.
func (c *cli) cmdSend(ctx context.Context, st *syncstore.Store, to int, text string) error {
	conv, err := st.OpenConversation(ctx, to)
	if err != nil {
		return err
	}
	b := retry.WithMaxRetries(sendAttempts, retry.NewConstant(sendPoll))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		if err := st.SendMessage(conv.ID, text); err != nil {
			if errors.Is(err, realtime.ErrNotConnected) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("Sent to %s\n", conv.ID)
	return nil
}

func intArg(args []string, i int, usage string) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("%w: %s", errUsage, usage)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errUsage, usage)
	}
	return n, nil
}

func restArg(args []string, i int, usage string) (string, error) {
	if len(args) <= i {
		return "", fmt.Errorf("%w: %s", errUsage, usage)
	}
	return strings.Join(args[i:], " "), nil
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
