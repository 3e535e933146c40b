// Command fitcheck is a thin command line harness over the client toolkit.
// It wires the full stack (config, storage, HTTP transport, session manager,
// screen state) exactly as an embedding application would, and exposes one
// subcommand per screen operation.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fitcheck/fitcheck-go/client"
	"github.com/fitcheck/fitcheck-go/config"
	"github.com/fitcheck/fitcheck-go/core/chat"
	"github.com/fitcheck/fitcheck-go/core/feed"
	"github.com/fitcheck/fitcheck-go/core/gym"
	"github.com/fitcheck/fitcheck-go/core/profile"
	"github.com/fitcheck/fitcheck-go/core/session"
	"github.com/fitcheck/fitcheck-go/core/social"
	"github.com/fitcheck/fitcheck-go/core/storage"
	"github.com/fitcheck/fitcheck-go/pkg/apperrors"
	"github.com/fitcheck/fitcheck-go/pkg/eventbus"
	"github.com/fitcheck/fitcheck-go/pkg/httpclient"
	"github.com/fitcheck/fitcheck-go/pkg/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, apperrors.UserMessage(err, "Something went wrong"))
		os.Exit(1)
	}
}

func run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWithDotenv(".env")
	if err != nil {
		return err
	}

	log := logger.New("fitcheck", cfg.LogLevel)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.HTTPTimeout
	httpCfg.MaxRetries = cfg.HTTPMaxRetries
	transport := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("fitcheck-api"),
		log,
	)

	api := client.New(cfg.APIBaseURL, transport, client.WithLogger(log))

	bus := eventbus.New()
	manager := session.NewManager(api, store,
		session.WithRememberMeTTL(cfg.RememberMeTTL),
		session.WithEventBus(bus),
		session.WithLogger(log),
	)
	api.SetTokenProvider(manager)

	_ = bus.Subscribe(eventbus.EventSessionExpired, func(eventbus.SessionEventData) {
		fmt.Fprintln(os.Stderr, "Session expired, please sign in again")
	})
	_ = bus.Subscribe(eventbus.EventMutationFailed, func(data eventbus.MutationEventData) {
		fmt.Fprintln(os.Stderr, data.Message)
	})

	if err := manager.Initialize(ctx); err != nil {
		return err
	}

	if len(args) == 0 {
		usage()
		return nil
	}

	app := &app{
		cfg:     cfg,
		api:     api,
		session: manager,
		bus:     bus,
		log:     log,
	}
	return app.dispatch(ctx, args[0], args[1:])
}

// openStore builds the configured storage driver, opening the sqlite handle
// when that driver is selected.
func openStore(cfg config.Config) (storage.Store, error) {
	storeCfg := storage.Config{Driver: cfg.StorageDriver}
	deps := storage.Dependencies{}

	switch cfg.StorageDriver {
	case storage.DriverFile:
		fileCfg := storage.FileConfig{Path: cfg.StoragePath}
		if cfg.StorageKey != "" {
			key, err := hex.DecodeString(cfg.StorageKey)
			if err != nil {
				return nil, fmt.Errorf("decode storage key: %w", err)
			}
			fileCfg.SealKey = key
		}
		storeCfg.File = &fileCfg
	case storage.DriverSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.StoragePath), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return nil, fmt.Errorf("open sqlite state db: %w", err)
		}
		deps.SQLiteDB = db
	case storage.DriverRedis:
		storeCfg.Redis = &storage.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	}

	return storage.New(storeCfg, deps)
}

type app struct {
	cfg     config.Config
	api     *client.Client
	session *session.Manager
	bus     *eventbus.Bus
	log     *slog.Logger
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "signup":
		return a.signup(ctx, args)
	case "logout":
		return a.session.Logout(ctx)
	case "whoami":
		return a.whoami()
	case "feed":
		return a.feed(ctx)
	case "post":
		return a.post(ctx, args)
	case "like":
		return a.like(ctx, args)
	case "comment":
		return a.comment(ctx, args)
	case "chats":
		return a.chats(ctx)
	case "messages":
		return a.messages(ctx, args)
	case "send":
		return a.send(ctx, args)
	case "users":
		return a.users(ctx)
	case "follow":
		return a.follow(ctx, args)
	case "gyms":
		return a.gyms(ctx, args)
	case "nearby":
		return a.nearby(ctx)
	case "profile":
		return a.profile(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	remember := fs.Bool("remember", false, "keep the session across restarts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var opts []session.SignInOption
	if *remember {
		opts = append(opts, session.WithRememberMe())
	}
	if err := a.session.SignIn(ctx, *email, *password, opts...); err != nil {
		return err
	}
	fmt.Printf("Signed in as %s\n", a.session.Username())
	return nil
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	username := fs.String("username", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.session.SignUp(ctx, client.SignUpParams{
		Email:    *email,
		Password: *password,
		Username: *username,
	}); err != nil {
		return err
	}
	fmt.Println("Account created, you can sign in now")
	return nil
}

func (a *app) whoami() error {
	if !a.session.IsAuthenticated() {
		fmt.Println("not signed in")
		return nil
	}
	fmt.Println(a.session.Username())
	return nil
}

func (a *app) feed(ctx context.Context) error {
	f := feed.New(a.api, a.session, feed.WithEventBus(a.bus), feed.WithLogger(a.log))
	if err := f.Refresh(ctx); err != nil {
		return err
	}
	for _, p := range f.Posts() {
		liked := " "
		if p.IsLiked {
			liked = "*"
		}
		fmt.Printf("[%s] %s %s (%d likes, %d comments)\n", p.PostID, liked, p.Title, p.TotalLikes, p.TotalComments)
	}
	return nil
}

func (a *app) post(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("post", flag.ContinueOnError)
	title := fs.String("title", "", "post title")
	description := fs.String("description", "", "post description")
	image := fs.String("image", "", "image URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f := feed.New(a.api, a.session, feed.WithEventBus(a.bus), feed.WithLogger(a.log))
	if err := f.CreatePost(ctx, client.CreatePostParams{
		Title:       *title,
		Description: *description,
		ImageURL:    *image,
	}); err != nil {
		return err
	}
	fmt.Println("Posted")
	return nil
}

func (a *app) like(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: fitcheck like <post-id>")
	}
	f := feed.New(a.api, a.session, feed.WithEventBus(a.bus), feed.WithLogger(a.log))
	if err := f.Refresh(ctx); err != nil {
		return err
	}
	pending, err := f.ToggleLike(ctx, args[0])
	if err != nil {
		return err
	}
	return pending.Await()
}

func (a *app) comment(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: fitcheck comment <post-id> <text>")
	}
	f := feed.New(a.api, a.session, feed.WithEventBus(a.bus), feed.WithLogger(a.log))
	if err := f.Refresh(ctx); err != nil {
		return err
	}
	pending, err := f.AddComment(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	return pending.Await()
}

func (a *app) chats(ctx context.Context) error {
	inbox := chat.NewInbox(a.api)
	if err := inbox.Refresh(ctx); err != nil {
		return err
	}
	for _, c := range inbox.Chats() {
		fmt.Printf("[%s] %s: %s\n", c.ChatID, c.Participant, c.LastMessage)
	}
	return nil
}

func (a *app) messages(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: fitcheck messages <chat-id>")
	}
	conv := chat.New(args[0], a.api, a.session, chat.WithEventBus(a.bus), chat.WithLogger(a.log))
	if err := conv.Refresh(ctx); err != nil {
		return err
	}
	for _, m := range conv.Messages() {
		fmt.Printf("%s %s: %s\n", m.CreatedAt.Format("15:04"), m.OwnerUsername, m.Text)
	}
	return nil
}

func (a *app) send(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: fitcheck send <chat-id> <text>")
	}
	conv := chat.New(args[0], a.api, a.session, chat.WithEventBus(a.bus), chat.WithLogger(a.log))
	if err := conv.Refresh(ctx); err != nil {
		return err
	}
	pending, err := conv.Send(ctx, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	return pending.Await()
}

func (a *app) users(ctx context.Context) error {
	dir := social.New(a.api, a.session, social.WithEventBus(a.bus), social.WithLogger(a.log))
	if err := dir.Refresh(ctx); err != nil {
		return err
	}
	for _, u := range dir.Users() {
		marker := ""
		if u.IsFollowing {
			marker = " (following)"
		}
		fmt.Printf("[%s] %s, %d followers%s\n", u.ID, u.Username, u.Followers, marker)
	}
	return nil
}

func (a *app) follow(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: fitcheck follow <user-id>")
	}
	dir := social.New(a.api, a.session, social.WithEventBus(a.bus), social.WithLogger(a.log))
	if err := dir.Refresh(ctx); err != nil {
		return err
	}
	pending, err := dir.ToggleFollow(ctx, args[0])
	if err != nil {
		return err
	}
	return pending.Await()
}

func (a *app) gyms(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("gyms", flag.ContinueOnError)
	province := fs.String("province", "", "province to list gyms for")
	query := fs.String("search", "", "filter by name, location or tag")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *province == "" {
		return fmt.Errorf("usage: fitcheck gyms -province <name> [-search <query>]")
	}

	finder := gym.New(a.api)
	if err := finder.LoadProvince(ctx, *province); err != nil {
		return err
	}
	for _, g := range finder.Search(*query) {
		fmt.Printf("[%s] %s, %s (%.1f from %d ratings)\n", g.ID, g.Name, g.Location, g.Rating, g.RatingCount)
	}
	return nil
}

func (a *app) nearby(ctx context.Context) error {
	finder := gym.New(a.api)
	gyms, err := finder.Nearby(ctx)
	if err != nil {
		return err
	}
	for _, g := range gyms {
		fmt.Printf("[%s] %s, %s (%.1f from %d ratings)\n", g.ID, g.Name, g.Location, g.Rating, g.RatingCount)
	}
	return nil
}

func (a *app) profile(ctx context.Context, args []string) error {
	svc := profile.New(a.api)

	username := a.session.Username()
	if len(args) > 0 {
		username = args[0]
	}

	p, err := svc.Get(ctx, username)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n%s\n", p.Username, p.Bio)

	if len(args) == 0 && a.session.IsAuthenticated() {
		stats, err := svc.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d posts, %d followers, %d following\n", stats.Posts, stats.Followers, stats.Following)
	}
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: fitcheck <command> [args]

commands:
  login -email <email> -password <password> [-remember]
  signup -email <email> -password <password> -username <name>
  logout
  whoami
  feed
  post -title <title> [-description <text>] [-image <url>]
  like <post-id>
  comment <post-id> <text>
  chats
  messages <chat-id>
  send <chat-id> <text>
  users
  follow <user-id>
  gyms -province <name> [-search <query>]
  nearby
  profile [username]`)
}
