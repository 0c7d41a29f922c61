// Command admin runs privileged maintenance against the document store,
// bypassing client access rules.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/raknago/parking-backend/internal/application/admin"
	"github.com/raknago/parking-backend/internal/bootstrap"
	"github.com/raknago/parking-backend/internal/config"
	"github.com/raknago/parking-backend/internal/domain"
	"github.com/raknago/parking-backend/internal/logger"
)

const usage = `usage: admin <command> [flags]

commands:
  list-users  [--target EMAIL]       list every user, optionally offer to promote one
  make-admin  [--email EMAIL] [--yes] promote a user to admin
  promote     EMAIL                   promote without prompting
  setup       [--rules-out PATH]      describe collections and write the rule document
  backup      [--created-by ID]       record collection counts

global flags:
  --credentials PATH  service account JSON (default $GOOGLE_APPLICATION_CREDENTIALS)
  --project ID        override the project id from the credentials
`

// adminAPI is the operator surface the commands drive.
type adminAPI interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (domain.User, error)
	PromoteToAdmin(ctx context.Context, userID string) (domain.User, error)
	Setup(ctx context.Context) ([]string, error)
	Backup(ctx context.Context, createdBy string) (admin.BackupResult, error)
}

type globalFlags struct {
	credentials string
	project     string
}

func (g *globalFlags) addTo(fs *pflag.FlagSet) {
	fs.StringVar(&g.credentials, "credentials", "", "service account JSON file")
	fs.StringVar(&g.project, "project", "", "project id override")
}

type connectFunc func(ctx context.Context, g globalFlags) (adminAPI, func(), error)

type cli struct {
	in      *bufio.Reader
	out     io.Writer
	errOut  io.Writer
	connect connectFunc

	writeFile func(path string, data []byte) error
}

func main() {
	_ = godotenv.Load()
	logger.InitWithWriter(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		errOut:  os.Stderr,
		connect: connectStore,
		writeFile: func(path string, data []byte) error {
			return os.WriteFile(path, data, 0o644)
		},
	}
	os.Exit(c.run(ctx, os.Args[1:]))
}

func connectStore(ctx context.Context, g globalFlags) (adminAPI, func(), error) {
	sa, err := config.LoadServiceAccount(g.credentials)
	if err != nil {
		return nil, nil, err
	}
	if g.project != "" {
		sa.ProjectID = g.project
	}
	logger.Logger.Info().Str("project", sa.ProjectID).Msg("connecting to document store")

	svc, cleanup, err := bootstrap.NewAdminService(ctx, sa.DatabaseURL, os.Getenv("RABBIT_URL"), os.Getenv("REDIS_ADDR"), config.LoadBackup(), logger.Logger)
	if err != nil {
		return nil, nil, err
	}
	return svc, cleanup, nil
}

func (c *cli) run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(c.errOut, usage)
		if len(args) == 0 {
			return 1
		}
		return 0
	}

	switch args[0] {
	case "list-users":
		return c.listUsers(ctx, args[1:])
	case "make-admin":
		return c.makeAdmin(ctx, args[1:])
	case "promote":
		return c.promote(ctx, args[1:])
	case "setup":
		return c.setup(ctx, args[1:])
	case "backup":
		return c.backup(ctx, args[1:])
	default:
		fmt.Fprintf(c.errOut, "unknown command %q\n\n%s", args[0], usage)
		return 1
	}
}

func (c *cli) flagSet(name string, g *globalFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(c.errOut)
	g.addTo(fs)
	return fs
}

func (c *cli) open(ctx context.Context, g globalFlags) (adminAPI, func(), bool) {
	svc, cleanup, err := c.connect(ctx, g)
	if err != nil {
		c.fail(err)
		return nil, nil, false
	}
	return svc, cleanup, true
}

func (c *cli) fail(err error) int {
	fmt.Fprintf(c.errOut, "error: %v\n", err)
	return 1
}

// confirm reads one answer; yes and y (any case) accept.
func (c *cli) confirm(prompt string) bool {
	fmt.Fprint(c.out, prompt)
	line, _ := c.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "yes", "y":
		return true
	}
	return false
}

func (c *cli) prompt(prompt string) string {
	fmt.Fprint(c.out, prompt)
	line, _ := c.in.ReadString('\n')
	return strings.TrimSpace(line)
}
