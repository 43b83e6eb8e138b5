package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/app"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/config"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/logger"
)

const usage = "expected 'export', 'import' or 'scheduler-pass' subcommands"

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "JSON file to import")
	importUser := importCmd.String("user", "", "username that will own the imported links")
	passCmd := flag.NewFlagSet("scheduler-pass", flag.ExitOnError)
	passAt := passCmd.String("at", "", "evaluate the pass at this RFC 3339 time instead of now")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg := config.Load()
	logger.Init(cfg.AppEnv)

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer a.Close()

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		doExport(ctx, a)
	case "import":
		importCmd.Parse(os.Args[2:])
		if *importFile == "" || *importUser == "" {
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		doImport(ctx, a, *importUser, *importFile)
	case "scheduler-pass":
		passCmd.Parse(os.Args[2:])
		doPass(ctx, a, *passAt)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func doExport(ctx context.Context, a *app.App) {
	links, err := a.Repo.Dump(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("export failed")
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(links); err != nil {
		logger.Fatal().Err(err).Msg("encode failed")
	}
}

// doImport appends the file's links to the user's ordering, keeping the
// relative order of the file.
func doImport(ctx context.Context, a *app.App, username, filename string) {
	user, err := a.Repo.GetUserByUsername(ctx, username)
	if err != nil || user == nil {
		logger.Fatal().Err(err).Str("username", username).Msg("unknown user")
	}

	file, err := os.Open(filename)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open file")
	}
	defer file.Close()

	var links []domain.Link
	if err := json.NewDecoder(file).Decode(&links); err != nil {
		logger.Fatal().Err(err).Msg("decode failed")
	}

	count := 0
	for _, l := range links {
		_, err := a.Links.AppendLink(ctx, user.ID, domain.NewLink{
			Title:       l.Title,
			URL:         l.URL,
			Icon:        l.Icon,
			EmbedType:   l.EmbedType,
			Active:      l.Active,
			ScheduledAt: l.ScheduledAt,
			ExpiresAt:   l.ExpiresAt,
		})
		if err != nil {
			logger.Warn().Err(err).Str("title", l.Title).Msg("failed to import link")
			continue
		}
		count++
	}
	logger.Info().Int("count", count).Str("username", username).Msg("import finished")
}

func doPass(ctx context.Context, a *app.App, at string) {
	now := time.Now().UTC()
	if at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid -at")
		}
		now = t.UTC()
	}

	result, err := a.Scheduler.RunPass(ctx, now)
	if result != nil {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		_ = encoder.Encode(result)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler pass failed")
	}
}
