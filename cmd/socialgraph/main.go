package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"socialgraph/internal/graph"
	"socialgraph/pkg/config"
	"socialgraph/pkg/logger"
)

const usage = `Usage: socialgraph <command> [args]

Commands:
  schema                          apply all type definitions
  load <dir>                      bulk-load CSV files from a directory
  query <name> [key=value ...]    run a named query template
  create-user <username> <email> [bio]
  create-post <author-id> <content> [community-id] [hashtag ...]
  follow <follower-id> <target-id>
  join <user-id> <community-id>
  like <user-id> <post-id>
  purge-users [cutoff]            delete users below an influence cutoff
  drop                            delete all graph data
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()
	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	store, err := graph.Open(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer store.Close(context.Background())

	if err := run(ctx, cfg, store, os.Args[1], os.Args[2:]); err != nil {
		log.Fatal("Command failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, store *graph.Store, command string, args []string) error {
	switch command {
	case "schema":
		registry := graph.NewRegistry(store)
		if err := registry.ApplyAll(ctx); err != nil {
			return err
		}
		return printJSON(map[string]interface{}{"applied": registry.AppliedTypes()})

	case "load":
		dir := cfg.DataDir
		if len(args) > 0 {
			dir = args[0]
		}
		registry := graph.NewRegistry(store)
		if err := registry.ApplyAll(ctx); err != nil {
			return err
		}
		report, err := graph.NewBulkLoader(store, cfg.LoadBatchSize).LoadDirectory(ctx, dir)
		if err != nil {
			return err
		}
		return printJSON(report)

	case "query":
		if len(args) < 1 {
			return fmt.Errorf("usage: query <name> [key=value ...]")
		}
		params := graph.Params{}
		for _, arg := range args[1:] {
			key, value, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("malformed parameter %q, expected key=value", arg)
			}
			if n, err := strconv.Atoi(value); err == nil {
				params[key] = n
			} else {
				params[key] = value
			}
		}
		result, err := graph.NewQueryRunner(store).RunTemplate(ctx, args[0], params)
		if err != nil {
			return err
		}
		return printJSON(result)

	case "create-user":
		if len(args) < 2 {
			return fmt.Errorf("usage: create-user <username> <email> [bio]")
		}
		bio := ""
		if len(args) > 2 {
			bio = args[2]
		}
		id, err := graph.NewMutator(store).CreateUser(ctx, args[0], args[1], bio)
		if err != nil {
			return err
		}
		return printJSON(map[string]string{"id": id})

	case "create-post":
		if len(args) < 2 {
			return fmt.Errorf("usage: create-post <author-id> <content> [community-id] [hashtag ...]")
		}
		communityID := ""
		var hashtags []string
		if len(args) > 2 {
			communityID = args[2]
		}
		if len(args) > 3 {
			hashtags = args[3:]
		}
		id, err := graph.NewMutator(store).CreatePost(ctx, args[0], args[1], hashtags, communityID)
		if err != nil {
			return err
		}
		return printJSON(map[string]string{"id": id})

	case "follow":
		if len(args) != 2 {
			return fmt.Errorf("usage: follow <follower-id> <target-id>")
		}
		if err := graph.NewMutator(store).FollowUser(ctx, args[0], args[1]); err != nil {
			return err
		}
		return printJSON(map[string]string{"status": "following"})

	case "join":
		if len(args) != 2 {
			return fmt.Errorf("usage: join <user-id> <community-id>")
		}
		if err := graph.NewMutator(store).JoinCommunity(ctx, args[0], args[1]); err != nil {
			return err
		}
		return printJSON(map[string]string{"status": "joined"})

	case "like":
		if len(args) != 2 {
			return fmt.Errorf("usage: like <user-id> <post-id>")
		}
		if err := graph.NewMutator(store).LikePost(ctx, args[0], args[1]); err != nil {
			return err
		}
		return printJSON(map[string]string{"status": "liked"})

	case "purge-users":
		cutoff := cfg.InfluenceCutoff
		if len(args) > 0 {
			parsed, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid cutoff %q: %w", args[0], err)
			}
			cutoff = parsed
		}
		deleted, err := graph.NewAdmin(store).DeleteUsersBelowInfluence(ctx, cutoff)
		if err != nil {
			return err
		}
		return printJSON(map[string]interface{}{"deleted": deleted, "cutoff": cutoff})

	case "drop":
		if err := graph.NewAdmin(store).DropAll(ctx); err != nil {
			return err
		}
		return printJSON(map[string]string{"status": "dropped"})

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
