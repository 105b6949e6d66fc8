package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"socialgraph/internal/graph"
	"socialgraph/pkg/config"
	"socialgraph/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	dir := flag.String("dir", "", "Directory to write the sample dataset to (defaults to DATA_DIR)")
	drop := flag.Bool("drop", false, "Drop all existing graph data before loading")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	target := *dir
	if target == "" {
		target = cfg.DataDir
	}

	ctx := context.Background()
	store, err := graph.Open(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer store.Close(context.Background())

	if *drop {
		log.Info("Dropping existing graph data...")
		if err := graph.NewAdmin(store).DropAll(ctx); err != nil {
			log.Fatal("Failed to drop graph data", zap.Error(err))
		}
	}

	// Apply schema
	log.Info("Applying schema...")
	registry := graph.NewRegistry(store)
	if err := registry.ApplyAll(ctx); err != nil {
		log.Fatal("Failed to apply schema", zap.Error(err))
	}

	// Write the sample dataset
	log.Info("Writing sample dataset", zap.String("dir", target))
	if err := os.MkdirAll(target, 0o755); err != nil {
		log.Fatal("Failed to create data directory", zap.Error(err))
	}
	for name, content := range sampleFiles {
		path := filepath.Join(target, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			log.Fatal("Failed to write sample file", zap.String("path", path), zap.Error(err))
		}
	}

	// Load it
	report, err := graph.NewBulkLoader(store, cfg.LoadBatchSize).LoadDirectory(ctx, target)
	if err != nil {
		log.Fatal("Failed to load sample dataset", zap.Error(err))
	}

	for entityType, count := range report.Nodes {
		log.Info("Loaded nodes", zap.String("entity", string(entityType)), zap.Int("count", count))
	}
	for entityType, count := range report.Edges {
		log.Info("Linked edges", zap.String("entity", string(entityType)), zap.Int("count", count))
	}
	if len(report.RecordErrors) > 0 || len(report.EdgeErrors) > 0 {
		log.Warn("Some records or edges were skipped",
			zap.Int("record_error_types", len(report.RecordErrors)),
			zap.Int("edge_error_types", len(report.EdgeErrors)),
		)
	}

	log.Info("Seeding complete")
}

// sampleFiles is a small self-consistent dataset: four users, two
// communities, posts with hashtags and comments, trends, and influence
// scores straddling the default purge cutoff.
var sampleFiles = map[string]string{
	"users.csv": `user_id,username,email,bio,joinDate,isAdmin,isActive,followerCount,following_count,follows,trends,communities
u1,alice,alice@example.com,urban gardener,2024-01-05,false,true,2,2,"u2,u3",t1,c1
u2,bob,bob@example.com,coffee nerd,2024-02-10,false,true,1,1,u1,,c1
u3,carol,carol@example.com,gallery curator,2024-03-15,false,true,2,0,,t2,"c1,c2"
u4,dave,dave@example.com,,2024-06-01,true,true,0,1,u3,,c2
`,
	"post.csv": `post_id,content,created_at,likes_count,shares_count,is_archived,author,community,lifecycle
p1,Best food spots around the market this weekend,2024-06-10T09:00:00Z,24,5,false,u1,c1,ct1
p2,New painting exhibit opening at the gallery,2024-06-11T14:30:00Z,18,2,false,u3,c2,
p3,Life update: finally finished the garden beds,2024-06-12T08:15:00Z,41,12,false,u1,c1,ct2
`,
	"comment.csv": `comment_id,content,created_at,likes_count,sentiment_score,author,post,liked_by
cm1,Saving this list!,2024-06-10T10:00:00Z,3,0.9,u2,p1,"u1,u3"
cm2,See you at the opening,2024-06-11T15:00:00Z,1,0.8,u1,p2,u3
`,
	"communities.csv": `community_id,name,description,created_at,health_score,members,admins,posts,patterns
c1,Food Lovers,recipes and restaurant tips,2023-11-01,0.92,"u1,u2,u3",u1,"p1,p3",
c2,Art Collective,local exhibits and critique,2023-12-15,0.88,"u3,u4",u3,p2,
`,
	"trends.csv": `trend_id,name,score,start_date,followers
t1,urban-gardening,9.0,2024-05-20,u1
t2,gallery-openings,5.0,2024-06-01,u3
t3,last-season,0,2024-01-01,
`,
	"hashtags.csv": `hashtag_id,name,usage_count,trending_score,posts,comments
h1,foodie,2,4.2,"p1,p3",
h2,art,1,2.8,p2,cm2
`,
	"influence.csv": `score_id,score_value,computed_at,factors,user
s1,82.5,2024-06-15,"reach,engagement",u1
s2,35.0,2024-06-15,reach,u4
`,
	"content.csv": `content_id,type,created_at,engagement_rate,lifecycle_stage,related_posts,related_comments,related_users,related_communities
ct1,photo,2024-06-10T09:00:00Z,0.87,rising,p1,,u1,c1
ct2,article,2024-06-12T08:15:00Z,0.91,trending,p3,,u1,
`,
}
