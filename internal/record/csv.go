package record

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// FileNames maps each entity type to its tabular input file.
var FileNames = map[EntityType]string{
	EntityUser:      "users.csv",
	EntityPost:      "post.csv",
	EntityComment:   "comment.csv",
	EntityCommunity: "communities.csv",
	EntityTrend:     "trends.csv",
	EntityHashtag:   "hashtags.csv",
	EntityActivity:  "activity.csv",
	EntityAnalytics: "analytics.csv",
	EntityPattern:   "patterns.csv",
	EntityContent:   "content.csv",
	EntityInfluence: "influence.csv",
}

// IDColumns maps each entity type to the column carrying its external id.
var IDColumns = map[EntityType]string{
	EntityUser:      "user_id",
	EntityPost:      "post_id",
	EntityComment:   "comment_id",
	EntityCommunity: "community_id",
	EntityTrend:     "trend_id",
	EntityHashtag:   "hashtag_id",
	EntityActivity:  "activity_id",
	EntityAnalytics: "analytics_id",
	EntityPattern:   "pattern_id",
	EntityContent:   "content_id",
	EntityInfluence: "score_id",
}

// ReadRows reads a headered CSV stream into flat rows keyed by column name.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are handled per-record

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var rows []Row
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+2, err)
		}
		row := make(Row, len(header))
		for i, name := range header {
			if i < len(fields) {
				row[name] = fields[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadFile reads one entity type's CSV file into flat rows.
func ReadFile(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	return ReadRows(file)
}
