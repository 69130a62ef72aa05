package ingest

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/cvpa-audit/internal/model"
)

// reviewDateLayouts are tried in order when parsing the review_date column.
var reviewDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// ReadReviewsCSV parses customer reviews from CSV. The header row names the
// columns; source, review_text and review_date are required, reviewer_name,
// rating and verified are optional. Malformed rows are skipped with a warning
// rather than failing the whole import.
func ReadReviewsCSV(ctx context.Context, r io.Reader, companyID string) ([]model.Review, error) {
	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(ctx, r, CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		TrimSpace: true,
	})

	var cols map[string]int
	var reviews []model.Review
	skipped := 0

	for row := range rowCh {
		if cols == nil {
			header := <-headerCh
			cols = indexColumns(header)
			for _, required := range []string{"source", "review_text", "review_date"} {
				if _, ok := cols[required]; !ok {
					return nil, eris.Errorf("ingest: csv missing required column %q", required)
				}
			}
		}

		review, err := rowToReview(row, cols, companyID)
		if err != nil {
			skipped++
			zap.L().Warn("skipping malformed review row", zap.Error(err))
			continue
		}
		reviews = append(reviews, review)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}

	// Header arrives even when the file has no data rows.
	if cols == nil {
		select {
		case header := <-headerCh:
			cols = indexColumns(header)
		default:
			return nil, eris.New("ingest: empty csv")
		}
	}

	if skipped > 0 {
		zap.L().Info("review import finished with skipped rows",
			zap.Int("imported", len(reviews)),
			zap.Int("skipped", skipped),
		)
	}
	return reviews, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func rowToReview(row []string, cols map[string]int, companyID string) (model.Review, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	text := field("review_text")
	if text == "" {
		return model.Review{}, eris.New("empty review_text")
	}

	date, err := parseReviewDate(field("review_date"))
	if err != nil {
		return model.Review{}, err
	}

	review := model.Review{
		CompanyID:    companyID,
		Source:       field("source"),
		ReviewerName: field("reviewer_name"),
		ReviewText:   text,
		ReviewDate:   date,
		CollectedAt:  time.Now().UTC(),
	}
	if review.Source == "" {
		return model.Review{}, eris.New("empty source")
	}

	if raw := field("rating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.Review{}, eris.Wrapf(err, "bad rating %q", raw)
		}
		review.Rating = &rating
	}

	if raw := field("verified"); raw != "" {
		verified, err := strconv.ParseBool(raw)
		if err != nil {
			return model.Review{}, eris.Wrapf(err, "bad verified %q", raw)
		}
		review.Verified = verified
	}

	return review, nil
}

func parseReviewDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, eris.New("empty review_date")
	}
	for _, layout := range reviewDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, eris.Errorf("unparseable review_date %q", raw)
}
