package ingest

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/cvpa-audit/internal/model"
)

// Fixture is a self-contained company dataset: the company record plus its
// promises and reviews. Used to seed local databases and drive audits without
// live collection.
type Fixture struct {
	Company  model.Company
	Promises []model.Promise
	Reviews  []model.Review
}

type fixtureFile struct {
	Company struct {
		ID         string `yaml:"id"`
		Name       string `yaml:"name"`
		WebsiteURL string `yaml:"website_url"`
		Industry   string `yaml:"industry"`
	} `yaml:"company"`
	Promises []struct {
		SourceType string  `yaml:"source_type"`
		SourceURL  string  `yaml:"source_url"`
		Text       string  `yaml:"text"`
		Category   string  `yaml:"category"`
		JobType    string  `yaml:"job_type"`
		GainType   string  `yaml:"gain_type"`
		Confidence float64 `yaml:"confidence"`
	} `yaml:"promises"`
	Reviews []struct {
		Source       string   `yaml:"source"`
		ReviewerName string   `yaml:"reviewer_name"`
		Rating       *float64 `yaml:"rating"`
		Text         string   `yaml:"text"`
		Date         string   `yaml:"date"`
		Verified     bool     `yaml:"verified"`
	} `yaml:"reviews"`
}

// LoadFixture reads and validates a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read fixture %s", path)
	}
	return ParseFixture(raw)
}

// ParseFixture decodes YAML fixture bytes.
func ParseFixture(raw []byte) (*Fixture, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, eris.Wrap(err, "ingest: parse fixture yaml")
	}

	if file.Company.Name == "" {
		return nil, eris.New("ingest: fixture company name is required")
	}

	now := time.Now().UTC()
	fixture := &Fixture{
		Company: model.Company{
			ID:         file.Company.ID,
			Name:       file.Company.Name,
			WebsiteURL: file.Company.WebsiteURL,
			Industry:   file.Company.Industry,
		},
	}

	for i, p := range file.Promises {
		category := model.Category(p.Category)
		if !category.Valid() {
			return nil, eris.Errorf("ingest: fixture promise %d: invalid category %q", i, p.Category)
		}
		if p.Text == "" {
			return nil, eris.Errorf("ingest: fixture promise %d: empty text", i)
		}
		confidence := p.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = 0.8
		}
		sourceType := p.SourceType
		if sourceType == "" {
			sourceType = model.SourceWebsite
		}
		fixture.Promises = append(fixture.Promises, model.Promise{
			CompanyID:     file.Company.ID,
			SourceType:    sourceType,
			SourceURL:     p.SourceURL,
			ExtractedText: p.Text,
			Category:      category,
			JobType:       p.JobType,
			GainType:      p.GainType,
			Confidence:    confidence,
			ExtractedAt:   now,
		})
	}

	for i, r := range file.Reviews {
		if r.Text == "" {
			return nil, eris.Errorf("ingest: fixture review %d: empty text", i)
		}
		date, err := parseReviewDate(r.Date)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: fixture review %d", i)
		}
		source := r.Source
		if source == "" {
			source = "fixture"
		}
		fixture.Reviews = append(fixture.Reviews, model.Review{
			CompanyID:    file.Company.ID,
			Source:       source,
			ReviewerName: r.ReviewerName,
			Rating:       r.Rating,
			ReviewText:   r.Text,
			ReviewDate:   date,
			Verified:     r.Verified,
			CollectedAt:  now,
		})
	}

	return fixture, nil
}
