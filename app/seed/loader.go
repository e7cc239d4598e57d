package seed

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"essaim/app/database"
)

// Campaign is one entry of the seed file.
type Campaign struct {
	BrandName   string `yaml:"brand_name"`
	Description string `yaml:"description"`
	Keywords    string `yaml:"keywords"`
	Subreddits  string `yaml:"subreddits"`
	Active      *bool  `yaml:"active"`
}

type seedFile struct {
	Campaigns []Campaign `yaml:"campaigns"`
}

// Loader registers campaigns from a YAML file at startup. Campaigns are
// matched by brand name; existing ones are left untouched so the file can
// stay in place across restarts.
type Loader struct {
	path         string
	campaignRepo database.CampaignRepository
}

func NewLoader(path string, campaignRepo database.CampaignRepository) *Loader {
	return &Loader{path: path, campaignRepo: campaignRepo}
}

// Run returns the number of campaigns created. A missing file is not an
// error; invalid entries are skipped with a warning.
func (l *Loader) Run() (int, error) {
	if l.path == "" {
		return 0, nil
	}

	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		slog.Debug("Seed file not found, skipping", "path", l.path)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	created := 0
	for i, entry := range file.Campaigns {
		if err := validate(entry); err != nil {
			slog.Warn("Skipping invalid seed campaign", "index", i, "error", err)
			continue
		}

		existing, err := l.campaignRepo.GetCampaignByBrand(entry.BrandName)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}

		campaign, err := l.campaignRepo.CreateCampaign(entry.BrandName, entry.Description,
			entry.Keywords, entry.Subreddits)
		if err != nil {
			return created, err
		}

		if entry.Active != nil && !*entry.Active {
			if _, err := l.campaignRepo.SetCampaignActive(campaign.ID, false); err != nil {
				return created, err
			}
		}

		created++
	}

	return created, nil
}

func validate(c Campaign) error {
	if c.BrandName == "" {
		return fmt.Errorf("missing brand_name")
	}
	if c.Description == "" {
		return fmt.Errorf("missing description")
	}
	if c.Keywords == "" {
		return fmt.Errorf("missing keywords")
	}
	if c.Subreddits == "" {
		return fmt.Errorf("missing subreddits")
	}
	return nil
}
