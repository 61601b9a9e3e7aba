// Package catalog loads the static fixtures backing the store, the
// achievements screen, the leaderboard and the notifications panel.
// Defaults are embedded; any file can be overridden from a fixture
// directory so the core logic stays testable against other data sets.
package catalog

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ecorecicla/greengo/internal/model"
)

//go:embed *.yaml
var fixtureFS embed.FS

// Catalog holds the parsed fixture data. It is read-only after Load.
type Catalog struct {
	items         []model.StoreItem
	achievements  []model.Achievement
	global        []model.RankEntry
	weekly        []model.RankEntry
	friends       []model.RankEntry
	notifications []model.Notification
	streak        model.Streak
	seedStats     model.EcoStats
}

type storeFile struct {
	Items []model.StoreItem `yaml:"items"`
}

type achievementsFile struct {
	Achievements []model.Achievement `yaml:"achievements"`
}

type rankingFile struct {
	Global  []model.RankEntry `yaml:"global"`
	Weekly  []model.RankEntry `yaml:"weekly"`
	Friends []model.RankEntry `yaml:"friends"`
}

type notificationsFile struct {
	Notifications []model.Notification `yaml:"notifications"`
}

type streakFile struct {
	Streak model.Streak   `yaml:"streak"`
	Stats  model.EcoStats `yaml:"stats"`
}

// Load parses the embedded fixtures. When dir is non-empty, a file of the
// same name under dir replaces the embedded one.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{}

	var store storeFile
	if err := readFixture(dir, "store.yaml", &store); err != nil {
		return nil, err
	}
	for i, it := range store.Items {
		if it.PriceCoins <= 0 {
			return nil, fmt.Errorf("store.yaml: item[%d] %q has non-positive price", i, it.Name)
		}
	}
	c.items = store.Items

	var ach achievementsFile
	if err := readFixture(dir, "achievements.yaml", &ach); err != nil {
		return nil, err
	}
	c.achievements = ach.Achievements

	var rank rankingFile
	if err := readFixture(dir, "ranking.yaml", &rank); err != nil {
		return nil, err
	}
	c.global, c.weekly, c.friends = rank.Global, rank.Weekly, rank.Friends

	var notes notificationsFile
	if err := readFixture(dir, "notifications.yaml", &notes); err != nil {
		return nil, err
	}
	c.notifications = notes.Notifications

	var streak streakFile
	if err := readFixture(dir, "streak.yaml", &streak); err != nil {
		return nil, err
	}
	c.streak = streak.Streak
	c.seedStats = streak.Stats

	return c, nil
}

func readFixture(dir, name string, out any) error {
	var data []byte
	var err error
	if dir != "" {
		if data, err = os.ReadFile(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("read fixture %s: %w", name, err)
		}
	}
	if data == nil {
		if data, err = fixtureFS.ReadFile(name); err != nil {
			return fmt.Errorf("embedded fixture %s: %w", name, err)
		}
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse fixture %s: %w", name, err)
	}
	return nil
}

// StoreItems returns items filtered by category; an empty category means all.
func (c *Catalog) StoreItems(cat model.StoreCategory) []model.StoreItem {
	if cat == "" {
		return append([]model.StoreItem(nil), c.items...)
	}
	var out []model.StoreItem
	for _, it := range c.items {
		if it.Category == cat {
			out = append(out, it)
		}
	}
	return out
}

// Item looks up a store item by ID.
func (c *Catalog) Item(id string) (model.StoreItem, bool) {
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return model.StoreItem{}, false
}

// Achievements returns all achievement entries.
func (c *Catalog) Achievements() []model.Achievement {
	return append([]model.Achievement(nil), c.achievements...)
}

// AchievementSummary returns the unlocked count and the points total of
// unlocked achievements, as shown in the screen header.
func (c *Catalog) AchievementSummary() (unlocked, points int) {
	for _, a := range c.achievements {
		if a.Unlocked {
			unlocked++
			points += a.Points
		}
	}
	return unlocked, points
}

// Ranking returns the leaderboard for a period. Placeholder rows marked
// current_user get the signed-in user's display name filled in.
func (c *Catalog) Ranking(period model.RankPeriod, userName string) []model.RankEntry {
	var src []model.RankEntry
	switch period {
	case model.RankWeekly:
		src = c.weekly
	case model.RankFriends:
		src = c.friends
	default:
		src = c.global
	}
	out := append([]model.RankEntry(nil), src...)
	for i := range out {
		if out[i].CurrentUser && out[i].Name == "" {
			out[i].Name = userName
		}
	}
	return out
}

// Notifications returns the panel entries.
func (c *Catalog) Notifications() []model.Notification {
	return append([]model.Notification(nil), c.notifications...)
}

// UnreadCount returns how many notifications are unread.
func (c *Catalog) UnreadCount() int {
	n := 0
	for _, note := range c.notifications {
		if !note.Read {
			n++
		}
	}
	return n
}

// Streak returns the menu's streak card data.
func (c *Catalog) Streak() model.Streak { return c.streak }

// SeedStats returns the starting eco stats for the ledger.
func (c *Catalog) SeedStats() model.EcoStats { return c.seedStats }
