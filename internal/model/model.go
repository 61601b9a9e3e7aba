// Package model defines domain entities shared by the router, services and catalog.
package model

import (
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// ScreenID identifies the single active full-screen view.
type ScreenID string

const (
	ScreenLogin        ScreenID = "login"
	ScreenSignUp       ScreenID = "signup"
	ScreenMenu         ScreenID = "menu"
	ScreenScanner      ScreenID = "scanner"
	ScreenRanking      ScreenID = "ranking"
	ScreenAchievements ScreenID = "achievements"
	ScreenStore        ScreenID = "store"
	ScreenSettings     ScreenID = "settings"
	ScreenProfile      ScreenID = "profile"
)

// OverlayID identifies the transient layer above the active screen.
// Overlays are modal and mutually exclusive.
type OverlayID string

const (
	OverlayNone            OverlayID = ""
	OverlayNotifications   OverlayID = "notifications"
	OverlayScanResult      OverlayID = "scan_result"
	OverlayPurchaseConfirm OverlayID = "purchase_confirm"
)

// Session is the authenticated user identity held for the app lifetime.
type Session struct {
	UserID    uuid.UUID
	UserName  string // display name derived from the email local part
	UserEmail string
	Token     string // signed session token (seam for a real auth backend)
	ExpiresAt time.Time
}

// Account is a provisioned user in the simulated backend store.
type Account struct {
	ID        uuid.UUID
	Email     string
	PwdHash   []byte // Argon2id(password, Salt)
	Salt      []byte
	CreatedAt time.Time
}

// ScanState describes the scan session lifecycle.
type ScanState string

const (
	ScanIdle      ScanState = "idle"
	ScanScanning  ScanState = "scanning"
	ScanDetected  ScanState = "detected"
	ScanCompleted ScanState = "completed"
)

// ScanOutcome is the immutable result of one completed scan.
type ScanOutcome struct {
	ID            uuid.UUID
	MaterialType  string
	Category      string
	WeightKg      float64
	PointsAwarded int
	CO2SavedKg    float64
	RawCode       string
	ScannedAt     time.Time
}

// Balance holds the two parallel currencies. Points drive rank and level,
// coins drive store purchases; scanning credits points only.
type Balance struct {
	Points int
	Coins  int
}

// Redemption records a single store debit.
type Redemption struct {
	ItemID     string
	ItemName   string
	CoinsSpent int
	RedeemedAt time.Time
}

// EcoStats are the menu's quick stats, advanced on every completed scan.
type EcoStats struct {
	Recycled   int     `yaml:"recycled"`
	TotalKg    float64 `yaml:"total_kg"`
	CO2SavedKg float64 `yaml:"co2_saved_kg"`
}

// StoreCategory classifies purchasable items.
type StoreCategory string

const (
	CategoryBooster StoreCategory = "booster"
	CategoryUpgrade StoreCategory = "upgrade"
	CategorySpecial StoreCategory = "special"
)

// StoreItem is a static catalog entry.
type StoreItem struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	PriceCoins  int           `yaml:"price_coins"`
	Category    StoreCategory `yaml:"category"`
	Benefit     string        `yaml:"benefit"`
	Duration    string        `yaml:"duration,omitempty"`
	Popular     bool          `yaml:"popular,omitempty"`
}

// Rarity grades achievements.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Achievement is a static catalog entry. Unlocked is authoritative fixture
// data and is not derived from Progress (the catalog ships at least one
// over-100% entry).
type Achievement struct {
	ID          string  `yaml:"id"`
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Progress    float64 `yaml:"progress"`
	MaxProgress float64 `yaml:"max_progress"`
	Unlocked    bool    `yaml:"unlocked"`
	Points      int     `yaml:"points"`
	Rarity      Rarity  `yaml:"rarity"`
}

// Completion returns the progress ratio clamped to [0, 1] for display.
func (a Achievement) Completion() float64 {
	if a.MaxProgress <= 0 {
		return 0
	}
	r := a.Progress / a.MaxProgress
	if r > 1 {
		return 1
	}
	return r
}

// RankPeriod selects a leaderboard tab.
type RankPeriod string

const (
	RankGlobal  RankPeriod = "global"
	RankWeekly  RankPeriod = "weekly"
	RankFriends RankPeriod = "friends"
)

// RankEntry is one leaderboard row. Change is only populated for the
// weekly period, Phone only for friends.
type RankEntry struct {
	Position    int    `yaml:"position"`
	Name        string `yaml:"name"`
	Points      int    `yaml:"points"`
	StreakDays  int    `yaml:"streak,omitempty"`
	Level       int    `yaml:"level,omitempty"`
	Change      string `yaml:"change,omitempty"`
	Phone       string `yaml:"phone,omitempty"`
	CurrentUser bool   `yaml:"current_user,omitempty"`
}

// Avatar returns the initials shown in the leaderboard bubble.
func (r RankEntry) Avatar() string {
	parts := strings.Fields(r.Name)
	if len(parts) == 0 {
		return "?"
	}
	if len(parts) == 1 {
		return strings.ToUpper(parts[0][:1])
	}
	return strings.ToUpper(parts[0][:1] + parts[len(parts)-1][:1])
}

// NotificationKind classifies notification entries.
type NotificationKind string

const (
	NoteAchievement NotificationKind = "achievement"
	NoteReward      NotificationKind = "reward"
	NoteStreak      NotificationKind = "streak"
	NoteChallenge   NotificationKind = "challenge"
)

// Notification is a static catalog entry for the notifications panel.
type Notification struct {
	ID      string           `yaml:"id"`
	Kind    NotificationKind `yaml:"kind"`
	Title   string           `yaml:"title"`
	Message string           `yaml:"message"`
	Time    string           `yaml:"time"`
	Read    bool             `yaml:"read"`
}

// Streak is the menu's consecutive-days card.
type Streak struct {
	Days      int    `yaml:"days"`
	Protected int    `yaml:"protected"`
	Week      []bool `yaml:"week"` // Sunday-first completion bitmap
	TodayIdx  int    `yaml:"today_idx"`
}

// BonusPoints is the streak bonus shown next to the timeline.
func (s Streak) BonusPoints() int { return s.Days * 10 }

// Settings are purely local display toggles.
type Settings struct {
	DarkMode      bool
	Notifications bool
	Sound         bool
	Language      string
}

// DefaultSettings mirrors the panel's initial state.
func DefaultSettings() Settings {
	return Settings{Notifications: true, Sound: true, Language: "Español"}
}

// Profile is the editable profile form state.
type Profile struct {
	Name     string
	Email    string
	Phone    string
	Location string
	Bio      string
}
