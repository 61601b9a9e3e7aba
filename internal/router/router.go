// Package router owns the navigation state machine: the single active
// screen, the modal overlay above it, the authenticated session and the
// glue between the scan session and the rewards ledger.
package router

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ecorecicla/greengo/internal/catalog"
	"github.com/ecorecicla/greengo/internal/errs"
	"github.com/ecorecicla/greengo/internal/model"
	"github.com/ecorecicla/greengo/internal/service"
)

// EventKind tags a state-change notification for the frontend.
type EventKind string

const (
	EventScreenChanged  EventKind = "screen_changed"
	EventOverlayChanged EventKind = "overlay_changed"
	EventAuthFailed     EventKind = "auth_failed"
	EventScanDetected   EventKind = "scan_detected"
	EventScanCompleted  EventKind = "scan_completed"
	EventBalanceChanged EventKind = "balance_changed"
)

// Event is pushed to the frontend after every externally visible change.
type Event struct {
	Kind    EventKind
	Screen  model.ScreenID
	Overlay model.OverlayID
	Balance model.Balance
	Err     error
}

// leaves are the screens reachable from the menu hub and nowhere else.
var leaves = map[model.ScreenID]bool{
	model.ScreenScanner:      true,
	model.ScreenRanking:      true,
	model.ScreenAchievements: true,
	model.ScreenStore:        true,
	model.ScreenSettings:     true,
	model.ScreenProfile:      true,
}

// Router is safe for concurrent use. All state mutations happen under a
// single mutex; events and scan callbacks are delivered outside it.
type Router struct {
	mu      sync.Mutex
	auth    service.AuthService
	ledger  *service.Ledger
	scan    *service.ScanSession
	catalog *catalog.Catalog
	log     *zap.Logger

	screen      model.ScreenID
	overlay     model.OverlayID
	session     *model.Session
	authPending bool
	pendingItem *model.StoreItem
	settings    model.Settings
	profile     model.Profile

	events chan Event
	ctx    context.Context
	cancel context.CancelFunc
}

// New wires the router to its services. The scan session's callbacks are
// claimed here; nothing else may set them afterwards.
func New(auth service.AuthService, ledger *service.Ledger, scan *service.ScanSession, cat *catalog.Catalog, log *zap.Logger) *Router {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Router{
		auth:     auth,
		ledger:   ledger,
		scan:     scan,
		catalog:  cat,
		log:      log,
		screen:   model.ScreenLogin,
		overlay:  model.OverlayNone,
		settings: model.DefaultSettings(),
		events:   make(chan Event, 32),
		ctx:      ctx,
		cancel:   cancel,
	}
	scan.OnDetected(r.scanDetected)
	scan.OnCompleted(r.scanCompleted)
	return r
}

// Events returns the channel the frontend drains. Sends never block; an
// event is dropped if the frontend lags behind the buffer.
func (r *Router) Events() <-chan Event { return r.events }

// Close aborts any in-flight auth call and the running scan.
func (r *Router) Close() {
	r.cancel()
	r.scan.Cancel()
}

func (r *Router) emit(ev Event) {
	select {
	case r.events <- ev:
	default:
		r.log.Warn("event dropped", zap.String("kind", string(ev.Kind)))
	}
}

// Screen returns the single active full-screen view.
func (r *Router) Screen() model.ScreenID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.screen
}

// Overlay returns the active modal overlay, OverlayNone when clear.
func (r *Router) Overlay() model.OverlayID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlay
}

// Session returns the authenticated session, nil before login.
func (r *Router) Session() *model.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return nil
	}
	cpy := *r.session
	return &cpy
}

// AuthPending reports whether a login or signup call is in flight.
func (r *Router) AuthPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.authPending
}

// ScanState exposes the scan session lifecycle state for rendering.
func (r *Router) ScanState() model.ScanState { return r.scan.State() }

// ScanOutcome exposes the completed outcome, nil before completion.
func (r *Router) ScanOutcome() *model.ScanOutcome { return r.scan.Outcome() }

// Login submits credentials from the login screen. The simulated latency
// runs in the background; a second submit while pending returns
// errs.ErrAuthPending and changes nothing.
func (r *Router) Login(email, password string) error {
	r.mu.Lock()
	if r.screen != model.ScreenLogin {
		r.mu.Unlock()
		return errs.ErrBadTransition
	}
	if r.authPending {
		r.mu.Unlock()
		return errs.ErrAuthPending
	}
	r.authPending = true
	r.mu.Unlock()

	go r.finishAuth(func(ctx context.Context) (*model.Session, error) {
		return r.auth.Login(ctx, email, password)
	})
	return nil
}

// SignUp validates the form synchronously, then provisions the account in
// the background. Validation failure leaves the signup screen untouched.
func (r *Router) SignUp(email, password, confirm string) error {
	if err := service.ValidateSignUp(password, confirm); err != nil {
		return err
	}
	r.mu.Lock()
	if r.screen != model.ScreenSignUp {
		r.mu.Unlock()
		return errs.ErrBadTransition
	}
	if r.authPending {
		r.mu.Unlock()
		return errs.ErrAuthPending
	}
	r.authPending = true
	r.mu.Unlock()

	go r.finishAuth(func(ctx context.Context) (*model.Session, error) {
		return r.auth.SignUp(ctx, email, password, confirm)
	})
	return nil
}

func (r *Router) finishAuth(call func(context.Context) (*model.Session, error)) {
	sess, err := call(r.ctx)

	r.mu.Lock()
	r.authPending = false
	if err != nil {
		r.mu.Unlock()
		r.log.Warn("auth failed", zap.Error(err))
		r.emit(Event{Kind: EventAuthFailed, Err: err})
		return
	}
	r.session = sess
	r.profile = model.Profile{Name: sess.UserName, Email: sess.UserEmail}
	r.screen = model.ScreenMenu
	screen := r.screen
	r.mu.Unlock()

	r.log.Info("session established", zap.String("user", sess.UserName))
	r.emit(Event{Kind: EventScreenChanged, Screen: screen})
}

// Navigate moves between screens. Unauthenticated traffic is limited to
// Login and SignUp; authenticated traffic is hub-and-spoke around the
// menu. Entering the scanner starts a scan, leaving it cancels one.
func (r *Router) Navigate(to model.ScreenID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.overlay != model.OverlayNone {
		return errs.ErrBadTransition
	}
	if !r.allowed(to) {
		return errs.ErrBadTransition
	}
	if to == r.screen {
		return nil
	}

	if to == model.ScreenScanner {
		if err := r.scan.Start(); err != nil {
			return err
		}
	}
	if r.screen == model.ScreenScanner {
		r.scan.Cancel()
	}

	r.screen = to
	r.emit(Event{Kind: EventScreenChanged, Screen: to})
	return nil
}

func (r *Router) allowed(to model.ScreenID) bool {
	if r.session == nil {
		switch {
		case r.screen == model.ScreenLogin && to == model.ScreenSignUp:
			return true
		case r.screen == model.ScreenSignUp && to == model.ScreenLogin:
			return true
		}
		return false
	}
	switch {
	case r.screen == model.ScreenMenu && leaves[to]:
		return true
	case leaves[r.screen] && to == model.ScreenMenu:
		return true
	case to == r.screen:
		return true
	}
	return false
}

// Logout clears the session and returns to the login screen. Any running
// scan and open overlay are discarded.
func (r *Router) Logout() {
	r.mu.Lock()
	if r.session == nil {
		r.mu.Unlock()
		return
	}
	r.scan.Cancel()
	r.session = nil
	r.pendingItem = nil
	r.overlay = model.OverlayNone
	r.profile = model.Profile{}
	r.screen = model.ScreenLogin
	r.mu.Unlock()

	r.log.Info("logged out")
	r.emit(Event{Kind: EventScreenChanged, Screen: model.ScreenLogin})
}

// OpenOverlay raises a modal overlay. Only the notifications panel can be
// opened directly; the scan result appears on its own and the purchase
// dialog goes through RequestPurchase.
func (r *Router) OpenOverlay(id model.OverlayID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id != model.OverlayNotifications {
		return errs.ErrBadTransition
	}
	if r.session == nil || r.overlay != model.OverlayNone {
		return errs.ErrBadTransition
	}
	r.overlay = id
	r.emit(Event{Kind: EventOverlayChanged, Overlay: id})
	return nil
}

// DismissOverlay closes the active overlay; the screen beneath is
// untouched except for the scan result, whose dismissal credits the
// outcome, resets the scan session and pops back to the menu.
func (r *Router) DismissOverlay() {
	r.mu.Lock()
	if r.overlay == model.OverlayNone {
		r.mu.Unlock()
		return
	}
	dismissed := r.overlay
	r.overlay = model.OverlayNone
	r.pendingItem = nil

	var balance model.Balance
	var credited bool
	if dismissed == model.OverlayScanResult {
		if out := r.scan.Outcome(); out != nil {
			balance = r.ledger.ApplyScanOutcome(*out)
			credited = true
		}
		r.scan.Reset()
		r.screen = model.ScreenMenu
	}
	screen := r.screen
	r.mu.Unlock()

	r.emit(Event{Kind: EventOverlayChanged, Overlay: model.OverlayNone})
	if credited {
		r.emit(Event{Kind: EventBalanceChanged, Balance: balance})
		r.emit(Event{Kind: EventScreenChanged, Screen: screen})
	}
}

// RequestPurchase opens the confirmation dialog for a store item. Items
// the balance cannot cover are rejected up front, matching the store's
// disabled buy button.
func (r *Router) RequestPurchase(itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.screen != model.ScreenStore || r.overlay != model.OverlayNone {
		return errs.ErrBadTransition
	}
	item, ok := r.catalog.Item(itemID)
	if !ok {
		return errs.ErrNotFound
	}
	if !r.ledger.CanAfford(item) {
		return errs.ErrInsufficientFunds
	}
	r.pendingItem = &item
	r.overlay = model.OverlayPurchaseConfirm
	r.emit(Event{Kind: EventOverlayChanged, Overlay: r.overlay})
	return nil
}

// PendingItem returns the item awaiting purchase confirmation.
func (r *Router) PendingItem() *model.StoreItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pendingItem == nil {
		return nil
	}
	cpy := *r.pendingItem
	return &cpy
}

// ConfirmPurchase debits the pending item and closes the dialog.
func (r *Router) ConfirmPurchase() (model.Balance, error) {
	r.mu.Lock()
	if r.overlay != model.OverlayPurchaseConfirm || r.pendingItem == nil {
		r.mu.Unlock()
		return model.Balance{}, errs.ErrBadTransition
	}
	item := *r.pendingItem
	r.pendingItem = nil
	r.overlay = model.OverlayNone
	r.mu.Unlock()

	balance, err := r.ledger.Purchase(item)
	r.emit(Event{Kind: EventOverlayChanged, Overlay: model.OverlayNone})
	if err != nil {
		return balance, err
	}
	r.emit(Event{Kind: EventBalanceChanged, Balance: balance})
	return balance, nil
}

// Settings returns the local display toggles.
func (r *Router) Settings() model.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

// ToggleDarkMode flips the dark mode toggle and returns the new value.
func (r *Router) ToggleDarkMode() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings.DarkMode = !r.settings.DarkMode
	return r.settings.DarkMode
}

// ToggleNotifications flips the notifications toggle.
func (r *Router) ToggleNotifications() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings.Notifications = !r.settings.Notifications
	return r.settings.Notifications
}

// ToggleSound flips the sound toggle.
func (r *Router) ToggleSound() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings.Sound = !r.settings.Sound
	return r.settings.Sound
}

// Profile returns the saved profile form state.
func (r *Router) Profile() model.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profile
}

// SaveProfile replaces the stored profile. The edit buffer lives in the
// frontend; cancelling an edit simply never calls this.
func (r *Router) SaveProfile(p model.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profile = p
}

func (r *Router) scanDetected(payload string) {
	r.log.Debug("code detected", zap.String("payload", payload))
	r.emit(Event{Kind: EventScanDetected})
}

// scanCompleted raises the scan result overlay. The scan session only
// completes while the scanner screen is active; leaving it cancels the
// run first, so there is no stale-overlay path here.
func (r *Router) scanCompleted(out model.ScanOutcome) {
	r.mu.Lock()
	r.overlay = model.OverlayScanResult
	r.mu.Unlock()

	r.log.Info("scan outcome ready", zap.Int("points", out.PointsAwarded))
	r.emit(Event{Kind: EventOverlayChanged, Overlay: model.OverlayScanResult})
	r.emit(Event{Kind: EventScanCompleted})
}
