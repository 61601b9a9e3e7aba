package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ecorecicla/greengo/internal/catalog"
	"github.com/ecorecicla/greengo/internal/model"
	"github.com/ecorecicla/greengo/internal/router"
	"github.com/ecorecicla/greengo/internal/service"
)

const appVersion = "EcoRecicla v1.0.0"

var errQuit = errors.New("quit requested")

// app maps terminal line commands onto router operations and renders the
// active screen as text after every change.
type app struct {
	mu      sync.Mutex
	router  *router.Router
	ledger  *service.Ledger
	catalog *catalog.Catalog
	out     io.Writer
	log     *zap.Logger

	rankPeriod model.RankPeriod
	storeCat   model.StoreCategory
	editing    bool
	draft      model.Profile
}

func newApp(r *router.Router, ledger *service.Ledger, cat *catalog.Catalog, out io.Writer, log *zap.Logger) *app {
	return &app{
		router:     r,
		ledger:     ledger,
		catalog:    cat,
		out:        out,
		log:        log,
		rankPeriod: model.RankGlobal,
	}
}

// readInput drains stdin line by line until EOF, quit or cancellation.
func (a *app) readInput(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	done := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			done <- err
			return
		}
		done <- io.EOF
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-done:
			return err
		case line := <-lines:
			if err := a.dispatch(line); err != nil {
				return err
			}
			a.render()
		}
	}
}

// pumpEvents re-renders whenever the router reports a state change from
// outside the command loop, e.g. a scan timer firing.
func (a *app) pumpEvents(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-a.router.Events():
			a.log.Debug("router event", zap.String("kind", string(ev.Kind)))
			if ev.Kind == router.EventAuthFailed {
				a.printf("No se pudo iniciar sesión: %v\n", ev.Err)
			}
			a.render()
		}
	}
}

var screenNames = map[string]model.ScreenID{
	"menu":         model.ScreenMenu,
	"scanner":      model.ScreenScanner,
	"ranking":      model.ScreenRanking,
	"achievements": model.ScreenAchievements,
	"logros":       model.ScreenAchievements,
	"store":        model.ScreenStore,
	"tienda":       model.ScreenStore,
	"settings":     model.ScreenSettings,
	"ajustes":      model.ScreenSettings,
	"profile":      model.ScreenProfile,
	"perfil":       model.ScreenProfile,
	"login":        model.ScreenLogin,
	"signup":       model.ScreenSignUp,
}

var rankNames = map[string]model.RankPeriod{
	"global":  model.RankGlobal,
	"general": model.RankGlobal,
	"weekly":  model.RankWeekly,
	"semanal": model.RankWeekly,
	"friends": model.RankFriends,
	"amigos":  model.RankFriends,
}

var storeCats = map[string]model.StoreCategory{
	"todos":      "",
	"boosters":   model.CategoryBooster,
	"mejoras":    model.CategoryUpgrade,
	"especiales": model.CategorySpecial,
}

func (a *app) dispatch(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "quit", "exit":
		return errQuit
	case "help":
		a.printHelp()
	case "login":
		if len(args) != 2 {
			a.printf("uso: login <email> <contraseña>\n")
			return nil
		}
		err = a.router.Login(args[0], args[1])
	case "signup":
		if len(args) != 3 {
			a.printf("uso: signup <email> <contraseña> <confirmar>\n")
			return nil
		}
		err = a.router.SignUp(args[0], args[1], args[2])
	case "go":
		if len(args) != 1 {
			a.printf("uso: go <pantalla>\n")
			return nil
		}
		id, ok := screenNames[strings.ToLower(args[0])]
		if !ok {
			a.printf("pantalla desconocida: %s\n", args[0])
			return nil
		}
		err = a.router.Navigate(id)
	case "back":
		if a.router.Session() == nil {
			err = a.router.Navigate(model.ScreenLogin)
		} else {
			err = a.router.Navigate(model.ScreenMenu)
		}
	case "logout":
		a.router.Logout()
	case "notifications", "notificaciones":
		err = a.router.OpenOverlay(model.OverlayNotifications)
	case "ok", "dismiss", "cerrar":
		a.router.DismissOverlay()
	case "buy", "comprar":
		if len(args) != 1 {
			a.printf("uso: buy <id>\n")
			return nil
		}
		err = a.router.RequestPurchase(args[0])
	case "confirm", "confirmar":
		_, err = a.router.ConfirmPurchase()
	case "rank":
		if len(args) != 1 {
			a.printf("uso: rank <general|semanal|amigos>\n")
			return nil
		}
		p, ok := rankNames[strings.ToLower(args[0])]
		if !ok {
			a.printf("periodo desconocido: %s\n", args[0])
			return nil
		}
		a.mu.Lock()
		a.rankPeriod = p
		a.mu.Unlock()
	case "store":
		if len(args) != 1 {
			a.printf("uso: store <todos|boosters|mejoras|especiales>\n")
			return nil
		}
		c, ok := storeCats[strings.ToLower(args[0])]
		if !ok {
			a.printf("categoría desconocida: %s\n", args[0])
			return nil
		}
		a.mu.Lock()
		a.storeCat = c
		a.mu.Unlock()
	case "toggle":
		if len(args) != 1 {
			a.printf("uso: toggle <dark|notifications|sound>\n")
			return nil
		}
		switch strings.ToLower(args[0]) {
		case "dark":
			a.router.ToggleDarkMode()
		case "notifications":
			a.router.ToggleNotifications()
		case "sound":
			a.router.ToggleSound()
		default:
			a.printf("ajuste desconocido: %s\n", args[0])
		}
	case "edit":
		a.mu.Lock()
		a.editing = true
		a.draft = a.router.Profile()
		a.mu.Unlock()
	case "set":
		a.setProfileField(args)
	case "save":
		a.mu.Lock()
		if a.editing {
			a.router.SaveProfile(a.draft)
			a.editing = false
		}
		a.mu.Unlock()
	case "cancel":
		a.mu.Lock()
		a.editing = false
		a.draft = model.Profile{}
		a.mu.Unlock()
	default:
		a.printf("comando desconocido: %s (prueba help)\n", cmd)
	}

	if err != nil {
		a.printf("✗ %v\n", err)
	}
	return nil
}

func (a *app) setProfileField(args []string) {
	if len(args) < 2 {
		a.printf("uso: set <name|email|phone|location|bio> <valor>\n")
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.editing {
		a.printf("primero: edit\n")
		return
	}
	value := strings.Join(args[1:], " ")
	switch strings.ToLower(args[0]) {
	case "name":
		a.draft.Name = value
	case "email":
		a.draft.Email = value
	case "phone":
		a.draft.Phone = value
	case "location":
		a.draft.Location = value
	case "bio":
		a.draft.Bio = value
	default:
		a.printf("campo desconocido: %s\n", args[0])
	}
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) printHelp() {
	a.printf(`comandos:
  login <email> <contraseña>            iniciar sesión
  signup <email> <contraseña> <conf>    crear cuenta
  go <pantalla> | back | logout         navegar
  notifications | ok                    panel de notificaciones
  store <cat> | buy <id> | confirm      tienda
  rank <general|semanal|amigos>         ranking
  toggle <dark|notifications|sound>     ajustes
  edit | set <campo> <valor> | save | cancel   perfil
  quit                                  salir
`)
}

// render prints the active screen, then the overlay above it if any.
func (a *app) render() {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.router.Screen() {
	case model.ScreenLogin:
		a.renderLogin()
	case model.ScreenSignUp:
		a.renderSignUp()
	case model.ScreenMenu:
		a.renderMenu()
	case model.ScreenScanner:
		a.renderScanner()
	case model.ScreenRanking:
		a.renderRanking()
	case model.ScreenAchievements:
		a.renderAchievements()
	case model.ScreenStore:
		a.renderStore()
	case model.ScreenSettings:
		a.renderSettings()
	case model.ScreenProfile:
		a.renderProfile()
	}

	switch a.router.Overlay() {
	case model.OverlayNotifications:
		a.renderNotifications()
	case model.OverlayScanResult:
		a.renderScanResult()
	case model.OverlayPurchaseConfirm:
		a.renderPurchaseConfirm()
	}
}

func (a *app) header(title string) {
	a.printf("\n=== %s ===\n", title)
}

func (a *app) renderLogin() {
	a.header("Iniciar Sesión")
	if a.router.AuthPending() {
		a.printf("Iniciando sesión...\n")
		return
	}
	a.printf("login <email> <contraseña>  |  go signup\n")
}

func (a *app) renderSignUp() {
	a.header("Crear Cuenta")
	if a.router.AuthPending() {
		a.printf("Creando cuenta...\n")
		return
	}
	a.printf("signup <email> <contraseña> <confirmar>  |  go login\n")
}

func (a *app) renderMenu() {
	sess := a.router.Session()
	if sess == nil {
		return
	}
	a.header("Menú Principal")
	a.printf("¡Hola, %s!\n", sess.UserName)

	bal := a.ledger.Balance()
	a.printf("Puntos: %d  |  Monedas: %d\n", bal.Points, bal.Coins)

	streak := a.catalog.Streak()
	marks := make([]string, len(streak.Week))
	for i, done := range streak.Week {
		switch {
		case done:
			marks[i] = "●"
		case i == streak.TodayIdx:
			marks[i] = "◎"
		default:
			marks[i] = "○"
		}
	}
	a.printf("Racha: %d días 🔥  (+%d pts, %d protección)  %s\n",
		streak.Days, streak.BonusPoints(), streak.Protected, strings.Join(marks, " "))

	stats := a.ledger.Stats()
	a.printf("Reciclados: %d  |  %.1f kg  |  %.1f kg CO₂ ahorrado\n",
		stats.Recycled, stats.TotalKg, stats.CO2SavedKg)

	if n := a.catalog.UnreadCount(); n > 0 {
		a.printf("Notificaciones sin leer: %d\n", n)
	}
	a.printf("go scanner|ranking|logros|tienda|ajustes|perfil  |  notifications\n")
}

func (a *app) renderScanner() {
	a.header("Escáner")
	switch a.router.ScanState() {
	case model.ScanScanning:
		a.printf("Escaneando código QR...\n")
	case model.ScanDetected:
		a.printf("¡Código detectado! Procesando...\n")
	case model.ScanCompleted:
		a.printf("Escaneo completado.\n")
	default:
		a.printf("Cámara lista.\n")
	}
	a.printf("back para cancelar\n")
}

func (a *app) renderScanResult() {
	out := a.router.ScanOutcome()
	if out == nil {
		return
	}
	a.printf("\n--- ¡Reciclaje Exitoso! ---\n")
	a.printf("%s (%s)\n", out.MaterialType, out.Category)
	a.printf("Peso: %.1f kg  |  CO₂ ahorrado: %.1f kg\n", out.WeightKg, out.CO2SavedKg)
	a.printf("+%d puntos\n", out.PointsAwarded)
	a.printf("ok para continuar\n")
}

func (a *app) renderRanking() {
	sess := a.router.Session()
	name := ""
	if sess != nil {
		name = sess.UserName
	}
	a.header("Ranking")
	rows := a.catalog.Ranking(a.rankPeriod, name)

	if a.rankPeriod == model.RankGlobal && len(rows) >= 3 {
		a.printf("Podio: 🥇 %s  🥈 %s  🥉 %s\n", rows[0].Name, rows[1].Name, rows[2].Name)
	}
	for _, r := range rows {
		marker := " "
		if r.CurrentUser {
			marker = "➤"
		}
		a.printf("%s #%-2d %-3s %-16s %5d pts", marker, r.Position, r.Avatar(), r.Name, r.Points)
		if r.Change != "" {
			a.printf("  (%s)", r.Change)
		}
		if r.Phone != "" {
			a.printf("  %s", r.Phone)
		}
		a.printf("\n")
	}
	a.printf("rank general|semanal|amigos  |  back\n")
}

var rarityLabels = map[model.Rarity]string{
	model.RarityCommon:    "Común",
	model.RarityRare:      "Raro",
	model.RarityEpic:      "Épico",
	model.RarityLegendary: "Legendario",
}

func (a *app) renderAchievements() {
	a.header("Logros")
	unlocked, points := a.catalog.AchievementSummary()
	all := a.catalog.Achievements()
	a.printf("%d/%d desbloqueados  |  %d puntos de logros\n", unlocked, len(all), points)

	for _, ach := range all {
		mark := "○"
		if ach.Unlocked {
			mark = "●"
		}
		a.printf("%s %-22s [%s] %3.0f%%  %s\n",
			mark, ach.Title, rarityLabels[ach.Rarity], ach.Completion()*100, ach.Description)
	}
}

func (a *app) renderStore() {
	a.header("Tienda")
	bal := a.ledger.Balance()
	a.printf("Monedas: %d  |  store todos|boosters|mejoras|especiales\n", bal.Coins)

	for _, it := range a.catalog.StoreItems(a.storeCat) {
		tag := ""
		if it.Popular {
			tag = " ★ Popular"
		}
		buy := fmt.Sprintf("buy %s", it.ID)
		if !a.ledger.CanAfford(it) {
			buy = "Sin fondos"
		}
		a.printf("[%s] %-24s %4d 🪙  %s%s\n", it.ID, it.Name, it.PriceCoins, buy, tag)
		a.printf("      %s", it.Benefit)
		if it.Duration != "" {
			a.printf(" · %s", it.Duration)
		}
		a.printf("\n")
	}
}

func (a *app) renderPurchaseConfirm() {
	item := a.router.PendingItem()
	if item == nil {
		return
	}
	bal := a.ledger.Balance()
	a.printf("\n--- Confirmar Compra ---\n")
	a.printf("%s\n", item.Name)
	a.printf("Saldo actual:   %d 🪙\n", bal.Coins)
	a.printf("Costo:          %d 🪙\n", item.PriceCoins)
	a.printf("Saldo restante: %d 🪙\n", bal.Coins-item.PriceCoins)
	a.printf("confirm | ok para cancelar\n")
}

func (a *app) renderSettings() {
	a.header("Ajustes")
	s := a.router.Settings()
	a.printf("[%s] Modo oscuro\n", check(s.DarkMode))
	a.printf("[%s] Notificaciones\n", check(s.Notifications))
	a.printf("[%s] Sonido\n", check(s.Sound))
	a.printf("Idioma: %s\n", s.Language)
	a.printf("toggle dark|notifications|sound  |  logout\n")
	a.printf("%s\n", appVersion)
}

func (a *app) renderProfile() {
	a.header("Perfil")
	p := a.router.Profile()
	if a.editing {
		p = a.draft
		a.printf("(editando)\n")
	}
	a.printf("Nombre:    %s\n", p.Name)
	a.printf("Email:     %s\n", p.Email)
	a.printf("Teléfono:  %s\n", p.Phone)
	a.printf("Ubicación: %s\n", p.Location)
	a.printf("Bio:       %s\n", p.Bio)
	if a.editing {
		a.printf("set <campo> <valor>  |  save  |  cancel\n")
	} else {
		a.printf("edit para modificar\n")
	}
}

func (a *app) renderNotifications() {
	a.printf("\n--- Notificaciones (%d sin leer) ---\n", a.catalog.UnreadCount())
	for _, n := range a.catalog.Notifications() {
		mark := " "
		if !n.Read {
			mark = "•"
		}
		a.printf("%s [%s] %s\n    %s (%s)\n", mark, n.Kind, n.Title, n.Message, n.Time)
	}
	a.printf("ok para cerrar\n")
}

func check(on bool) string {
	if on {
		return "x"
	}
	return " "
}
