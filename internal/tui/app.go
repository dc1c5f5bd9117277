package tui

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sdrissi/giftforge/internal/config"
	"github.com/sdrissi/giftforge/internal/database/repository"
	"github.com/sdrissi/giftforge/internal/pack"
	"github.com/sdrissi/giftforge/internal/service"
)

// App is the gift pack composer session: loading screen, three-pane
// composer (catalog / basket / summary) and the commit flow.
type App struct {
	ctx       context.Context
	cfg       config.Config
	catalog   *service.CatalogService
	store     *pack.Store
	ingestor  *pack.Ingestor
	committer *service.CommitService
	cartRepo  *repository.CartRepo

	state        appState
	focus        paneFocus
	quitting     bool
	products     []pack.Product
	catCursor    int
	basketCursor int
	categoryIdx  int
	priceBandIdx int
	searchTerm   string
	searching    bool

	modal       modalState
	inputBuffer string

	cartItems []repository.CartItem

	commitProgress service.Progress
	progressCh     chan service.Progress

	effects *EffectBus
	toast   *pack.Notification
	status  string

	currency string
	radius   float64
}

type appState string

const (
	viewLoading appState = "loading"
	viewCompose appState = "compose"
	viewCart    appState = "cart"
)

type paneFocus string

const (
	focusCatalog paneFocus = "catalog"
	focusBasket  paneFocus = "basket"
)

type modalState string

const (
	modalNone    modalState = ""
	modalNote    modalState = "note"
	modalRibbon  modalState = "ribbon"
	modalDrop    modalState = "drop"
	modalConfirm modalState = "confirm"
)

// priceBands are browse filters over the catalog snapshot, in millimes.
var priceBands = []struct {
	label    string
	min, max int64
}{
	{"tous prix", 0, 0},
	{"< 100", 0, 100000},
	{"100 - 300", 100000, 300000},
	{"300 - 600", 300000, 600000},
	{"> 600", 600000, 0},
}

func New(ctx context.Context, cfg config.Config, catalog *service.CatalogService, store *pack.Store, ingestor *pack.Ingestor, committer *service.CommitService, cartRepo *repository.CartRepo, effects *EffectBus) *App {
	radius := cfg.Pack.ArrangeRadius
	if radius <= 0 {
		radius = pack.DefaultRadius
	}
	return &App{
		ctx:       ctx,
		cfg:       cfg,
		catalog:   catalog,
		store:     store,
		ingestor:  ingestor,
		committer: committer,
		cartRepo:  cartRepo,
		state:     viewLoading,
		focus:     focusCatalog,
		effects:   effects,
		currency:  cfg.UI.CurrencySymbol,
		radius:    radius,
	}
}

func (a *App) Init() tea.Cmd {
	delay := time.Duration(a.cfg.Pack.LoadingDelayMS) * time.Millisecond
	return tea.Batch(
		tea.Tick(delay, func(time.Time) tea.Msg { return readyMsg{} }),
		a.loadCatalog(),
		a.waitForEffect(),
	)
}

// commands

func (a *App) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		products, err := a.catalog.Filter(a.ctx, a.currentFilters())
		if err != nil {
			return errMsg{err}
		}
		return catalogMsg(products)
	}
}

func (a *App) refreshCatalog() tea.Cmd {
	return func() tea.Msg {
		if err := a.catalog.Refresh(a.ctx); err != nil {
			return errMsg{err}
		}
		return statusMsg("catalog refreshed")
	}
}

func (a *App) loadCart() tea.Cmd {
	return func() tea.Msg {
		items, err := a.cartRepo.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return cartMsg(items)
	}
}

func (a *App) startCommit() tea.Cmd {
	ch := make(chan service.Progress, 8)
	a.progressCh = ch
	run := func() tea.Msg {
		err := a.committer.Run(a.ctx, func(p service.Progress) { ch <- p })
		close(ch)
		return commitDoneMsg{err: err}
	}
	return tea.Batch(run, a.waitForProgress(ch))
}

func (a *App) waitForProgress(ch chan service.Progress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return progressClosedMsg{}
		}
		return commitProgressMsg(p)
	}
}

func (a *App) waitForEffect() tea.Cmd {
	if a.effects == nil {
		return nil
	}
	ch := a.effects.notes
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg(n)
	}
}

func (a *App) currentFilters() service.CatalogFilters {
	band := priceBands[a.priceBandIdx]
	return service.CatalogFilters{
		Search:           a.searchTerm,
		Category:         service.Categories()[a.categoryIdx],
		MinPriceMillimes: band.min,
		MaxPriceMillimes: band.max,
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		if a.searching {
			return a.handleSearchKey(m)
		}
		switch a.state {
		case viewLoading:
			if s := m.String(); s == "q" || s == "ctrl+c" {
				a.quitting = true
				return a, tea.Quit
			}
			return a, nil
		case viewCart:
			return a.handleCartKey(m)
		default:
			return a.handleComposeKey(m)
		}

	case readyMsg:
		// ignore a stale timer if the session is already ending
		if a.quitting {
			return a, nil
		}
		a.state = viewCompose

	case catalogMsg:
		a.products = []pack.Product(m)
		if a.catCursor >= len(a.products) {
			a.catCursor = 0
		}

	case cartMsg:
		a.cartItems = []repository.CartItem(m)

	case notificationMsg:
		n := pack.Notification(m)
		a.toast = &n
		return a, a.waitForEffect()

	case commitProgressMsg:
		a.commitProgress = service.Progress(m)
		return a, a.waitForProgress(a.progressCh)

	case progressClosedMsg:
		return a, nil

	case commitDoneMsg:
		if m.err != nil {
			a.status = "commit: " + m.err.Error()
			return a, nil
		}
		a.status = ""
		return a, a.loadCatalog()

	case statusMsg:
		a.status = string(m)

	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) committing() bool {
	return a.committer.State() == service.StateRunning
}

func (a *App) handleComposeKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		a.quitting = true
		return a, tea.Quit
	case "g":
		a.state = viewCart
		return a, a.loadCart()
	}
	// edits are disabled while the pipeline runs
	if a.committing() {
		return a, nil
	}
	switch m.String() {
	case "tab":
		if a.focus == focusCatalog {
			a.focus = focusBasket
		} else {
			a.focus = focusCatalog
		}
	case "/":
		a.searching = true
	case "c":
		a.categoryIdx = (a.categoryIdx + 1) % len(service.Categories())
		a.catCursor = 0
		return a, a.loadCatalog()
	case "b":
		a.priceBandIdx = (a.priceBandIdx + 1) % len(priceBands)
		a.catCursor = 0
		return a, a.loadCatalog()
	case "R":
		return a, tea.Sequence(a.refreshCatalog(), a.loadCatalog())
	case "up", "k":
		if a.focus == focusCatalog && a.catCursor > 0 {
			a.catCursor--
		}
		if a.focus == focusBasket && a.basketCursor > 0 {
			a.basketCursor--
		}
	case "down", "j":
		if a.focus == focusCatalog && a.catCursor < len(a.products)-1 {
			a.catCursor++
		}
		if a.focus == focusBasket && a.basketCursor < a.store.Len()-1 {
			a.basketCursor++
		}
	case "enter":
		if a.focus == focusCatalog && len(a.products) > 0 {
			if err := a.ingestor.Select(a.products[a.catCursor]); err != nil {
				a.status = "error: " + err.Error()
			}
		}
	case "x", "backspace", "delete":
		if a.focus == focusBasket {
			if err := a.store.RemoveItem(a.basketCursor); err != nil {
				a.status = "error: " + err.Error()
				return a, nil
			}
			if a.basketCursor >= a.store.Len() && a.basketCursor > 0 {
				a.basketCursor--
			}
		}
	case "+", "=":
		if a.focus == focusBasket && a.store.Len() > 0 {
			qty := a.store.Snapshot().Items[a.basketCursor].Quantity
			if err := a.store.SetQuantity(a.basketCursor, qty+1); err != nil {
				a.status = "error: " + err.Error()
			}
		}
	case "-":
		if a.focus == focusBasket && a.store.Len() > 0 {
			qty := a.store.Snapshot().Items[a.basketCursor].Quantity
			if err := a.store.SetQuantity(a.basketCursor, qty-1); err != nil {
				a.status = "error: " + err.Error()
			}
		}
	case "n":
		a.modal = modalNote
		a.inputBuffer = a.store.Snapshot().Note
	case "r":
		a.modal = modalRibbon
	case "d":
		a.modal = modalDrop
		a.inputBuffer = ""
	case "y":
		if a.store.Len() == 0 {
			a.status = "add items before committing"
			return a, nil
		}
		a.committer.Reset()
		a.modal = modalConfirm
	}
	return a, nil
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.searching = false
		a.searchTerm = ""
		return a, a.loadCatalog()
	case tea.KeyEnter:
		a.searching = false
		return a, nil
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.searchTerm) > 0 {
			a.searchTerm = a.searchTerm[:len(a.searchTerm)-1]
		}
		return a, a.loadCatalog()
	case tea.KeySpace:
		a.searchTerm += " "
		return a, a.loadCatalog()
	case tea.KeyRunes:
		a.searchTerm += string(m.Runes)
		a.catCursor = 0
		return a, a.loadCatalog()
	}
	return a, nil
}

func (a *App) handleCartKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		a.quitting = true
		return a, tea.Quit
	case "esc", "g":
		a.state = viewCompose
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalConfirm:
		switch m.String() {
		case "y", "Y", "enter":
			a.modal = modalNone
			a.commitProgress = service.Progress{}
			return a, a.startCommit()
		case "n", "N", "esc":
			a.modal = modalNone
		}
	case modalRibbon:
		palette := a.store.Palette()
		switch m.String() {
		case "esc":
			a.modal = modalNone
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			idx := int(m.String()[0] - '1')
			if idx < len(palette) {
				if err := a.store.SetRibbonColor(palette[idx]); err != nil {
					a.status = "error: " + err.Error()
				}
				a.modal = modalNone
			}
		}
	case modalNote, modalDrop:
		switch m.Type {
		case tea.KeyEsc:
			a.modal = modalNone
			a.inputBuffer = ""
		case tea.KeyEnter:
			text := a.inputBuffer
			mode := a.modal
			a.modal = modalNone
			a.inputBuffer = ""
			switch mode {
			case modalNote:
				a.store.SetNote(strings.TrimSpace(text))
				a.status = "note saved"
			case modalDrop:
				if err := a.ingestor.Drop([]byte(text)); err != nil {
					a.status = "drop ignored: " + err.Error()
				}
			}
		case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
			if len(a.inputBuffer) > 0 {
				a.inputBuffer = a.inputBuffer[:len(a.inputBuffer)-1]
			}
		case tea.KeySpace:
			a.inputBuffer += " "
		case tea.KeyRunes:
			a.inputBuffer += string(m.Runes)
		}
	}
	return a, nil
}

// messages

type readyMsg struct{}

type catalogMsg []pack.Product

type cartMsg []repository.CartItem

type notificationMsg pack.Notification

type commitProgressMsg service.Progress

type progressClosedMsg struct{}

type commitDoneMsg struct{ err error }

type statusMsg string

type errMsg struct{ error }

// EffectBus adapts the engine's side-effect channel to the TUI: toasts
// are queued for the update loop, the audio cue rings the terminal
// bell. PlayTick must stay fire-and-forget.
type EffectBus struct {
	notes chan pack.Notification
}

func NewEffectBus() *EffectBus {
	return &EffectBus{notes: make(chan pack.Notification, 16)}
}

func (e *EffectBus) Notify(n pack.Notification) {
	select {
	case e.notes <- n:
	default: // drop rather than block the engine
	}
}

func (e *EffectBus) PlayTick() {
	_, _ = os.Stdout.Write([]byte{'\a'})
}

// styles

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	paneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	focusStyle  = paneStyle.BorderForeground(lipgloss.Color("#700100"))
	cursorMark  = "▶"
	toastStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#700100")).Padding(0, 1)
	swatchStyle = lipgloss.NewStyle().Padding(0, 1)
)

func (a *App) View() string {
	if a.quitting {
		return ""
	}
	switch a.state {
	case viewLoading:
		return a.renderLoading()
	case viewCart:
		return a.renderCart()
	default:
		return a.renderCompose()
	}
}

func (a *App) renderLoading() string {
	return "\n  ◌ Creating your gift pack...\n\n  [q] Quit\n"
}

func (a *App) renderCompose() string {
	catalog := a.renderCatalogPane()
	basket := a.renderBasketPane()
	summary := a.renderSummaryPane()

	catStyle, basStyle := paneStyle, paneStyle
	if a.focus == focusCatalog {
		catStyle = focusStyle
	} else {
		basStyle = focusStyle
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		catStyle.Render(catalog),
		basStyle.Render(basket),
		paneStyle.Render(summary),
	)

	help := "[tab] Focus  [enter] Add  [x] Remove  [+/-] Qty  [/] Search  [c] Category  [b] Price  [n] Note  [r] Ribbon  [d] Drop payload  [y] Commit  [g] Cart  [R] Refresh  [q] Quit"
	if a.committing() {
		help = "committing pack... edits disabled"
	}
	out := body + "\n" + help
	if a.modal != modalNone {
		out += "\n\n" + a.renderModal()
	}
	if a.toast != nil {
		line := a.toast.Title
		if a.toast.Description != "" {
			line += ": " + a.toast.Description
		}
		if a.toast.ActionLabel != "" {
			line += "  [g] " + a.toast.ActionLabel
		}
		out += "\n" + toastStyle.Render(line)
	}
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderCatalogPane() string {
	out := titleStyle.Render("Catalog") + "\n"
	search := a.searchTerm
	if a.searching {
		search += "▌"
	}
	out += fmt.Sprintf("Search: %s\n", search)
	out += fmt.Sprintf("Category: %s   Price: %s\n\n", service.Categories()[a.categoryIdx], priceBands[a.priceBandIdx].label)
	if len(a.products) == 0 {
		out += "(no products match)\n"
		return out
	}
	for i, p := range a.products {
		marker := " "
		if i == a.catCursor && a.focus == focusCatalog {
			marker = cursorMark
		}
		out += fmt.Sprintf("%s %-32s %9.3f %s\n", marker, p.Name, float64(p.PriceMillimes)/1000, a.currency)
	}
	return out
}

// renderBasketPane draws the ring arrangement on a character grid: the
// single rendering adapter from ArrangementPoint to visual output.
func (a *App) renderBasketPane() string {
	snap := a.store.Snapshot()
	out := titleStyle.Render("Gift Basket") + "\n"
	out += renderRing(pack.Arrange(len(snap.Items), a.radius))
	if len(snap.Items) == 0 {
		out += "\nAjoutez des articles à votre panier cadeau\n"
		return out
	}
	out += "\n"
	for i, it := range snap.Items {
		marker := " "
		if i == a.basketCursor && a.focus == focusBasket {
			marker = cursorMark
		}
		out += fmt.Sprintf("%s %d. %-28s x%d\n", marker, i+1, it.Name, it.Quantity)
	}
	if a.committing() || a.commitProgress.Total > 0 {
		p := a.commitProgress
		out += fmt.Sprintf("\ncommit: %d/%d %s\n", p.Committed, p.Total, p.State)
	}
	return out
}

const (
	ringWidth  = 21
	ringHeight = 9
)

// renderRing projects the arrangement points onto a small rune grid.
// X spans the columns, Z the rows; the ring is rescaled to fill the pane.
func renderRing(points []pack.ArrangementPoint) string {
	grid := make([][]rune, ringHeight)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", ringWidth))
	}
	cx, cy := ringWidth/2, ringHeight/2
	grid[cy][cx] = '┼'
	var scale float64
	for _, pt := range points {
		if d := math.Max(math.Abs(pt.X), math.Abs(pt.Z)); d > scale {
			scale = d
		}
	}
	if scale == 0 {
		scale = 1
	}
	for _, pt := range points {
		col := cx + int(pt.X/scale*float64(cx-1))
		row := cy + int(pt.Z/scale*float64(cy-1))
		if row >= 0 && row < ringHeight && col >= 0 && col < ringWidth {
			grid[row][col] = rune('1' + pt.ItemIndex%9)
		}
	}
	var b strings.Builder
	for _, r := range grid {
		b.WriteString(string(r))
		b.WriteByte('\n')
	}
	return b.String()
}

func (a *App) renderSummaryPane() string {
	snap := a.store.Snapshot()
	out := titleStyle.Render("Pack Summary") + "\n"
	out += fmt.Sprintf("Items: %d\n", len(snap.Items))
	out += fmt.Sprintf("Total: %.3f %s\n", float64(snap.TotalPriceMillimes())/1000, a.currency)
	note := snap.Note
	if note == "" {
		note = "(none)"
	}
	out += fmt.Sprintf("Note: %s\n", note)
	out += "Ribbon: " + swatchStyle.Background(lipgloss.Color(snap.RibbonColor)).Render(snap.RibbonColor) + "\n"
	return out
}

func (a *App) renderCart() string {
	out := titleStyle.Render("Cart") + "\n"
	if len(a.cartItems) == 0 {
		out += "(cart is empty)\n"
	}
	var total int64
	for _, it := range a.cartItems {
		out += fmt.Sprintf("  %-32s x%d  %9.3f %s", it.Name, it.Quantity, float64(it.PriceMillimes)/1000, a.currency)
		if it.Personalization != "" {
			out += "  ✉ " + it.Personalization
		}
		out += "\n"
		total += it.PriceMillimes * int64(it.Quantity)
	}
	out += fmt.Sprintf("\nTotal: %.3f %s\n", float64(total)/1000, a.currency)
	out += "[esc] Back  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalNote:
		return titleStyle.Render("Personal note") + fmt.Sprintf("\n%s\n[enter] Save  [esc] Cancel", a.inputBuffer)
	case modalRibbon:
		out := titleStyle.Render("Ribbon color") + "\n"
		for i, c := range a.store.Palette() {
			out += fmt.Sprintf("[%d] %s  ", i+1, swatchStyle.Background(lipgloss.Color(c)).Render(c))
		}
		out += "\n[1-9] Select  [esc] Cancel"
		return out
	case modalDrop:
		return titleStyle.Render("Drop payload (paste product JSON)") + fmt.Sprintf("\n%s\n[enter] Drop  [esc] Cancel", a.inputBuffer)
	case modalConfirm:
		snap := a.store.Snapshot()
		return titleStyle.Render("Add pack to cart?") + fmt.Sprintf("\n%d items, %.3f %s\n[y] Commit  [n] Cancel", len(snap.Items), float64(snap.TotalPriceMillimes())/1000, a.currency)
	default:
		return ""
	}
}
