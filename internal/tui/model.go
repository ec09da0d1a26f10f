package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/service"
	"github.com/MKhiriev/go-fin-keeper/internal/utils"
	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	refreshInterval = time.Second
	defaultCurrency = "USD"
	maxErrorLines   = 5
	errorLineWidth  = 72
)

type statusModel struct {
	ctx    context.Context
	sync   SyncStatus
	ledger RecordReader
	info   models.AppBuildInfo

	copyFn func(string) error
	now    func() time.Time

	spinner  spinner.Model
	snapshot models.SyncSnapshot
	record   models.AggregateRecord
	loaded   bool

	syncing  bool
	showInfo bool
	status   string
	errMsg   string
}

func newStatusModel(ctx context.Context, sync SyncStatus, ledger RecordReader, info models.AppBuildInfo) statusModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot

	return statusModel{
		ctx:     ctx,
		sync:    sync,
		ledger:  ledger,
		info:    info,
		copyFn:  clipboard.WriteAll,
		now:     time.Now,
		spinner: s,
	}
}

func (m statusModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.cmdRefresh())
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshedMsg:
		m.snapshot = msg.snapshot
		m.loaded = true
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Cannot read local record: %v", msg.err)
		} else {
			m.record = msg.record
		}
		return m, cmdTick()
	case tickMsg:
		return m, m.cmdRefresh()
	case syncDoneMsg:
		m.syncing = false
		if msg.err != nil {
			m.status = ""
			m.errMsg = humanizeSyncError(msg.err)
			return m, m.cmdRefresh()
		}
		m.errMsg = ""
		m.status = describeDrain(msg.result)
		return m, m.cmdRefresh()
	case copiedMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Copy failed: %v", msg.err)
			return m, nil
		}
		m.status = "Last error copied to clipboard"
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m statusModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.quit) {
		return m, tea.Quit
	}

	if m.showInfo {
		if key.Matches(msg, keys.esc) || key.Matches(msg, keys.info) {
			m.showInfo = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.sync):
		if m.syncing {
			return m, nil
		}
		m.syncing = true
		m.status = "Syncing..."
		m.errMsg = ""
		return m, m.cmdSync()
	case key.Matches(msg, keys.copy):
		last, ok := m.lastError()
		if !ok {
			m.status = "No errors to copy"
			return m, nil
		}
		return m, m.cmdCopy(formatSyncError(last))
	case key.Matches(msg, keys.dismiss):
		m.sync.DismissErrors()
		m.status = "Errors cleared"
		return m, m.cmdRefresh()
	case key.Matches(msg, keys.info):
		m.showInfo = true
	}

	return m, nil
}

func (m statusModel) View() string {
	if m.showInfo {
		return renderBuildInfoWindow(m.info)
	}

	var b strings.Builder

	if m.snapshot.Connected {
		fmt.Fprintf(&b, "Connection:    %s\n", onlineStyle.Render("online"))
	} else {
		fmt.Fprintf(&b, "Connection:    %s\n", offlineStyle.Render("offline"))
	}
	if m.syncing || m.snapshot.Syncing {
		fmt.Fprintf(&b, "Sync:          %s syncing\n", m.spinner.View())
	} else {
		b.WriteString("Sync:          idle\n")
	}
	fmt.Fprintf(&b, "Pending:       %d\n", m.snapshot.PendingCount)
	fmt.Fprintf(&b, "Last attempt:  %s\n", formatTime(m.snapshot.LastAttemptAt))
	fmt.Fprintf(&b, "Last success:  %s\n", formatTime(m.snapshot.LastSuccessAt))
	if m.snapshot.RetryInterval > 0 {
		fmt.Fprintf(&b, "Retry every:   %s\n", m.snapshot.RetryInterval)
	}

	b.WriteString("\n")
	b.WriteString(m.renderTotals())

	if n := len(m.snapshot.RecentErrors); n > 0 {
		fmt.Fprintf(&b, "\nRecent errors (%d):\n", n)
		errs := m.snapshot.RecentErrors
		if len(errs) > maxErrorLines {
			errs = errs[len(errs)-maxErrorLines:]
		}
		for _, e := range errs {
			b.WriteString("  ")
			b.WriteString(errorStyle.Render(fitText(formatSyncError(e), errorLineWidth)))
			b.WriteString("\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	return renderPage("FIN KEEPER: SYNC STATUS", b.String(), "s: sync  y: copy last error  c: clear errors  i: build info")
}

func (m statusModel) renderTotals() string {
	if !m.loaded {
		return "Loading local record...\n"
	}

	totals := service.Aggregate([]models.AggregateRecord{m.record}, m.now())
	cur := recordCurrency(m.record)

	var b strings.Builder
	fmt.Fprintf(&b, "This month:    expenses %s, income %s\n",
		utils.FormatAmount(totals.MonthlyExpenses, cur), utils.FormatAmount(totals.MonthlyIncome, cur))
	fmt.Fprintf(&b, "All time:      expenses %s, income %s\n",
		utils.FormatAmount(totals.TotalExpenses, cur), utils.FormatAmount(totals.TotalIncome, cur))
	fmt.Fprintf(&b, "Entries:       %d expenses, %d incomes, %d budgets, %d categories\n",
		len(m.record.Expenses), len(m.record.Incomes), len(m.record.Budgets), len(m.record.Categories))
	return b.String()
}

func (m statusModel) lastError() (models.SyncError, bool) {
	errs := m.snapshot.RecentErrors
	if len(errs) == 0 {
		return models.SyncError{}, false
	}
	return errs[len(errs)-1], true
}

func (m statusModel) cmdRefresh() tea.Cmd {
	return func() tea.Msg {
		snapshot := m.sync.Snapshot()
		record, err := m.ledger.Record(m.ctx)
		return refreshedMsg{snapshot: snapshot, record: record, err: err}
	}
}

func (m statusModel) cmdSync() tea.Cmd {
	return func() tea.Msg {
		result, err := m.sync.ManualSync(m.ctx)
		return syncDoneMsg{result: result, err: err}
	}
}

func (m statusModel) cmdCopy(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: m.copyFn(text)}
	}
}

func cmdTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func describeDrain(r service.DrainResult) string {
	if !r.Started {
		return "Nothing to sync"
	}
	s := fmt.Sprintf("Sync finished: %d applied, %d retried, %d dropped", r.Applied, r.Retried, r.Dropped)
	if r.Remaining > 0 {
		s += fmt.Sprintf(", %d still pending", r.Remaining)
	}
	return s
}

func formatSyncError(e models.SyncError) string {
	return fmt.Sprintf("[%s/%s] %s after %d attempt(s): %s", e.EntityType, e.Action, e.OperationID, e.Attempts, e.Reason)
}

// recordCurrency picks the first currency set on a transaction.
func recordCurrency(r models.AggregateRecord) string {
	for _, e := range r.Expenses {
		if e.Currency != "" {
			return e.Currency
		}
	}
	for _, i := range r.Incomes {
		if i.Currency != "" {
			return i.Currency
		}
	}
	return defaultCurrency
}
