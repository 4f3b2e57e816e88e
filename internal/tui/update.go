package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage"
	"github.com/julianstephens/weeklit/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.state == stateDeferForm {
			return m.updateDeferForm(msg)
		}
		return m.updateWeek(msg)
	}

	if m.state == stateDeferForm && m.form != nil {
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}
		return m, cmd
	}

	return m, nil
}

func (m Model) updateWeek(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Left):
		m.dayIdx--
		m.clampCursor()

	case key.Matches(msg, m.keys.Right):
		m.dayIdx++
		m.clampCursor()

	case key.Matches(msg, m.keys.Up):
		m.habitIdx--
		m.clampCursor()

	case key.Matches(msg, m.keys.Down):
		m.habitIdx++
		m.clampCursor()

	case key.Matches(msg, m.keys.PrevWeek):
		if day, err := utils.AddDays(m.week.WeekStart, -7); err == nil {
			m.loadWeek(day)
		}

	case key.Matches(msg, m.keys.NextWeek):
		if day, err := utils.AddDays(m.week.WeekStart, 7); err == nil {
			m.loadWeek(day)
		}

	case key.Matches(msg, m.keys.Today):
		m.loadWeek(m.today)
		m.dayIdx = m.indexOfDay(m.today)
		m.clampCursor()

	case key.Matches(msg, m.keys.Refresh):
		m.loadWeek(m.week.WeekStart)

	case key.Matches(msg, m.keys.Toggle):
		m.toggleCompletion()

	case key.Matches(msg, m.keys.Defer):
		return m.startDeferForm()
	}

	return m, nil
}

func (m *Model) toggleCompletion() {
	sh := m.selectedHabit()
	if sh == nil {
		return
	}
	day := m.week.Days[m.dayIdx].Day

	existing, err := m.store.GetCompletion(sh.HabitID, day)
	switch {
	case err == nil:
		if err := m.store.DeleteCompletion(existing.ID); err != nil {
			m.errMsg = err.Error()
			return
		}
		m.statusMsg = fmt.Sprintf("Unmarked %s on %s", sh.Name, day)

	case errors.Is(err, storage.ErrNotFound):
		now := time.Now()
		completion := models.Completion{
			ID:        uuid.NewString(),
			HabitID:   sh.HabitID,
			Day:       day,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := m.store.AddCompletion(completion); err != nil {
			m.errMsg = err.Error()
			return
		}
		if err := m.scheduler.Ledger().ResolveCompletion(sh.HabitID, day); err != nil {
			m.errMsg = err.Error()
			return
		}
		m.statusMsg = fmt.Sprintf("✓ %s done on %s", sh.Name, day)

	default:
		m.errMsg = err.Error()
		return
	}

	if _, err := m.stats.CalculateAndStoreDayStats(day); err != nil {
		m.errMsg = err.Error()
	}
	m.loadWeek(m.week.WeekStart)
}

func (m Model) startDeferForm() (tea.Model, tea.Cmd) {
	sh := m.selectedHabit()
	if sh == nil {
		return m, nil
	}
	if sh.Locked {
		m.errMsg = fmt.Sprintf("%s is locked and cannot be deferred", sh.Name)
		return m, nil
	}
	if sh.Completed {
		m.errMsg = fmt.Sprintf("%s is already done", sh.Name)
		return m, nil
	}

	m.deferForm = &DeferFormModel{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Defer %q to its next open day", sh.Name)).
				Description("Why is this being moved?").
				Value(&m.deferForm.Reason),
		),
	)
	m.state = stateDeferForm
	return m, m.form.Init()
}

func (m Model) updateDeferForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.state = stateWeek
		m.form = nil
		m.deferForm = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.submitDefer()
		m.state = stateWeek
		m.form = nil
		return m, nil
	}

	return m, cmd
}

func (m *Model) submitDefer() {
	sh := m.selectedHabit()
	if sh == nil || m.deferForm == nil {
		return
	}
	day := m.week.Days[m.dayIdx].Day

	reason := m.deferForm.Reason
	if reason == "" {
		reason = "Deferred manually"
	}
	m.deferForm = nil

	result, err := m.scheduler.Ledger().SmartDefer(sh.HabitID, day, reason)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	if !result.Success {
		m.errMsg = result.Message
		return
	}

	m.statusMsg = fmt.Sprintf("Moved %s to %s (%d remaining)", sh.Name, result.NewDueDay, result.RemainingDeferrals)
	m.loadWeek(m.week.WeekStart)
}
