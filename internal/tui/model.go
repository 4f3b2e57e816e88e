package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/scheduler"
	"github.com/julianstephens/weeklit/internal/stats"
	"github.com/julianstephens/weeklit/internal/storage"
	"github.com/julianstephens/weeklit/internal/utils"
)

type sessionState int

const (
	stateWeek sessionState = iota
	stateDeferForm
)

type DeferFormModel struct {
	Reason string
}

type Model struct {
	store     storage.Provider
	scheduler *scheduler.Scheduler
	stats     *stats.Engine

	state sessionState
	keys  KeyMap
	help  help.Model

	week      models.WeekSchedule
	status    models.DayStatus
	today     string
	dayIdx    int
	habitIdx  int
	form      *huh.Form
	deferForm *DeferFormModel

	statusMsg string
	errMsg    string
	quitting  bool
	width     int
	height    int
}

func NewModel(store storage.Provider, sched *scheduler.Scheduler, engine *stats.Engine) Model {
	m := Model{
		store:     store,
		scheduler: sched,
		stats:     engine,
		state:     stateWeek,
		keys:      DefaultKeyMap(),
		help:      help.New(),
	}

	settings, err := store.GetSettings()
	if err == nil {
		if today, err := utils.GetTodayFromSettings(settings); err == nil {
			m.today = today
		}
	}
	if m.today == "" {
		m.today = utils.FormatDay(time.Now())
	}

	m.loadWeek(m.today)
	m.dayIdx = m.indexOfDay(m.today)
	return m
}

// loadWeek regenerates the schedule for the week containing day and refreshes
// the status line.
func (m *Model) loadWeek(day string) {
	week, err := m.scheduler.GenerateWeekSchedule(day)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.week = week
	m.errMsg = ""

	if status, err := m.stats.CalculateDayStatus(m.today); err == nil {
		m.status = status
	}

	m.clampCursor()
}

func (m *Model) indexOfDay(day string) int {
	for i, d := range m.week.Days {
		if d.Day == day {
			return i
		}
	}
	return 0
}

func (m *Model) clampCursor() {
	if m.dayIdx < 0 {
		m.dayIdx = 0
	}
	if m.dayIdx >= len(m.week.Days) {
		m.dayIdx = len(m.week.Days) - 1
	}
	if m.dayIdx >= 0 && m.dayIdx < len(m.week.Days) {
		n := len(m.week.Days[m.dayIdx].Habits)
		if m.habitIdx >= n {
			m.habitIdx = n - 1
		}
	}
	if m.habitIdx < 0 {
		m.habitIdx = 0
	}
}

// selectedHabit returns the scheduled entry under the cursor, or nil.
func (m *Model) selectedHabit() *models.ScheduledHabit {
	if m.dayIdx < 0 || m.dayIdx >= len(m.week.Days) {
		return nil
	}
	day := &m.week.Days[m.dayIdx]
	if m.habitIdx < 0 || m.habitIdx >= len(day.Habits) {
		return nil
	}
	return &day.Habits[m.habitIdx]
}

func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Left, m.keys.Right, m.keys.Up, m.keys.Down,
		m.keys.Toggle, m.keys.Defer, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Left, m.keys.Right, m.keys.Up, m.keys.Down},
		{m.keys.PrevWeek, m.keys.NextWeek, m.keys.Today, m.keys.Refresh},
		{m.keys.Toggle, m.keys.Defer, m.keys.Quit, m.keys.Help},
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}
