package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/utils"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.state == stateDeferForm && m.form != nil {
		return docStyle.Render(m.form.View())
	}

	header := dayHeaderStyle.Render(fmt.Sprintf("Week of %s - %s", m.week.WeekStart, m.week.WeekEnd))

	var cols []string
	for i, day := range m.week.Days {
		cols = append(cols, m.viewDay(day, i))
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	ui := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		board,
		m.viewStatusBar(),
		m.help.View(m),
	)

	return docStyle.Render(ui)
}

func (m Model) viewDay(day models.DaySchedule, idx int) string {
	style := inactiveDayStyle
	if idx == m.dayIdx {
		style = activeDayStyle
	}

	headerStyle := dayHeaderStyle
	if day.Day == m.today {
		headerStyle = todayHeaderStyle
	}

	var b strings.Builder
	if t, err := utils.ParseDay(day.Day); err == nil {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%s %s", t.Weekday().String()[:3], day.Day[5:])))
	} else {
		b.WriteString(headerStyle.Render(day.Day))
	}
	b.WriteString("\n")

	if len(day.Habits) == 0 {
		b.WriteString(optionalStyle.Render("-"))
	}

	for j, sh := range day.Habits {
		b.WriteString("\n")
		b.WriteString(m.viewScheduledHabit(sh, idx == m.dayIdx && j == m.habitIdx))
	}

	return style.Render(b.String())
}

func (m Model) viewScheduledHabit(sh models.ScheduledHabit, selected bool) string {
	mark := "[ ]"
	if sh.Completed {
		mark = "[x]"
	}

	name := sh.Name
	if sh.Deadline != "" {
		name += " @" + sh.Deadline
	}

	line := mark + " " + name

	switch {
	case selected:
		return selectedStyle.Render("> " + line)
	case sh.Completed:
		return "  " + doneStyle.Render(line)
	case sh.Deferral != nil:
		return "  " + deferredStyle.Render(line)
	case sh.Optional:
		return "  " + optionalStyle.Render(line)
	default:
		return "  " + line
	}
}

func (m Model) viewStatusBar() string {
	if m.errMsg != "" {
		return errorStyle.Render(m.errMsg)
	}

	parts := []string{}
	if m.status.Day != "" {
		if m.status.Completed {
			parts = append(parts, fmt.Sprintf("✓ today complete, streak day %d", m.status.StreakDay))
		} else {
			parts = append(parts, fmt.Sprintf("today %d/%d required", m.status.CompletedRequired, m.status.RequiredTasks))
		}
		if m.status.InFirstWeek && m.status.Rule == models.RuleAnchorOnly {
			parts = append(parts, "first-week leniency")
		}
	}
	if m.statusMsg != "" {
		parts = append(parts, m.statusMsg)
	}

	if len(parts) == 0 {
		return ""
	}
	return statusBarStyle.Render(strings.Join(parts, "  |  "))
}
