package display

import (
	"fmt"
	"strings"

	"fireplace_cli/internal/models"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(labelWidth)
	onStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	offStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

const labelWidth = 16

// StatusCard renders st as a bordered status block. A nil status renders the
// "unable to retrieve" card.
func StatusCard(st *models.ApplianceStatus, reachable bool, u Unit) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Fireplace Status"))
	b.WriteString("\n")
	if st == nil {
		b.WriteString(warnStyle.Render("Unable to retrieve status"))
		b.WriteString("\n")
		b.WriteString(row("Reachable", yesNo(reachable)))
		return cardStyle.Render(b.String())
	}
	rows := []string{
		row("Mode", st.Mode.String()),
		row("Current Temp", FormatTemperature(st.CurrentTemperature, u)),
		row("Target Temp", FormatTemperature(st.TargetTemperature, u)),
		row("Guard Flame", onOff(st.GuardFlameOn)),
		row("Igniting", yesNo(st.Igniting)),
		row("Shutting Down", yesNo(st.ShuttingDown)),
		row("Aux On", yesNo(st.AuxOn)),
		row("Reachable", yesNo(reachable)),
	}
	b.WriteString(strings.Join(rows, "\n"))
	return cardStyle.Render(b.String())
}

// Summary is the one-line form used in logs and MCP replies.
func Summary(st *models.ApplianceStatus, u Unit) string {
	if st == nil {
		return "status unavailable"
	}
	return fmt.Sprintf("mode=%s current=%s target=%s guard_flame=%s",
		st.Mode, FormatTemperature(st.CurrentTemperature, u), FormatTemperature(st.TargetTemperature, u), onOffText(st.GuardFlameOn))
}

func row(label, value string) string {
	return labelStyle.Render(label+":") + value
}

func yesNo(v bool) string {
	if v {
		return onStyle.Render("Yes")
	}
	return offStyle.Render("No")
}

func onOff(v bool) string {
	if v {
		return onStyle.Render(onOffText(v))
	}
	return offStyle.Render(onOffText(v))
}

func onOffText(v bool) string {
	if v {
		return "On"
	}
	return "Off"
}
