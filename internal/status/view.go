package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors and styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Render renders the status data to a string
func Render(data *Data) string {
	var b strings.Builder

	b.WriteString(renderHeader(data))
	b.WriteString("\n\n")

	b.WriteString(renderConfigHierarchy(data))
	b.WriteString("\n\n")

	b.WriteString(renderSplitting(data))
	b.WriteString("\n\n")

	b.WriteString(renderMatchers(data))

	if data.Namespace != nil {
		b.WriteString("\n\n")
		b.WriteString(renderNamespace(data))
	}

	if data.Modules != nil {
		b.WriteString("\n\n")
		b.WriteString(renderModules(data))
	}

	return b.String()
}

func renderHeader(data *Data) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("📂 Current directory: ") + valueStyle.Render(data.CurrentDir) + "\n")
	b.WriteString(titleStyle.Render("📦 Version: ") + valueStyle.Render(data.Version))
	return b.String()
}

func renderConfigHierarchy(data *Data) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("📝 Configuration hierarchy:") + "\n")

	hasGlobal := data.GlobalConfig != nil && data.GlobalConfig.Exists
	if len(data.LocalConfigs) == 0 && !hasGlobal {
		b.WriteString("   " + subtleStyle.Render("No configuration files found, using defaults"))
		return b.String()
	}

	idx := 1
	if hasGlobal {
		status := successStyle.Render("✓")
		note := ""
		if !data.GlobalConfig.Loaded {
			status = errorStyle.Render("✗")
			note = subtleStyle.Render(" (ignored)")
		}
		b.WriteString(fmt.Sprintf("   %d. %s %s%s\n",
			idx,
			subtleStyle.Render(data.GlobalConfig.Path+" (global)"),
			status,
			note))
		idx++
	}

	for _, cfg := range data.LocalConfigs {
		b.WriteString(fmt.Sprintf("   %d. %s %s\n",
			idx,
			valueStyle.Render(cfg.Path),
			successStyle.Render("✓")))
		idx++
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func renderSplitting(data *Data) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("✂️  Splitting:") + "\n")

	profile := "standard"
	if data.Greedy {
		profile = "greedy"
	}
	b.WriteString("   " + keyStyle.Render("Profile: ") + valueStyle.Render(profile) + "\n")
	if data.Delimiters != "" {
		b.WriteString("   " + keyStyle.Render("Delimiters: ") + valueStyle.Render(fmt.Sprintf("%q", data.Delimiters)) + "\n")
	}
	b.WriteString("   " + keyStyle.Render("Output: ") + valueStyle.Render(data.Output))
	return b.String()
}

func renderMatchers(data *Data) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("🔄 Matchers:") + "\n")

	if len(data.Matchers) == 0 {
		b.WriteString("   " + warningStyle.Render("No matchers registered"))
		return b.String()
	}

	for i, m := range data.Matchers {
		line := fmt.Sprintf("   %d. %s", i+1, valueStyle.Render(m.Name))
		if m.Exclusive {
			line += " " + warningStyle.Render("exclusive")
		}
		if m.Script {
			line += " " + subtleStyle.Render("(script)")
		}
		b.WriteString(line + "\n")
	}

	if len(data.Disabled) > 0 {
		b.WriteString("   " + keyStyle.Render("Disabled: ") + subtleStyle.Render(strings.Join(data.Disabled, ", ")) + "\n")
	}
	if len(data.Blocked) > 0 {
		b.WriteString("   " + errorStyle.Render("✗ Untrusted scripts: ") + strings.Join(data.Blocked, ", ") + "\n")
		b.WriteString("     " + subtleStyle.Render("Run 'compleat allow' to enable them") + "\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func renderNamespace(data *Data) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("🧩 Namespace:") + "\n")

	path := data.Namespace.Path
	if path == "" {
		path = "(none)"
	}
	b.WriteString("   " + keyStyle.Render("Snapshot: ") + subtleStyle.Render(path) + "\n")
	b.WriteString("   " + keyStyle.Render("Locals: ") + valueStyle.Render(fmt.Sprintf("%d", data.Namespace.Locals)) + "\n")
	b.WriteString("   " + keyStyle.Render("Builtins: ") + valueStyle.Render(fmt.Sprintf("%d", data.Namespace.Builtins)))
	return b.String()
}

func renderModules(data *Data) string {
	m := data.Modules
	var b strings.Builder
	b.WriteString(sectionStyle.Render("💾 Module index:") + "\n")

	if len(m.Paths) == 0 {
		b.WriteString("   " + keyStyle.Render("Search paths: ") + subtleStyle.Render("none") + "\n")
	} else {
		b.WriteString("   " + keyStyle.Render("Search paths:") + "\n")
		for _, p := range m.Paths {
			b.WriteString("      " + subtleStyle.Render(p) + "\n")
		}
	}

	if m.CachePath == "" {
		b.WriteString("   " + keyStyle.Render("Cache: ") + subtleStyle.Render("in memory"))
		return b.String()
	}

	b.WriteString("   " + keyStyle.Render("Cache path: ") + subtleStyle.Render(m.CachePath) + "\n")
	b.WriteString("   " + keyStyle.Render("Size: ") + valueStyle.Render(formatBytes(m.CacheSize)) + "\n")
	b.WriteString("   " + keyStyle.Render("Total entries: ") + valueStyle.Render(fmt.Sprintf("%d", m.CacheEntries)) + "\n")

	switch {
	case !m.Cached:
		b.WriteString("   " + keyStyle.Render("Status: ") + subtleStyle.Render("not scanned yet"))
	case m.CacheFresh:
		b.WriteString("   " + keyStyle.Render("Status: ") + successStyle.Render("✓ Valid") + "\n")
		b.WriteString("   " + keyStyle.Render("Modules: ") + valueStyle.Render(fmt.Sprintf("%d", m.CacheModules)) + "\n")
		b.WriteString("   " + keyStyle.Render("Updated: ") + valueStyle.Render(m.CacheUpdated.Format("2006-01-02 15:04:05")))
	default:
		b.WriteString("   " + keyStyle.Render("Status: ") + errorStyle.Render("✗ Stale") + "\n")
		b.WriteString("   " + subtleStyle.Render("Will rescan on next import completion"))
	}

	return b.String()
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
