package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sevigo/lltranslate/bench"
	"github.com/sevigo/lltranslate/budget"
	"github.com/sevigo/lltranslate/chains"
	"github.com/sevigo/lltranslate/schema"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(26)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	titleCase = cases.Title(language.English)
)

type section struct {
	title string
	rows  []string
}

func (s *section) add(label string, value any) {
	s.rows = append(s.rows, labelStyle.Render(label)+fmt.Sprint(value))
}

func (s *section) line(text string) {
	s.rows = append(s.rows, text)
}

func (s *section) String() string {
	body := lipgloss.JoinVertical(lipgloss.Left, s.rows...)
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(s.title), body))
}

func bandLabel(b budget.Band) string {
	label := titleCase.String(b.String())
	switch b {
	case budget.BandWithin:
		return okStyle.Render(label)
	case budget.BandRaiseContext:
		return warnStyle.Render(label)
	default:
		return errStyle.Render(label)
	}
}

func renderReport(title string, r budget.Report) string {
	s := &section{title: title}
	s.add("Characters", r.Chars)
	s.add("Counter", r.Estimate.Counter)
	s.add("System prompt tokens", r.Estimate.SystemTokens)
	s.add("Input text tokens", r.Estimate.InputTokens)
	s.add("Total input tokens", r.Estimate.TotalInputTokens)
	s.add("Estimated output tokens", r.Estimate.OutputTokens)
	s.add("Total estimated tokens", r.Estimate.TotalTokens)
	s.add("Context limit", r.Limits.ContextLimit)
	s.add("Context ceiling", r.Limits.MaxCeiling)
	s.add("Status", bandLabel(r.Decision.Band))
	switch r.Decision.Band {
	case budget.BandRaiseContext:
		s.add("Suggested num_ctx", r.Decision.SuggestedContext)
	case budget.BandShrinkChunk:
		s.add("Suggested chunk size", r.Decision.SuggestedChunkChars)
	}
	return s.String()
}

func renderPlan(p budget.Plan) string {
	s := &section{title: "Split plan"}
	s.add("Parts", p.Parts)
	s.add("Characters per part", p.CharsPerPart)
	return s.String()
}

func renderChunkTable(reports []budget.Report) string {
	s := &section{title: fmt.Sprintf("Chunks (%d)", len(reports))}
	for i, r := range reports {
		s.line(fmt.Sprintf("%4d  %6d chars  %6d tokens  %s", i+1, r.Chars, r.Estimate.TotalTokens, bandLabel(r.Decision.Band)))
	}
	return s.String()
}

func renderAdvice(a budget.Advice) string {
	s := &section{title: fmt.Sprintf("Settings for %d character chunks", a.ChunkSize)}
	s.add("Total estimated tokens", a.Estimate.TotalTokens)
	s.add("Estimated output tokens", a.Estimate.OutputTokens)
	s.add("Current num_ctx", a.Current.NumCtx)
	s.add("Current max_tokens", a.Current.MaxTokens)
	for _, w := range a.Warnings {
		s.line(warnStyle.Render("! " + w))
	}
	for _, o := range a.Optimizations {
		s.line(okStyle.Render("+ " + o))
	}

	rec := a.Recommended
	if rec.ChunkSize > 0 {
		s.add("Recommended chunk_size", rec.ChunkSize)
	}
	if rec.MaxTokens > 0 {
		s.add("Recommended max_tokens", rec.MaxTokens)
	}
	if rec.NumCtx > 0 {
		s.add("Recommended num_ctx", rec.NumCtx)
	}
	s.add("Recommended temperature", rec.Temperature)
	s.add("Recommended top_p", rec.TopP)
	return s.String()
}

func renderDocument(res *chains.DocumentResult, output string) string {
	s := &section{title: "Translation"}
	s.add("Source", res.Source)
	s.add("Output", output)
	s.add("Chunks", len(res.Chunks))
	fallbacks := fmt.Sprint(res.Fallbacks())
	if res.Fallbacks() > 0 {
		fallbacks = warnStyle.Render(fallbacks + " (kept untranslated)")
	}
	s.add("Fallbacks", fallbacks)
	s.add("Average quality", fmt.Sprintf("%.2f", res.AverageQuality()))
	if res.StructurePreserved != nil {
		preserved := okStyle.Render("yes")
		if !*res.StructurePreserved {
			preserved = warnStyle.Render("no")
		}
		s.add("Markdown structure kept", preserved)
	}
	s.add("Duration", res.Duration.Round(time.Millisecond))
	return s.String()
}

func renderBatch(r *chains.BatchReport) string {
	s := &section{title: "Batch " + r.RunID}
	s.add("Input directory", r.InputDir)
	s.add("Output directory", r.OutputDir)
	for _, f := range r.Files {
		status := okStyle.Render("ok")
		switch {
		case f.Err != nil:
			status = errStyle.Render("failed: " + f.Err.Error())
		case f.Fallbacks > 0:
			status = warnStyle.Render(fmt.Sprintf("%d/%d chunks untranslated", f.Fallbacks, f.Chunks))
		}
		s.line(fmt.Sprintf("%s  %s", f.Input, status))
	}
	s.add("Files", len(r.Files))
	s.add("Failed", r.Failed())
	s.add("Duration", r.Duration.Round(time.Millisecond))
	return s.String()
}

func renderBench(summaries []bench.Summary) string {
	s := &section{title: "Benchmark"}
	best := -1
	for i, sum := range summaries {
		cfg := sum.Settings
		s.line(fmt.Sprintf("Profile %d  temperature=%s top_p=%s max_tokens=%d num_ctx=%d",
			sum.Profile+1, optional(cfg.Temperature), optional(cfg.TopP), cfg.MaxTokens, cfg.NumCtx))
		s.add("  Success rate", fmt.Sprintf("%.0f%%", sum.SuccessRate()*100))
		s.add("  Average time", fmt.Sprintf("%.2fs", sum.AverageTime.Seconds()))
		s.add("  Average quality", fmt.Sprintf("%.2f", sum.AverageQuality))
		s.add("  Average output tokens", fmt.Sprintf("%.0f", sum.AverageOutToken))
		if sum.Successes > 0 && (best < 0 || sum.AverageQuality > summaries[best].AverageQuality) {
			best = i
		}
	}
	if best >= 0 {
		s.line(okStyle.Render(fmt.Sprintf("Best quality: profile %d", summaries[best].Profile+1)))
	} else {
		s.line(errStyle.Render("No profile produced a translation"))
	}
	return s.String()
}

func renderModel(d *schema.ModelDetails) string {
	s := &section{title: "Model " + d.Name}
	for _, row := range [][2]string{
		{"Family", d.Family},
		{"Parameters", d.ParameterSize},
		{"Quantization", d.Quantization},
	} {
		if strings.TrimSpace(row[1]) != "" {
			s.add(row[0], row[1])
		}
	}
	if d.ContextLength > 0 {
		s.add("Context length", d.ContextLength)
	} else {
		s.add("Context length", "unknown")
	}
	return s.String()
}

// optional formats a decoding value that may be left to the server.
func optional(v *float64) string {
	if v == nil {
		return "default"
	}
	return fmt.Sprintf("%.2f", *v)
}
