// Copyright 2025 Video Insight Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/videolearn/video-insight/internal/core/cor"
	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/storage"
)

// Report layout constants, in points and millimeters respectively.
const (
	reportTitleSize   = 18.0
	reportSectionSize = 15.0
	reportSubheadSize = 13.0
	reportBodySize    = 11.0
	reportLineHeight  = 6.0
)

// ReportRenderer lays the assembled script out as a PDF and uploads it as
// the `{job}_report.pdf` artifact. A Unicode font must be registered for
// transcripts in non-Latin scripts; when none is configured the renderer
// falls back to the built-in Helvetica and says so loudly, because that
// fallback cannot represent CJK text.
type ReportRenderer struct {
	cor.BaseCommand
	artifacts storage.ArtifactStore
	workDir   string
	fontPath  string
	fontName  string
}

// NewReportRenderer is the constructor for the ReportRenderer command.
func NewReportRenderer(name string, artifacts storage.ArtifactStore, workDir, fontPath, fontName string) *ReportRenderer {
	return &ReportRenderer{
		BaseCommand: *cor.NewBaseCommand(name),
		artifacts:   artifacts,
		workDir:     workDir,
		fontPath:    fontPath,
		fontName:    fontName,
	}
}

// IsExecutable additionally requires the assembled script text.
func (c *ReportRenderer) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) &&
		context.Get(GetScriptParameterName()) != nil
}

// Execute renders the PDF and stores it. A render failure degrades the job
// (the Markdown script already carries the full content) rather than
// failing it.
func (c *ReportRenderer) Execute(context cor.Context) {
	job := context.Get(c.GetInputParam()).(*model.Job)
	script := context.Get(GetScriptParameterName()).(string)

	name := fmt.Sprintf("%s_report.pdf", job.ID)
	local := filepath.Join(c.workDir, name)

	if err := c.render(script, local); err != nil {
		slog.Warn("report render failed", "job", job.ID, "error", err)
		context.ReportProgress(90, "report rendering skipped")
		context.Add(c.GetOutputParam(), job)
		c.CountSuccess(context)
		return
	}
	context.AddTempFile(local)

	ref, err := c.artifacts.PutFile(context.GetContext(), name, "application/pdf", local)
	if err != nil {
		slog.Warn("report upload failed", "job", job.ID, "error", err)
	} else {
		GetArtifactRefs(context).Report = ref
	}

	context.ReportProgress(90, "report rendered")
	context.Add(c.GetOutputParam(), job)
	c.CountSuccess(context)
}

// render walks the Markdown script line by line and lays it out with a
// heading hierarchy. This is deliberately not a full Markdown engine; the
// script assembler only emits headings, bold labels, rules and paragraphs.
func (c *ReportRenderer) render(script, output string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	font := "Helvetica"
	if c.fontPath != "" && c.fontName != "" {
		pdf.AddUTF8Font(c.fontName, "", c.fontPath)
		font = c.fontName
	} else {
		slog.Warn("no unicode report font configured, non-Latin transcript text will not render")
	}
	pdf.SetFont(font, "", reportBodySize)
	pdf.AddPage()

	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			pdf.Ln(reportLineHeight / 2)
		case line == "---":
			pdf.Ln(2)
			x, y := pdf.GetXY()
			pdf.Line(x, y, x+180, y)
			pdf.Ln(4)
		case strings.HasPrefix(line, "### "):
			pdf.SetFontSize(reportSubheadSize)
			pdf.MultiCell(0, reportLineHeight, strings.TrimPrefix(line, "### "), "", "L", false)
			pdf.SetFontSize(reportBodySize)
		case strings.HasPrefix(line, "## "):
			pdf.SetFontSize(reportSectionSize)
			pdf.MultiCell(0, reportLineHeight+1, strings.TrimPrefix(line, "## "), "", "L", false)
			pdf.SetFontSize(reportBodySize)
		case strings.HasPrefix(line, "# "):
			pdf.SetFontSize(reportTitleSize)
			pdf.MultiCell(0, reportLineHeight+2, strings.TrimPrefix(line, "# "), "", "C", false)
			pdf.SetFontSize(reportBodySize)
		default:
			pdf.MultiCell(0, reportLineHeight, strings.ReplaceAll(line, "**", ""), "", "L", false)
		}
	}

	if err := pdf.OutputFileAndClose(output); err != nil {
		return fmt.Errorf("pdf output failed: %w", err)
	}
	return nil
}
