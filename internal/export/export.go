// Package export renders task lists as JSON, YAML or PDF documents.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/taskpad/internal/todo"
	"github.com/nibzard/taskpad/internal/utils"
)

// Format is an export document format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatPDF  Format = "pdf"
)

// ParseFormat converts a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch utils.Normalize(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unknown export format %q (expected json|yaml|pdf)", s)
	}
}

// Document is the exported payload for the structured formats.
type Document struct {
	Title string      `json:"title" yaml:"title"`
	Count int         `json:"count" yaml:"count"`
	Tasks []todo.Task `json:"tasks" yaml:"tasks"`
}

// Write renders tasks to w in format f. title heads the document.
func Write(w io.Writer, f Format, title string, tasks []todo.Task) error {
	if tasks == nil {
		tasks = []todo.Task{}
	}
	doc := Document{Title: title, Count: len(tasks), Tasks: tasks}

	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return nil
	case FormatPDF:
		return writePDF(w, doc)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

// column widths in mm; they sum to the A4 landscape printable width.
var pdfColumns = []struct {
	header string
	width  float64
	max    int
}{
	{"ID", 38, 16},
	{"Title", 70, 40},
	{"Description", 100, 60},
	{"Date Created/Updated", 50, 30},
	{"Status", 19, 10},
}

func writePDF(w io.Writer, doc Document) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, tr(doc.Title))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 8, col.header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	if len(doc.Tasks) == 0 {
		pdf.CellFormat(0, 8, "No tasks found.", "1", 1, "C", false, 0, "")
	}
	for _, t := range doc.Tasks {
		status := "pending"
		if t.Completed {
			status = "done"
		}
		cells := []string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Description,
			t.DateCreated,
			status,
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, tr(utils.Truncate(cells[i], col.max)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
