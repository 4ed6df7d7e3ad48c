// Package site serves the submission form, the extraction result page, and
// artifact downloads.
package site

import (
	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/internal/artifacts"
	"github.com/JaimeStill/scrivener/pkg/web"
)

var (
	indexView    = web.ViewDef{Template: "index.html", Title: "OCR & Spell-Correct"}
	errorView    = web.ViewDef{Template: "error.html", Title: "Something went wrong"}
	notFoundView = web.ViewDef{Template: "error.html", Title: "Page not found"}
)

// Views lists every view the site renders.
var Views = []web.ViewDef{indexView, errorView}

// resultPage is the index view payload after a successful submission.
type resultPage struct {
	Text      string
	Corrected bool
	TextURL   string
	DocxURL   string
}

func downloadURL(basePath string, id uuid.UUID, format artifacts.Format) string {
	return basePath + "/download/" + format.Key(id)
}
