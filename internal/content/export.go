package content

import "fmt"

// Document is the structured export of a tutorial. Exactly one of Chapter
// (small), Part (medium) or Parts (big) is populated. The synthetic container
// of a small or medium tutorial is metadata-stripped: its title and position
// are omitted because it never was an explicit heading in the source.
type Document struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Type         string        `json:"type"`
	Authors      []string      `json:"authors"`
	Introduction string        `json:"introduction"`
	Conclusion   string        `json:"conclusion"`
	Chapter      *ChapterDoc   `json:"chapter,omitempty"`
	Part         *PartDoc      `json:"part,omitempty"`
	Parts        []*PartDoc    `json:"parts,omitempty"`
}

type PartDoc struct {
	Title        string        `json:"title,omitempty"`
	Position     int           `json:"position_in_tutorial,omitempty"`
	Introduction string        `json:"introduction"`
	Conclusion   string        `json:"conclusion"`
	Chapters     []*ChapterDoc `json:"chapters"`
}

type ChapterDoc struct {
	Title        string        `json:"title,omitempty"`
	Position     int           `json:"position_in_part,omitempty"`
	Introduction string        `json:"introduction"`
	Conclusion   string        `json:"conclusion"`
	Extracts     []*ExtractDoc `json:"extracts"`
}

type ExtractDoc struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// SchemaValidator checks an exported document against a named schema. It is
// an optional collaborator of ExportTree.
type SchemaValidator interface {
	Validate(doc *Document, schema string) error
}

// TutorialSchema names the export schema passed to the validator.
const TutorialSchema = "tutorial"

// ExportTree walks a loaded tree depth-first, ordered by position, and
// produces its structured document. When a validator is supplied and rejects
// the document, ExportTree returns the validation error rather than a
// silently empty document; the caller decides how to degrade.
func ExportTree(tree *Tree, validator SchemaValidator) (*Document, error) {
	tut := tree.Tutorial
	doc := &Document{
		Title:        tut.Title,
		Description:  tut.Description,
		Type:         string(tut.Shape),
		Authors:      make([]string, 0, len(tut.Authors)),
		Introduction: tut.Introduction,
		Conclusion:   tut.Conclusion,
	}
	for _, a := range tut.Authors {
		doc.Authors = append(doc.Authors, a.Username)
	}

	switch tut.Shape {
	case ShapeSmall:
		if len(tree.Chapters) > 0 {
			doc.Chapter = exportChapter(tree.Chapters[0], false)
		}
	case ShapeMedium:
		if len(tree.Parts) > 0 {
			doc.Part = exportPart(tree.Parts[0], false)
		}
	case ShapeBig:
		for _, pn := range tree.Parts {
			doc.Parts = append(doc.Parts, exportPart(pn, true))
		}
	}

	if validator != nil {
		if err := validator.Validate(doc, TutorialSchema); err != nil {
			return nil, fmt.Errorf("export schema validation: %w", err)
		}
	}
	return doc, nil
}

// exportPart serializes a part node. withMeta is false for the synthetic
// single part of a medium tutorial.
func exportPart(pn *PartNode, withMeta bool) *PartDoc {
	pd := &PartDoc{
		Introduction: pn.Part.Introduction,
		Conclusion:   pn.Part.Conclusion,
		Chapters:     make([]*ChapterDoc, 0, len(pn.Chapters)),
	}
	if withMeta {
		pd.Title = pn.Part.Title
		pd.Position = pn.Part.PositionInTutorial
	}
	for _, cn := range pn.Chapters {
		pd.Chapters = append(pd.Chapters, exportChapter(cn, true))
	}
	return pd
}

func exportChapter(cn *ChapterNode, withMeta bool) *ChapterDoc {
	cd := &ChapterDoc{
		Introduction: cn.Chapter.Introduction,
		Conclusion:   cn.Chapter.Conclusion,
		Extracts:     make([]*ExtractDoc, 0, len(cn.Extracts)),
	}
	if withMeta {
		cd.Title = cn.Chapter.Title
		cd.Position = cn.Chapter.PositionInPart
	}
	for _, e := range cn.Extracts {
		cd.Extracts = append(cd.Extracts, &ExtractDoc{Title: e.Title, Text: e.Text})
	}
	return cd
}

// BasicValidator is a minimal SchemaValidator implementation: it enforces the
// shape/ownership consistency of the exported document.
type BasicValidator struct{}

func (BasicValidator) Validate(doc *Document, schema string) error {
	if schema != TutorialSchema {
		return fmt.Errorf("unknown schema %q", schema)
	}
	if doc.Title == "" {
		return fmt.Errorf("document title is empty")
	}
	populated := 0
	if doc.Chapter != nil {
		populated++
	}
	if doc.Part != nil {
		populated++
	}
	if doc.Parts != nil {
		populated++
	}
	if populated > 1 {
		return fmt.Errorf("document populates more than one of chapter/part/parts")
	}
	switch Shape(doc.Type) {
	case ShapeSmall:
		if doc.Part != nil || doc.Parts != nil {
			return fmt.Errorf("small document must not carry part/parts")
		}
	case ShapeMedium:
		if doc.Chapter != nil || doc.Parts != nil {
			return fmt.Errorf("medium document must not carry chapter/parts")
		}
	case ShapeBig:
		if doc.Chapter != nil || doc.Part != nil {
			return fmt.Errorf("big document must not carry chapter/part")
		}
	default:
		return fmt.Errorf("unknown document type %q", doc.Type)
	}
	return nil
}
