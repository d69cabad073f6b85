package extract

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/a3tai/docsigner/internal/analysis"
)

// AcroFormFields extracts interactive form fields from a PDF's AcroForm
// dictionary and maps them to analysis form fields. Widget rectangles
// become field positions; signature fields (FT=Sig) become fields of type
// signature so the reconciliation layer can bind signer data to them.
func (s *Service) AcroFormFields(path string) ([]analysis.FormField, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return []analysis.FormField{}, nil
	}

	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return []analysis.FormField{}, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return []analysis.FormField{}, nil
	}

	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	fields := make([]analysis.FormField, 0, len(fieldsArray))
	for i, fieldRef := range fieldsArray {
		field, err := s.processAcroField(ctx, fieldRef, i)
		if err != nil {
			if s.debugMode {
				fmt.Printf("Error processing AcroForm field %d: %v\n", i, err)
			}
			continue
		}
		if field != nil {
			fields = append(fields, *field)
		}
	}

	return fields, nil
}

// processAcroField maps one AcroForm field dictionary to an analysis form
// field
func (s *Service) processAcroField(ctx *model.Context, fieldObj types.Object, index int) (*analysis.FormField, error) {
	fieldDict, err := ctx.DereferenceDict(fieldObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference field: %w", err)
	}
	if fieldDict == nil {
		return nil, nil
	}

	field := &analysis.FormField{
		Type:       acroFieldType(ctx, fieldDict),
		Page:       1,
		Confidence: 0.9, // interactive widgets are explicit, not inferred
	}

	if nameObj, found := fieldDict.Find("T"); found {
		if name, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil {
			field.ID = name
			field.Label = name
		}
	}
	if field.ID == "" {
		field.ID = fmt.Sprintf("acro_field_%d", index)
		field.Label = "Field"
	}

	if valueObj, found := fieldDict.Find("V"); found {
		if val, err := ctx.DereferenceStringOrHexLiteral(valueObj, model.V10, nil); err == nil {
			field.Value = val
		}
	}

	if flagsObj, found := fieldDict.Find("Ff"); found {
		if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
			field.Required = (*flags & 2) != 0 // Bit 2
		}
	}

	field.Position = acroFieldPosition(ctx, fieldDict)
	return field, nil
}

// acroFieldType maps the FT entry to an analysis field type
func acroFieldType(ctx *model.Context, fieldDict types.Dict) analysis.FieldType {
	ftObj, found := fieldDict.Find("FT")
	if !found {
		// FT may be inherited from the parent field.
		if parentObj, found := fieldDict.Find("Parent"); found {
			if parentDict, err := ctx.DereferenceDict(parentObj); err == nil && parentDict != nil {
				return acroFieldType(ctx, parentDict)
			}
		}
		return analysis.FieldTypeText
	}

	ftName, err := ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return analysis.FieldTypeText
	}

	switch ftName {
	case "Btn":
		if flagsObj, found := fieldDict.Find("Ff"); found {
			if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
				if (*flags & (1 << 15)) != 0 { // Bit 16: Radio
					return analysis.FieldTypeRadio
				}
			}
		}
		return analysis.FieldTypeCheckbox
	case "Tx":
		return analysis.FieldTypeText
	case "Ch":
		return analysis.FieldTypeSelect
	case "Sig":
		return analysis.FieldTypeSignature
	default:
		return analysis.FieldTypeText
	}
}

// acroFieldPosition extracts the widget rectangle as a position. Fields
// with separate widget annotations carry the rectangle on their first
// kid.
func acroFieldPosition(ctx *model.Context, fieldDict types.Dict) analysis.Position {
	if rectObj, found := fieldDict.Find("Rect"); found {
		if pos, ok := parseRect(ctx, rectObj); ok {
			return pos
		}
	}

	if kidsObj, found := fieldDict.Find("Kids"); found {
		if kidsArray, err := ctx.DereferenceArray(kidsObj); err == nil && len(kidsArray) > 0 {
			if widgetDict, err := ctx.DereferenceDict(kidsArray[0]); err == nil && widgetDict != nil {
				if rectObj, found := widgetDict.Find("Rect"); found {
					if pos, ok := parseRect(ctx, rectObj); ok {
						return pos
					}
				}
			}
		}
	}

	return analysis.Position{}
}

// parseRect converts a PDF Rect array to a position rectangle
func parseRect(ctx *model.Context, rectObj types.Object) (analysis.Position, bool) {
	rectArray, err := ctx.DereferenceArray(rectObj)
	if err != nil || len(rectArray) != 4 {
		return analysis.Position{}, false
	}

	coords := make([]float64, 4)
	for i, coord := range rectArray {
		if f, err := ctx.DereferenceNumber(coord); err == nil {
			coords[i] = f
		}
	}

	pos := analysis.Position{
		X:      coords[0],
		Y:      coords[1],
		Width:  coords[2] - coords[0],
		Height: coords[3] - coords[1],
	}
	pos.Clamp()
	return pos, true
}
