// Package validate provides JSON schema and semantic validation for
// the grid JSON result and the solve-request envelope. Schemas are
// embedded and compiled once at init.
package validate

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"lesmotsdatche/internal/grid"
)

//go:embed schemas/*.json
var schemasFS embed.FS

var (
	gridResultSchema   *jsonschema.Schema
	solveRequestSchema *jsonschema.Schema
)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	gridResultSchema = mustCompile(compiler, "schemas/grid_result.schema.json", "grid_result.schema.json")
	solveRequestSchema = mustCompile(compiler, "schemas/solve_request.schema.json", "solve_request.schema.json")
}

func mustCompile(compiler *jsonschema.Compiler, path, resourceName string) *jsonschema.Schema {
	data, err := schemasFS.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("failed to read schema %s: %v", path, err))
	}
	if err := compiler.AddResource(resourceName, strings.NewReader(string(data))); err != nil {
		panic(fmt.Sprintf("failed to add schema %s: %v", path, err))
	}
	schema, err := compiler.Compile(resourceName)
	if err != nil {
		panic(fmt.Sprintf("failed to compile schema %s: %v", path, err))
	}
	return schema
}

// ValidationError represents a single validation error with path context.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no errors"
	}
	var msgs []string
	for _, e := range ve {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidateGridResultJSON validates a grid JSON result against its schema.
func ValidateGridResultJSON(data []byte) ValidationErrors {
	return validateAgainst(gridResultSchema, data)
}

// SolveRequest is the envelope a solve-request submitter sends: a
// grid-file template plus the locale whose lexicon should fill it.
// CategorizationPreference maps category tags to the weight the
// submitter assigns them; the worker dots it with each word's
// categorisation vector to rebind scores before solving.
type SolveRequest struct {
	Locale                   string             `json:"locale"`
	Template                 []string           `json:"template"`
	Seed                     int64              `json:"seed,omitempty"`
	CategorizationPreference map[string]float64 `json:"categorization_preference,omitempty"`
}

// ValidateSolveRequestJSON validates a solve-request envelope against its schema.
func ValidateSolveRequestJSON(data []byte) ValidationErrors {
	return validateAgainst(solveRequestSchema, data)
}

func validateAgainst(schema *jsonschema.Schema, data []byte) ValidationErrors {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return ValidationErrors{{Path: "", Message: fmt.Sprintf("invalid JSON: %v", err)}}
	}
	if err := schema.Validate(doc); err != nil {
		return schemaErrorToValidationErrors(err)
	}
	return nil
}

func schemaErrorToValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors
	switch e := err.(type) {
	case *jsonschema.ValidationError:
		errors = append(errors, extractValidationErrors(e)...)
	default:
		errors = append(errors, ValidationError{Path: "", Message: err.Error()})
	}
	return errors
}

func extractValidationErrors(ve *jsonschema.ValidationError) ValidationErrors {
	var errors ValidationErrors
	if ve.Message != "" {
		errors = append(errors, ValidationError{Path: ve.InstanceLocation, Message: ve.Message})
	}
	for _, cause := range ve.Causes {
		errors = append(errors, extractValidationErrors(cause)...)
	}
	return errors
}

// ValidateGridResultSemantic performs checks JSON Schema cannot
// express: rectangularity and cell/slot agreement.
func ValidateGridResultSemantic(res grid.Result) ValidationErrors {
	var errors ValidationErrors

	if len(res.Cells) != res.Rows*res.Cols {
		errors = append(errors, ValidationError{
			Path:    "/cells",
			Message: fmt.Sprintf("expected %d cells for a %dx%d grid, got %d", res.Rows*res.Cols, res.Rows, res.Cols, len(res.Cells)),
		})
		return errors
	}

	for _, s := range res.Slots {
		if s.Row < 0 || s.Row >= res.Rows || s.Col < 0 || s.Col >= res.Cols {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("/slots/%d", s.ID),
				Message: fmt.Sprintf("slot start (%d,%d) is outside the %dx%d grid", s.Row, s.Col, res.Rows, res.Cols),
			})
			continue
		}

		dr, dc := 0, 1
		if s.Direction == "down" {
			dr, dc = 1, 0
		}
		for i := 0; i < s.Length; i++ {
			r, c := s.Row+dr*i, s.Col+dc*i
			if r >= res.Rows || c >= res.Cols {
				errors = append(errors, ValidationError{
					Path:    fmt.Sprintf("/slots/%d", s.ID),
					Message: "slot runs past the edge of the grid",
				})
				break
			}
			cell := res.Cells[r*res.Cols+c]
			if cell.Type != "letter" {
				errors = append(errors, ValidationError{
					Path:    fmt.Sprintf("/slots/%d", s.ID),
					Message: fmt.Sprintf("cell (%d,%d) is a block, not part of a letter run", r, c),
				})
			}
		}
	}

	return errors
}

// ValidateGridResult performs both schema and semantic validation.
func ValidateGridResult(data []byte) ValidationErrors {
	if errs := ValidateGridResultJSON(data); len(errs) > 0 {
		return errs
	}
	var res grid.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return ValidationErrors{{Path: "", Message: fmt.Sprintf("failed to parse grid result: %v", err)}}
	}
	return ValidateGridResultSemantic(res)
}
