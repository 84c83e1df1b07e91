package editor

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/guidecraft/guidecraft/pkg/guide"
)

// ValidationError is an inline-positioned JSON problem.
type ValidationError struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// EnterJSONView switches to the JSON view and snapshots the current
// export as the undo baseline. Returns the editable text.
func (e *Editor) EnterJSONView() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.viewMode == ViewModeJSON {
		return e.jsonText
	}

	g := e.exportLocked()
	data, err := g.Marshal()
	if err != nil {
		e.logger.Error("guide export failed entering JSON view", zap.Error(err))
		data = []byte("{}")
	}
	e.viewMode = ViewModeJSON
	e.jsonOriginal = string(data)
	e.jsonText = e.jsonOriginal
	return e.jsonText
}

// HandleJSONChange stores the live JSON text and validates it. Edits
// are not committed until the user leaves the JSON view.
func (e *Editor) HandleJSONChange(text string) ValidationResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.viewMode != ViewModeJSON {
		return ValidationResult{Valid: false, Errors: []ValidationError{{Line: 1, Column: 1, Message: "not in JSON view"}}}
	}
	e.jsonText = text
	return validateGuideJSON(text)
}

// HandleJSONUndo reverts the live text to the snapshot taken when the
// JSON view was entered, however many edits happened in between, and
// re-validates. The editor stays in the JSON view.
func (e *Editor) HandleJSONUndo() (string, ValidationResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.viewMode != ViewModeJSON {
		return "", ValidationResult{Valid: false, Errors: []ValidationError{{Line: 1, Column: 1, Message: "not in JSON view"}}}
	}
	e.jsonText = e.jsonOriginal
	return e.jsonText, validateGuideJSON(e.jsonText)
}

// JSONText returns the live JSON view text.
func (e *Editor) JSONText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.jsonText
}

// LeaveJSONView validates and commits the live text, then switches to
// the requested view. Invalid JSON blocks the transition; the caller
// surfaces the validation result and the editor stays in the JSON
// view. A commit reloads the guide wholesale, regenerating ids.
func (e *Editor) LeaveJSONView(to ViewMode) error {
	if to == ViewModeJSON {
		return errors.New("target view is the JSON view")
	}

	e.mu.Lock()
	if e.viewMode != ViewModeJSON {
		e.mu.Unlock()
		return nil
	}
	result := validateGuideJSON(e.jsonText)
	if !result.Valid {
		e.mu.Unlock()
		return errors.Errorf("invalid JSON: %s", result.Errors[0].Message)
	}

	changed := e.jsonText != e.jsonOriginal
	if changed {
		g, err := guide.Parse([]byte(e.jsonText))
		if err != nil {
			e.mu.Unlock()
			return err
		}
		e.loadGuideLocked(*g, nil)
		// The reload clears the dirty flag; edits committed from the
		// JSON view still need saving.
		e.dirty = true
	}
	e.viewMode = to
	e.jsonOriginal = ""
	e.jsonText = ""

	var snapshot guide.Guide
	var listeners []ChangeListener
	if changed {
		snapshot = e.exportLocked()
		listeners = e.listenersLocked()
	}
	e.mu.Unlock()

	for _, listener := range listeners {
		listener(snapshot)
	}
	return nil
}

func validateGuideJSON(text string) ValidationResult {
	var g guide.Guide
	if err := json.Unmarshal([]byte(text), &g); err != nil {
		line, column := errorPosition(text, err)
		return ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Line: line, Column: column, Message: err.Error()}},
		}
	}
	var errs []ValidationError
	for _, finding := range g.Validate() {
		errs = append(errs, ValidationError{Line: 1, Column: 1, Message: finding})
	}
	if len(errs) > 0 {
		return ValidationResult{Valid: false, Errors: errs}
	}
	return ValidationResult{Valid: true}
}

// errorPosition translates a json decode error offset into a 1-based
// line and column.
func errorPosition(text string, err error) (int, int) {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return 1, 1
	}
	if offset > int64(len(text)) {
		offset = int64(len(text))
	}
	prefix := text[:offset]
	line := strings.Count(prefix, "\n") + 1
	column := int(offset) - strings.LastIndex(prefix, "\n")
	return line, column
}
